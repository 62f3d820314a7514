// Package biometric holds the enrolled reference embeddings and the
// probe-matching decision rule. It reasons over vectors only; face
// detection and feature extraction live with the capture collaborator.
package biometric

import (
	"context"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
)

// ProfileStore is the persistence contract for biometric profiles.
// Replace must be atomic: a concurrent Snapshot sees either the old or the
// new sample set, never a mix. Get returns nil when no profile exists.
type ProfileStore interface {
	Replace(ctx context.Context, profile *models.BiometricProfile) error
	Get(ctx context.Context, visitorID uuid.UUID) (*models.BiometricProfile, error)
	// Snapshot returns a consistent point-in-time copy of every profile.
	Snapshot(ctx context.Context) ([]*models.BiometricProfile, error)
	Delete(ctx context.Context, visitorID uuid.UUID) error
}
