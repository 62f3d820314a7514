package biometric

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/audit"
	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/observability"
)

// Enroller validates and records reference sample sets. Enrollment always
// replaces the visitor's full profile; there is no incremental append.
type Enroller struct {
	store    ProfileStore
	settings *config.Provider
	audit    audit.Emitter
	clock    func() time.Time
}

func NewEnroller(store ProfileStore, settings *config.Provider, emitter audit.Emitter) *Enroller {
	return &Enroller{store: store, settings: settings, audit: emitter, clock: time.Now}
}

// WithClock pins time for tests.
func (e *Enroller) WithClock(clock func() time.Time) *Enroller {
	e.clock = clock
	return e
}

// Enroll replaces the visitor's reference set with the given embeddings.
// Fails with ErrInsufficientSamples below the configured minimum and with
// ErrDimensionMismatch when the samples disagree on vector length.
func (e *Enroller) Enroll(ctx context.Context, actorID, visitorID uuid.UUID, embeddings [][]float32, quality []float32) (*models.BiometricProfile, error) {
	minSamples := e.settings.Matching().MinimumSamples
	if len(embeddings) < minSamples {
		return nil, fmt.Errorf("%w: got %d, need %d", models.ErrInsufficientSamples, len(embeddings), minSamples)
	}
	if len(quality) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d embeddings but %d quality scores", models.ErrDimensionMismatch, len(embeddings), len(quality))
	}
	dim := len(embeddings[0])
	for i, emb := range embeddings {
		if len(emb) != dim {
			return nil, fmt.Errorf("%w: sample %d has %d dims, expected %d", models.ErrDimensionMismatch, i, len(emb), dim)
		}
	}

	profile := &models.BiometricProfile{
		VisitorID:  visitorID,
		Embeddings: embeddings,
		Quality:    quality,
		EnrolledAt: e.clock(),
	}
	if err := e.store.Replace(ctx, profile); err != nil {
		return nil, fmt.Errorf("replace profile: %w", err)
	}

	observability.Enrollments.Inc()
	audit.Try(ctx, e.audit, audit.New(actorID, models.ActionEnrolled, models.TargetProfile, visitorID,
		map[string]any{"samples": len(embeddings)}))

	return profile, nil
}
