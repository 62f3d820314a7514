// Package links manages the visitor-to-detainee relationship graph and
// its approval workflow, including per-category capacity limits.
package links

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
)

// Decision is the atomic state transition applied by LinkStore.Decide.
type Decision struct {
	Approve    bool
	ApproverID uuid.UUID
	Reason     string
	// CategoryLimit caps the detainee's approved links in the link's
	// category when approving; -1 means unlimited.
	CategoryLimit int
	// AllowReasonUpdate permits re-rejecting an already-rejected link to
	// amend the reason. Only set while no visit exists against the link.
	AllowReasonUpdate bool
	Now               time.Time
}

// LinkStore is the persistence contract for relationship links.
// Create enforces pair uniqueness; Decide performs the status check and,
// for approvals, the capacity count-and-set as one atomic step so two
// concurrent approvals cannot both squeeze under the limit.
type LinkStore interface {
	Create(ctx context.Context, link *models.RelationshipLink) error
	Get(ctx context.Context, id uuid.UUID) (*models.RelationshipLink, error)
	Decide(ctx context.Context, id uuid.UUID, d Decision) (*models.RelationshipLink, error)
	ApprovedForVisitor(ctx context.Context, visitorID uuid.UUID) ([]*models.RelationshipLink, error)
	ApprovedForDetainee(ctx context.Context, detaineeID uuid.UUID) ([]*models.RelationshipLink, error)
	ForVisitor(ctx context.Context, visitorID uuid.UUID) ([]*models.RelationshipLink, error)
}
