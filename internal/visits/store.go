// Package visits runs the visit session state machine: eligibility
// gating, exclusive open sessions, and the facility-local day window.
package visits

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
)

// IdentityStore resolves visitors and detainees. Lookups return nil, nil
// when no record exists.
type IdentityStore interface {
	VisitorByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	VisitorByCode(ctx context.Context, code string) (*models.Visitor, error)
	DetaineeByID(ctx context.Context, id uuid.UUID) (*models.Detainee, error)
}

// LinkReader is the slice of the link registry the session manager needs.
type LinkReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.RelationshipLink, error)
}

// SessionStore is the persistence contract for visit sessions.
// Begin must be atomic with the no-open-session check: of two concurrent
// Begin calls for one visitor, exactly one may succeed; the other fails
// with ErrSessionAlreadyOpen. Sessions are never deleted.
type SessionStore interface {
	Begin(ctx context.Context, session *models.VisitSession) error
	End(ctx context.Context, sessionID uuid.UUID, out time.Time, method models.CheckMethod) (*models.VisitSession, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*models.VisitSession, error)
	OpenForVisitor(ctx context.Context, visitorID uuid.UUID) (*models.VisitSession, error)
	Open(ctx context.Context) ([]*models.VisitSession, error)
	CompletedBetween(ctx context.Context, from, to time.Time) ([]*models.VisitSession, error)
	CountForLink(ctx context.Context, linkID uuid.UUID) (int, error)
}
