package links

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

// SessionCounter reports how many visit sessions reference a link. The
// registry uses it to decide whether a rejection reason may still change.
type SessionCounter interface {
	CountForLink(ctx context.Context, linkID uuid.UUID) (int, error)
}

// Registry runs the approval workflow over a LinkStore. Capacity is
// enforced at approval time, never at creation.
type Registry struct {
	store    LinkStore
	sessions SessionCounter
	settings *config.Provider
	audit    audit.Emitter
	clock    func() time.Time
}

func NewRegistry(store LinkStore, sessions SessionCounter, settings *config.Provider, emitter audit.Emitter) *Registry {
	return &Registry{store: store, sessions: sessions, settings: settings, audit: emitter, clock: time.Now}
}

func (r *Registry) WithClock(clock func() time.Time) *Registry {
	r.clock = clock
	return r
}

// Create registers a pending link for the pair. Fails with
// ErrDuplicateLink if any link, whatever its status, already binds them.
func (r *Registry) Create(ctx context.Context, actorID, visitorID, detaineeID uuid.UUID, rel models.Relationship, cat models.LinkCategory) (*models.RelationshipLink, error) {
	if !rel.Valid() {
		return nil, fmt.Errorf("invalid relationship %q", rel)
	}
	if !cat.Valid() {
		return nil, fmt.Errorf("invalid category %q", cat)
	}

	link := &models.RelationshipLink{
		ID:           uuid.New(),
		VisitorID:    visitorID,
		DetaineeID:   detaineeID,
		Relationship: rel,
		Category:     cat,
		Status:       models.ApprovalPending,
		CreatedAt:    r.clock(),
	}
	if err := r.store.Create(ctx, link); err != nil {
		return nil, err
	}

	audit.Try(ctx, r.audit, audit.New(actorID, models.ActionLinkCreated, models.TargetLink, link.ID,
		map[string]any{"visitor_id": visitorID, "detainee_id": detaineeID, "relationship": rel, "category": cat}))

	return link, nil
}

// Approve transitions a pending link to approved, enforcing the
// detainee's per-category capacity. Re-approving an approved link is a
// no-op; approving a rejected one fails with ErrAlreadyDecided.
func (r *Registry) Approve(ctx context.Context, linkID, approverID uuid.UUID) (*models.RelationshipLink, error) {
	current, err := r.store.Get(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	if current == nil {
		return nil, models.ErrLinkNotFound
	}
	if current.Status == models.ApprovalApproved {
		return current, nil
	}

	link, err := r.store.Decide(ctx, linkID, Decision{
		Approve:       true,
		ApproverID:    approverID,
		CategoryLimit: r.settings.CategoryLimit(current.Category),
		Now:           r.clock(),
	})
	if err != nil {
		return nil, err
	}

	observability.LinkDecisions.WithLabelValues("approved").Inc()
	audit.Try(ctx, r.audit, audit.New(approverID, models.ActionLinkApproved, models.TargetLink, link.ID,
		map[string]any{"detainee_id": link.DetaineeID, "category": link.Category}))

	return link, nil
}

// Reject transitions a pending link to rejected with a reason. The reason
// of an already-rejected link may still be amended, but only while no
// visit session references the link.
func (r *Registry) Reject(ctx context.Context, linkID, approverID uuid.UUID, reason string) (*models.RelationshipLink, error) {
	current, err := r.store.Get(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	if current == nil {
		return nil, models.ErrLinkNotFound
	}

	allowUpdate := false
	if current.Status == models.ApprovalRejected {
		visits, err := r.sessions.CountForLink(ctx, linkID)
		if err != nil {
			return nil, fmt.Errorf("count link sessions: %w", err)
		}
		allowUpdate = visits == 0
	}

	link, err := r.store.Decide(ctx, linkID, Decision{
		Approve:           false,
		ApproverID:        approverID,
		Reason:            reason,
		AllowReasonUpdate: allowUpdate,
		Now:               r.clock(),
	})
	if err != nil {
		return nil, err
	}

	observability.LinkDecisions.WithLabelValues("rejected").Inc()
	audit.Try(ctx, r.audit, audit.New(approverID, models.ActionLinkRejected, models.TargetLink, link.ID,
		map[string]any{"reason": reason}))

	return link, nil
}

func (r *Registry) Get(ctx context.Context, linkID uuid.UUID) (*models.RelationshipLink, error) {
	link, err := r.store.Get(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, models.ErrLinkNotFound
	}
	return link, nil
}

func (r *Registry) ApprovedForVisitor(ctx context.Context, visitorID uuid.UUID) ([]*models.RelationshipLink, error) {
	return r.store.ApprovedForVisitor(ctx, visitorID)
}

func (r *Registry) ApprovedForDetainee(ctx context.Context, detaineeID uuid.UUID) ([]*models.RelationshipLink, error) {
	return r.store.ApprovedForDetainee(ctx, detaineeID)
}

func (r *Registry) ForVisitor(ctx context.Context, visitorID uuid.UUID) ([]*models.RelationshipLink, error) {
	return r.store.ForVisitor(ctx, visitorID)
}
