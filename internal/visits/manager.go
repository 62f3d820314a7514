package visits

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

// Mode tells the kiosk what an identified visitor does next.
type Mode string

const (
	ModeTimeIn  Mode = "time_in"
	ModeTimeOut Mode = "time_out"
)

// Manager is the visit session state machine. All mutations serialize
// through the SessionStore's atomic contracts; the manager itself holds
// no mutable state.
type Manager struct {
	identities IdentityStore
	links      LinkReader
	sessions   SessionStore
	settings   *config.Provider
	audit      audit.Emitter
	clock      func() time.Time
}

func NewManager(identities IdentityStore, links LinkReader, sessions SessionStore, settings *config.Provider, emitter audit.Emitter) *Manager {
	return &Manager{
		identities: identities,
		links:      links,
		sessions:   sessions,
		settings:   settings,
		audit:      emitter,
		clock:      time.Now,
	}
}

// WithClock pins time for tests.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// IdentifyByCode resolves a visitor from manual code entry or a QR
// payload (the QR carries the visitor code verbatim).
func (m *Manager) IdentifyByCode(ctx context.Context, code string) (*models.Visitor, error) {
	visitor, err := m.identities.VisitorByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup visitor by code: %w", err)
	}
	return m.gate(visitor)
}

// IdentifyMatch resolves a visitor from a FaceMatcher result. Anything
// but a matched decision is a VisitorNotFound for the caller.
func (m *Manager) IdentifyMatch(ctx context.Context, result models.MatchResult) (*models.Visitor, error) {
	if result.Decision != models.DecisionMatched || result.VisitorID == nil {
		return nil, fmt.Errorf("%w: match decision %s", models.ErrVisitorNotFound, result.Decision)
	}
	visitor, err := m.identities.VisitorByID(ctx, *result.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("lookup matched visitor: %w", err)
	}
	return m.gate(visitor)
}

func (m *Manager) gate(visitor *models.Visitor) (*models.Visitor, error) {
	if visitor == nil {
		return nil, models.ErrVisitorNotFound
	}
	if visitor.Status != models.VisitorStatusActive {
		return nil, fmt.Errorf("%w: status %s", models.ErrVisitorInactive, visitor.Status)
	}
	return visitor, nil
}

// NextAction reports whether an identified visitor is about to time in or
// time out, along with the open session when timing out.
func (m *Manager) NextAction(ctx context.Context, visitorID uuid.UUID) (Mode, *models.VisitSession, error) {
	open, err := m.sessions.OpenForVisitor(ctx, visitorID)
	if err != nil {
		return "", nil, fmt.Errorf("lookup open session: %w", err)
	}
	if open != nil {
		return ModeTimeOut, open, nil
	}
	return ModeTimeIn, nil, nil
}

// BeginParams names the time-in inputs. When a visitor holds several
// approved links the caller must pick one; the engine never auto-selects.
type BeginParams struct {
	VisitorID uuid.UUID
	LinkID    uuid.UUID
	VisitType models.VisitType
	Method    models.CheckMethod
}

// Begin records a time-in. Preconditions, in order: visitor exists and is
// active, the link is this visitor's and approved, the detainee is still
// detained, the relationship permits the visit type, and the visitor has
// no open session (atomic in the store).
func (m *Manager) Begin(ctx context.Context, p BeginParams) (*models.VisitSession, error) {
	visitor, err := m.identities.VisitorByID(ctx, p.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("lookup visitor: %w", err)
	}
	if _, err := m.gate(visitor); err != nil {
		return nil, err
	}

	link, err := m.links.Get(ctx, p.LinkID)
	if err != nil {
		return nil, fmt.Errorf("lookup link: %w", err)
	}
	if link == nil || link.VisitorID != p.VisitorID || link.Status != models.ApprovalApproved {
		return nil, models.ErrLinkNotApproved
	}

	detainee, err := m.identities.DetaineeByID(ctx, link.DetaineeID)
	if err != nil {
		return nil, fmt.Errorf("lookup detainee: %w", err)
	}
	if detainee == nil {
		return nil, fmt.Errorf("%w: link %s references missing detainee %s",
			models.ErrDataIntegrity, link.ID, link.DetaineeID)
	}
	if detainee.Status != models.DetaineeStatusDetained {
		return nil, fmt.Errorf("%w: status %s", models.ErrDetaineeUnavailable, detainee.Status)
	}

	if !p.VisitType.Valid() {
		return nil, fmt.Errorf("invalid visit type %q", p.VisitType)
	}
	if p.VisitType == models.VisitTypeConjugal && !m.settings.ConjugalEligible(link.Relationship) {
		return nil, fmt.Errorf("%w: relationship %s", models.ErrConjugalNotEligible, link.Relationship)
	}

	session := &models.VisitSession{
		ID:           uuid.New(),
		VisitorID:    p.VisitorID,
		DetaineeID:   link.DetaineeID,
		LinkID:       link.ID,
		VisitType:    p.VisitType,
		TimeIn:       m.clock(),
		TimeInMethod: p.Method,
	}
	if err := m.sessions.Begin(ctx, session); err != nil {
		return nil, err
	}

	observability.OpenSessions.Inc()
	observability.VisitsStarted.WithLabelValues(string(p.VisitType), string(p.Method)).Inc()
	audit.Try(ctx, m.audit, audit.New(p.VisitorID, models.ActionVisitTimeIn, models.TargetSession, session.ID,
		map[string]any{
			"detainee_id": session.DetaineeID,
			"link_id":     session.LinkID,
			"visit_type":  session.VisitType,
			"method":      session.TimeInMethod,
		}))

	return session, nil
}

// End closes the visitor's open session. Fails with ErrNoOpenSession when
// nothing is open.
func (m *Manager) End(ctx context.Context, visitorID uuid.UUID, method models.CheckMethod) (*models.VisitSession, error) {
	open, err := m.sessions.OpenForVisitor(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("lookup open session: %w", err)
	}
	if open == nil {
		return nil, models.ErrNoOpenSession
	}
	return m.end(ctx, open, method)
}

// EndByID closes a specific session, for admin tooling.
func (m *Manager) EndByID(ctx context.Context, sessionID uuid.UUID, method models.CheckMethod) (*models.VisitSession, error) {
	session, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if session == nil || !session.Open() {
		return nil, models.ErrNoOpenSession
	}
	return m.end(ctx, session, method)
}

func (m *Manager) end(ctx context.Context, session *models.VisitSession, method models.CheckMethod) (*models.VisitSession, error) {
	now := m.clock()
	// Duration must stay non-negative even if the wall clock stepped back
	// between time-in and time-out.
	if now.Before(session.TimeIn) {
		now = session.TimeIn
	}

	closed, err := m.sessions.End(ctx, session.ID, now, method)
	if err != nil {
		return nil, err
	}

	observability.OpenSessions.Dec()
	observability.VisitDuration.Observe(closed.Duration().Seconds())
	audit.Try(ctx, m.audit, audit.New(closed.VisitorID, models.ActionVisitTimeOut, models.TargetSession, closed.ID,
		map[string]any{
			"detainee_id":      closed.DetaineeID,
			"method":           method,
			"duration_seconds": int(closed.Duration().Seconds()),
		}))

	return closed, nil
}

// OpenSessions lists every session currently open.
func (m *Manager) OpenSessions(ctx context.Context) ([]*models.VisitSession, error) {
	return m.sessions.Open(ctx)
}

// CompletedToday lists sessions closed within the facility-local day.
func (m *Manager) CompletedToday(ctx context.Context) ([]*models.VisitSession, error) {
	from, to := m.DayWindow(m.clock())
	return m.sessions.CompletedBetween(ctx, from, to)
}

// DayWindow returns the facility-local midnight-to-midnight interval
// containing t.
func (m *Manager) DayWindow(t time.Time) (time.Time, time.Time) {
	loc := m.settings.Location()
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
