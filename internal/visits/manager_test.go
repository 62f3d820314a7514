package visits_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/links"
	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/storage"
	"github.com/your-org/vms/internal/visits"
)

type fixture struct {
	identities *storage.MemoryIdentityStore
	links      *links.MemoryLinkStore
	sessions   *visits.MemorySessionStore
	manager    *visits.Manager
	settings   *config.Provider

	now time.Time
	mu  sync.Mutex

	visitor  *models.Visitor
	detainee *models.Detainee
	link     *models.RelationshipLink
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// newFixture wires a visitor, a detained detainee and an approved spouse
// link, which is the happy path for both visit types.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Visits.Timezone = "UTC"
	settings, err := config.NewProvider(cfg)
	require.NoError(t, err)

	f := &fixture{
		identities: storage.NewMemoryIdentityStore(),
		links:      links.NewMemoryLinkStore(),
		sessions:   visits.NewMemorySessionStore(),
		settings:   settings,
		now:        time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	}

	f.visitor = &models.Visitor{ID: uuid.New(), Code: "V-001", Name: "Ana Reyes", Status: models.VisitorStatusActive}
	f.detainee = &models.Detainee{ID: uuid.New(), Code: "D-001", Name: "Ben Reyes", Status: models.DetaineeStatusDetained}
	require.NoError(t, f.identities.PutVisitor(context.Background(), f.visitor))
	require.NoError(t, f.identities.PutDetainee(context.Background(), f.detainee))

	f.link = f.addLink(t, f.visitor.ID, f.detainee.ID, models.RelationshipSpouse, true)

	f.manager = visits.NewManager(f.identities, f.links, f.sessions, settings, nil).WithClock(f.clock)
	return f
}

func (f *fixture) addLink(t *testing.T, visitorID, detaineeID uuid.UUID, rel models.Relationship, approve bool) *models.RelationshipLink {
	t.Helper()
	link := &models.RelationshipLink{
		ID:           uuid.New(),
		VisitorID:    visitorID,
		DetaineeID:   detaineeID,
		Relationship: rel,
		Category:     models.CategoryImmediateFamily,
		Status:       models.ApprovalPending,
		CreatedAt:    f.clock(),
	}
	require.NoError(t, f.links.Create(context.Background(), link))
	if approve {
		decided, err := f.links.Decide(context.Background(), link.ID, links.Decision{
			Approve:       true,
			ApproverID:    uuid.New(),
			CategoryLimit: -1,
			Now:           f.clock(),
		})
		require.NoError(t, err)
		return decided
	}
	return link
}

func (f *fixture) begin(t *testing.T) *models.VisitSession {
	t.Helper()
	session, err := f.manager.Begin(context.Background(), visits.BeginParams{
		VisitorID: f.visitor.ID,
		LinkID:    f.link.ID,
		VisitType: models.VisitTypeRegular,
		Method:    models.MethodFace,
	})
	require.NoError(t, err)
	return session
}

func TestBeginOpensSession(t *testing.T) {
	f := newFixture(t)

	session := f.begin(t)
	assert.True(t, session.Open())
	assert.Equal(t, f.detainee.ID, session.DetaineeID)
	assert.Equal(t, models.MethodFace, session.TimeInMethod)
	assert.Equal(t, f.clock(), session.TimeIn)
}

func TestBeginRejectsSecondOpenSession(t *testing.T) {
	f := newFixture(t)
	f.begin(t)

	_, err := f.manager.Begin(context.Background(), visits.BeginParams{
		VisitorID: f.visitor.ID,
		LinkID:    f.link.ID,
		VisitType: models.VisitTypeRegular,
		Method:    models.MethodQR,
	})
	assert.ErrorIs(t, err, models.ErrSessionAlreadyOpen)
}

func TestEndThenBeginAgainSameDay(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	f.advance(30 * time.Minute)

	closed, err := f.manager.End(context.Background(), f.visitor.ID, models.MethodFace)
	require.NoError(t, err)
	assert.False(t, closed.Open())
	assert.Equal(t, 30*time.Minute, closed.Duration())

	f.advance(time.Hour)
	again := f.begin(t)
	assert.True(t, again.Open())
}

func TestEndWithoutOpenSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.End(context.Background(), f.visitor.ID, models.MethodManual)
	assert.ErrorIs(t, err, models.ErrNoOpenSession)
}

func TestEndClampsBackwardClock(t *testing.T) {
	f := newFixture(t)
	f.begin(t)
	f.advance(-2 * time.Hour)

	closed, err := f.manager.End(context.Background(), f.visitor.ID, models.MethodManual)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), closed.Duration())
}

func TestEndByID(t *testing.T) {
	f := newFixture(t)
	session := f.begin(t)
	f.advance(10 * time.Minute)

	closed, err := f.manager.EndByID(context.Background(), session.ID, models.MethodManual)
	require.NoError(t, err)
	assert.Equal(t, session.ID, closed.ID)

	_, err = f.manager.EndByID(context.Background(), session.ID, models.MethodManual)
	assert.ErrorIs(t, err, models.ErrNoOpenSession)
}

func TestBeginRequiresApprovedOwnLink(t *testing.T) {
	f := newFixture(t)

	other := &models.Visitor{ID: uuid.New(), Code: "V-002", Name: "Cora Cruz", Status: models.VisitorStatusActive}
	require.NoError(t, f.identities.PutVisitor(context.Background(), other))

	// Someone else's link.
	_, err := f.manager.Begin(context.Background(), visits.BeginParams{
		VisitorID: other.ID,
		LinkID:    f.link.ID,
		VisitType: models.VisitTypeRegular,
		Method:    models.MethodCode,
	})
	assert.ErrorIs(t, err, models.ErrLinkNotApproved)

	// A pending link of their own.
	pending := f.addLink(t, other.ID, f.detainee.ID, models.RelationshipSibling, false)
	_, err = f.manager.Begin(context.Background(), visits.BeginParams{
		VisitorID: other.ID,
		LinkID:    pending.ID,
		VisitType: models.VisitTypeRegular,
		Method:    models.MethodCode,
	})
	assert.ErrorIs(t, err, models.ErrLinkNotApproved)
}

func TestBeginRejectsInactiveVisitor(t *testing.T) {
	f := newFixture(t)
	f.visitor.Status = models.VisitorStatusBlacklisted
	require.NoError(t, f.identities.PutVisitor(context.Background(), f.visitor))

	_, err := f.manager.Begin(context.Background(), visits.BeginParams{
		VisitorID: f.visitor.ID,
		LinkID:    f.link.ID,
		VisitType: models.VisitTypeRegular,
		Method:    models.MethodFace,
	})
	assert.ErrorIs(t, err, models.ErrVisitorInactive)
}

func TestBeginRejectsReleasedDetainee(t *testing.T) {
	f := newFixture(t)
	f.detainee.Status = models.DetaineeStatusReleased
	require.NoError(t, f.identities.PutDetainee(context.Background(), f.detainee))

	_, err := f.manager.Begin(context.Background(), visits.BeginParams{
		VisitorID: f.visitor.ID,
		LinkID:    f.link.ID,
		VisitType: models.VisitTypeRegular,
		Method:    models.MethodFace,
	})
	assert.ErrorIs(t, err, models.ErrDetaineeUnavailable)
}

func TestConjugalEligibility(t *testing.T) {
	f := newFixture(t)

	// Spouse passes the default policy.
	session, err := f.manager.Begin(context.Background(), visits.BeginParams{
		VisitorID: f.visitor.ID,
		LinkID:    f.link.ID,
		VisitType: models.VisitTypeConjugal,
		Method:    models.MethodFace,
	})
	require.NoError(t, err)
	_, err = f.manager.EndByID(context.Background(), session.ID, models.MethodManual)
	require.NoError(t, err)

	// Cousin does not.
	cousin := &models.Visitor{ID: uuid.New(), Code: "V-003", Name: "Dan Reyes", Status: models.VisitorStatusActive}
	require.NoError(t, f.identities.PutVisitor(context.Background(), cousin))
	cousinLink := f.addLink(t, cousin.ID, f.detainee.ID, models.RelationshipCousin, true)

	_, err = f.manager.Begin(context.Background(), visits.BeginParams{
		VisitorID: cousin.ID,
		LinkID:    cousinLink.ID,
		VisitType: models.VisitTypeConjugal,
		Method:    models.MethodFace,
	})
	assert.ErrorIs(t, err, models.ErrConjugalNotEligible)
}

func TestConcurrentBeginSingleWinner(t *testing.T) {
	f := newFixture(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.manager.Begin(context.Background(), visits.BeginParams{
				VisitorID: f.visitor.ID,
				LinkID:    f.link.ID,
				VisitType: models.VisitTypeRegular,
				Method:    models.MethodFace,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, models.ErrSessionAlreadyOpen)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestIdentifyByCodeNormalizes(t *testing.T) {
	f := newFixture(t)

	visitor, err := f.manager.IdentifyByCode(context.Background(), "  v-001 ")
	require.NoError(t, err)
	assert.Equal(t, f.visitor.ID, visitor.ID)

	_, err = f.manager.IdentifyByCode(context.Background(), "V-999")
	assert.ErrorIs(t, err, models.ErrVisitorNotFound)
}

func TestIdentifyMatchRequiresMatchedDecision(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.IdentifyMatch(context.Background(), models.MatchResult{
		Decision: models.DecisionAmbiguous,
	})
	assert.ErrorIs(t, err, models.ErrVisitorNotFound)

	id := f.visitor.ID
	visitor, err := f.manager.IdentifyMatch(context.Background(), models.MatchResult{
		Decision:  models.DecisionMatched,
		VisitorID: &id,
	})
	require.NoError(t, err)
	assert.Equal(t, f.visitor.ID, visitor.ID)
}

func TestNextAction(t *testing.T) {
	f := newFixture(t)

	mode, open, err := f.manager.NextAction(context.Background(), f.visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, visits.ModeTimeIn, mode)
	assert.Nil(t, open)

	session := f.begin(t)

	mode, open, err = f.manager.NextAction(context.Background(), f.visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, visits.ModeTimeOut, mode)
	require.NotNil(t, open)
	assert.Equal(t, session.ID, open.ID)
}

func TestCompletedTodayUsesFacilityDay(t *testing.T) {
	f := newFixture(t)

	// Yesterday's visit.
	f.mu.Lock()
	f.now = time.Date(2026, 8, 24, 20, 0, 0, 0, time.UTC)
	f.mu.Unlock()
	f.begin(t)
	f.advance(time.Hour)
	_, err := f.manager.End(context.Background(), f.visitor.ID, models.MethodManual)
	require.NoError(t, err)

	// Today's visit.
	f.mu.Lock()
	f.now = time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	f.mu.Unlock()
	f.begin(t)
	f.advance(45 * time.Minute)
	today, err := f.manager.End(context.Background(), f.visitor.ID, models.MethodManual)
	require.NoError(t, err)

	completed, err := f.manager.CompletedToday(context.Background())
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, today.ID, completed[0].ID)
}

func TestDayWindowBoundaries(t *testing.T) {
	f := newFixture(t)

	from, to := f.manager.DayWindow(time.Date(2026, 8, 25, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), to)
}

func TestOpenSessionsListing(t *testing.T) {
	f := newFixture(t)
	session := f.begin(t)

	open, err := f.manager.OpenSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, session.ID, open[0].ID)

	_, err = f.manager.End(context.Background(), f.visitor.ID, models.MethodFace)
	require.NoError(t, err)

	open, err = f.manager.OpenSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, open)
}
