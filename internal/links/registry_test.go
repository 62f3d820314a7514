package links_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/links"
	"github.com/your-org/vms/internal/models"
)

// stubCounter reports a fixed session count for every link.
type stubCounter int

func (c stubCounter) CountForLink(context.Context, uuid.UUID) (int, error) {
	return int(c), nil
}

func testRegistry(t *testing.T, sessions links.SessionCounter) *links.Registry {
	t.Helper()
	cfg := config.Default()
	cfg.Visits.Timezone = "UTC"
	cfg.Visits.CategoryLimits = map[models.LinkCategory]int{
		models.CategoryImmediateFamily: -1,
		models.CategoryLegalGuardian:   1,
		models.CategoryCloseFriend:     2,
	}
	settings, err := config.NewProvider(cfg)
	require.NoError(t, err)
	return links.NewRegistry(links.NewMemoryLinkStore(), sessions, settings, nil)
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	r := testRegistry(t, stubCounter(0))
	visitor, detainee := uuid.New(), uuid.New()

	_, err := r.Create(context.Background(), uuid.Nil, visitor, detainee,
		models.RelationshipSibling, models.CategoryImmediateFamily)
	require.NoError(t, err)

	_, err = r.Create(context.Background(), uuid.Nil, visitor, detainee,
		models.RelationshipFriend, models.CategoryCloseFriend)
	assert.ErrorIs(t, err, models.ErrDuplicateLink)
}

func TestCreateDuplicateEvenAfterRejection(t *testing.T) {
	r := testRegistry(t, stubCounter(0))
	visitor, detainee := uuid.New(), uuid.New()

	link, err := r.Create(context.Background(), uuid.Nil, visitor, detainee,
		models.RelationshipFriend, models.CategoryCloseFriend)
	require.NoError(t, err)
	_, err = r.Reject(context.Background(), link.ID, uuid.New(), "incomplete documents")
	require.NoError(t, err)

	_, err = r.Create(context.Background(), uuid.Nil, visitor, detainee,
		models.RelationshipFriend, models.CategoryCloseFriend)
	assert.ErrorIs(t, err, models.ErrDuplicateLink)
}

func TestCreateValidatesEnums(t *testing.T) {
	r := testRegistry(t, stubCounter(0))

	_, err := r.Create(context.Background(), uuid.Nil, uuid.New(), uuid.New(),
		models.Relationship("acquaintance"), models.CategoryCloseFriend)
	assert.Error(t, err)

	_, err = r.Create(context.Background(), uuid.Nil, uuid.New(), uuid.New(),
		models.RelationshipFriend, models.LinkCategory("entourage"))
	assert.Error(t, err)
}

func TestApproveRecordsDecision(t *testing.T) {
	r := testRegistry(t, stubCounter(0))
	approver := uuid.New()

	link, err := r.Create(context.Background(), uuid.Nil, uuid.New(), uuid.New(),
		models.RelationshipSpouse, models.CategoryImmediateFamily)
	require.NoError(t, err)

	approved, err := r.Approve(context.Background(), link.ID, approver)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.Status)
	require.NotNil(t, approved.ApproverID)
	assert.Equal(t, approver, *approved.ApproverID)
	assert.NotNil(t, approved.DecidedAt)
}

func TestApproveIsIdempotent(t *testing.T) {
	r := testRegistry(t, stubCounter(0))

	link, err := r.Create(context.Background(), uuid.Nil, uuid.New(), uuid.New(),
		models.RelationshipSpouse, models.CategoryImmediateFamily)
	require.NoError(t, err)

	_, err = r.Approve(context.Background(), link.ID, uuid.New())
	require.NoError(t, err)
	again, err := r.Approve(context.Background(), link.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, again.Status)
}

func TestApproveRejectedLinkFails(t *testing.T) {
	r := testRegistry(t, stubCounter(0))

	link, err := r.Create(context.Background(), uuid.Nil, uuid.New(), uuid.New(),
		models.RelationshipFriend, models.CategoryCloseFriend)
	require.NoError(t, err)
	_, err = r.Reject(context.Background(), link.ID, uuid.New(), "no")
	require.NoError(t, err)

	_, err = r.Approve(context.Background(), link.ID, uuid.New())
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)
}

func TestApproveEnforcesCategoryCapacity(t *testing.T) {
	r := testRegistry(t, stubCounter(0))
	detainee := uuid.New()

	first, err := r.Create(context.Background(), uuid.Nil, uuid.New(), detainee,
		models.RelationshipGuardian, models.CategoryLegalGuardian)
	require.NoError(t, err)
	second, err := r.Create(context.Background(), uuid.Nil, uuid.New(), detainee,
		models.RelationshipLawyer, models.CategoryLegalGuardian)
	require.NoError(t, err)

	_, err = r.Approve(context.Background(), first.ID, uuid.New())
	require.NoError(t, err)

	// legal_guardian is capped at 1 for this facility.
	_, err = r.Approve(context.Background(), second.ID, uuid.New())
	assert.ErrorIs(t, err, models.ErrCapacityExceeded)

	// The failed approval leaves the link pending, so rejection still works.
	rejected, err := r.Reject(context.Background(), second.ID, uuid.New(), "capacity")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.Status)
}

func TestApproveUnlimitedCategory(t *testing.T) {
	r := testRegistry(t, stubCounter(0))
	detainee := uuid.New()

	for i := 0; i < 5; i++ {
		link, err := r.Create(context.Background(), uuid.Nil, uuid.New(), detainee,
			models.RelationshipSibling, models.CategoryImmediateFamily)
		require.NoError(t, err)
		_, err = r.Approve(context.Background(), link.ID, uuid.New())
		require.NoError(t, err)
	}

	approved, err := r.ApprovedForDetainee(context.Background(), detainee)
	require.NoError(t, err)
	assert.Len(t, approved, 5)
}

func TestCapacityCountsOnlyApprovedLinks(t *testing.T) {
	r := testRegistry(t, stubCounter(0))
	detainee := uuid.New()

	rejectedLink, err := r.Create(context.Background(), uuid.Nil, uuid.New(), detainee,
		models.RelationshipGuardian, models.CategoryLegalGuardian)
	require.NoError(t, err)
	_, err = r.Reject(context.Background(), rejectedLink.ID, uuid.New(), "no")
	require.NoError(t, err)

	link, err := r.Create(context.Background(), uuid.Nil, uuid.New(), detainee,
		models.RelationshipLawyer, models.CategoryLegalGuardian)
	require.NoError(t, err)
	_, err = r.Approve(context.Background(), link.ID, uuid.New())
	assert.NoError(t, err)
}

func TestRejectReasonUpdateWhileUnused(t *testing.T) {
	r := testRegistry(t, stubCounter(0))

	link, err := r.Create(context.Background(), uuid.Nil, uuid.New(), uuid.New(),
		models.RelationshipFriend, models.CategoryCloseFriend)
	require.NoError(t, err)

	_, err = r.Reject(context.Background(), link.ID, uuid.New(), "first reason")
	require.NoError(t, err)

	updated, err := r.Reject(context.Background(), link.ID, uuid.New(), "better reason")
	require.NoError(t, err)
	assert.Equal(t, "better reason", updated.RejectReason)
	assert.Equal(t, models.ApprovalRejected, updated.Status)
}

func TestRejectReasonFrozenOnceLinkHasSessions(t *testing.T) {
	r := testRegistry(t, stubCounter(1))

	link, err := r.Create(context.Background(), uuid.Nil, uuid.New(), uuid.New(),
		models.RelationshipFriend, models.CategoryCloseFriend)
	require.NoError(t, err)

	_, err = r.Reject(context.Background(), link.ID, uuid.New(), "first reason")
	require.NoError(t, err)

	_, err = r.Reject(context.Background(), link.ID, uuid.New(), "revised")
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)
}

func TestGetMissingLink(t *testing.T) {
	r := testRegistry(t, stubCounter(0))
	_, err := r.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrLinkNotFound)
}
