package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vms/internal/audit"
	"github.com/your-org/vms/internal/models"
)

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, models.AuditEvent) error {
	return errors.New("bus down")
}

type collectingEmitter struct {
	events []models.AuditEvent
}

func (c *collectingEmitter) Emit(_ context.Context, ev models.AuditEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func TestNewFillsIdentity(t *testing.T) {
	actor := uuid.New()
	target := uuid.New()

	ev := audit.New(actor, models.ActionLinkApproved, models.TargetLink, target, map[string]any{"k": "v"})

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Equal(t, actor, ev.ActorID)
	assert.Equal(t, models.ActionLinkApproved, ev.Action)
	assert.Equal(t, target, ev.TargetID)
}

func TestTrySwallowsFailures(t *testing.T) {
	ev := audit.New(uuid.Nil, models.ActionFaceMatch, models.TargetVisitor, uuid.Nil, nil)

	// Neither a failing emitter nor a nil one may panic or propagate.
	audit.Try(context.Background(), failingEmitter{}, ev)
	audit.Try(context.Background(), nil, ev)
}

func TestMultiEmitterAttemptsAll(t *testing.T) {
	sink := &collectingEmitter{}
	m := audit.MultiEmitter{failingEmitter{}, sink}

	ev := audit.New(uuid.Nil, models.ActionVisitTimeIn, models.TargetSession, uuid.New(), nil)
	err := m.Emit(context.Background(), ev)

	assert.Error(t, err)
	require.Len(t, sink.events, 1)
	assert.Equal(t, ev.ID, sink.events[0].ID)
}
