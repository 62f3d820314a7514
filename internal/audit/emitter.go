// Package audit defines the narrow interface the engine uses to declare
// domain events. Durable storage of those events is the consumer's
// problem; emission failure must never block a visit.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/observability"
)

type Emitter interface {
	Emit(ctx context.Context, ev models.AuditEvent) error
}

// New fills in the event identity and timestamp.
func New(actorID uuid.UUID, action, targetType string, targetID uuid.UUID, details map[string]any) models.AuditEvent {
	return models.AuditEvent{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Timestamp:  time.Now().UTC(),
		Details:    details,
	}
}

// Try emits and swallows any failure, logging it instead. Every engine
// component goes through Try so audit loss stays non-fatal.
func Try(ctx context.Context, e Emitter, ev models.AuditEvent) {
	if e == nil {
		return
	}
	if err := e.Emit(ctx, ev); err != nil {
		observability.AuditEmitFailures.Inc()
		slog.Warn("audit emit failed", "action", ev.Action, "target", ev.TargetID, "error", err)
	}
}

// SlogEmitter writes events to the structured log. Used as the default
// emitter in tests and single-binary deployments.
type SlogEmitter struct{}

func (SlogEmitter) Emit(_ context.Context, ev models.AuditEvent) error {
	slog.Info("audit",
		"action", ev.Action,
		"actor", ev.ActorID,
		"target_type", ev.TargetType,
		"target", ev.TargetID,
		"details", ev.Details,
	)
	return nil
}

// AuditStore is the slice of the durable store the StoreEmitter needs.
type AuditStore interface {
	InsertAuditEvent(ctx context.Context, ev *models.AuditEvent) error
}

// StoreEmitter persists events directly. The auditor service uses it as
// the terminal sink of the audit stream.
type StoreEmitter struct {
	store AuditStore
}

func NewStoreEmitter(s AuditStore) *StoreEmitter {
	return &StoreEmitter{store: s}
}

func (s *StoreEmitter) Emit(ctx context.Context, ev models.AuditEvent) error {
	return s.store.InsertAuditEvent(ctx, &ev)
}

// MultiEmitter fans an event out to every emitter; the first failure is
// returned but all emitters are attempted.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ctx context.Context, ev models.AuditEvent) error {
	var first error
	for _, e := range m {
		if err := e.Emit(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
