package audit

import (
	"context"

	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/queue"
)

// BusEmitter publishes audit events to the NATS AUDIT stream, where the
// auditor service persists them and the API feeds the dashboard.
type BusEmitter struct {
	producer *queue.Producer
}

func NewBusEmitter(p *queue.Producer) *BusEmitter {
	return &BusEmitter{producer: p}
}

func (b *BusEmitter) Emit(ctx context.Context, ev models.AuditEvent) error {
	return b.producer.PublishAudit(ctx, ev.Action, ev)
}
