package event

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per domain event, tagged
// with the request and cashier that caused it.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a handler that receives every event type
func NewAuditLogHandler(log *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: log}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	logger.Enrich(ctx, h.logger).Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.Int64("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes subscribes to all events
func (h *AuditLogHandler) EventTypes() []string { return nil }

var _ shared.EventHandler = (*AuditLogHandler)(nil)
