package adapter

import (
	"context"

	"smart-support-router/internal/domain/model"
)

// Alert carries the fields posted to the outbound alerting channel for a
// high-urgency ticket.
type Alert struct {
	TicketID     string
	UrgencyScore float64
	Category     model.Category
	Text         string
}

// Notifier is the port for outbound alerting. Calls are best-effort: the
// pipeline logs failures and never retries or propagates them.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}
