package usecase

import (
	"context"

	"smart-support-router/internal/domain/model"
)

// SubmitRequest is the shaped ticket payload handed to the core by the HTTP
// layer. At least one of the text fields must be non-empty.
type SubmitRequest struct {
	Subject     string
	Body        string
	Description string
	// TicketID lets a caller supply its own id; ingress generates one when empty.
	TicketID string
}

// TicketIngress accepts new tickets into the pipeline.
type TicketIngress interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
}

// QueueReader serves status lookups and the priority ready-queue.
type QueueReader interface {
	GetStatus(ctx context.Context, ticketID string) (*model.StatusRecord, error)
	// TakeNext destructively pops the highest-priority completed ticket.
	TakeNext(ctx context.Context) (*model.StatusRecord, error)
	// ListAll returns every known ticket, completed-and-urgent first.
	ListAll(ctx context.Context) ([]*model.StatusRecord, error)
}
