package usecase

import (
	"context"
	"errors"
	"sort"

	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/model"
	"smart-support-router/internal/domain/ports/repository"
	"smart-support-router/internal/domain/ports/usecase"
	"smart-support-router/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ usecase.QueueReader = (*ReaderUseCase)(nil)

// ReaderUseCase serves consumers of the priority ready-queue and the status
// audit trail. It never mutates anything except popping the ready-set.
type ReaderUseCase struct {
	store repository.TicketStore
	log   *zerolog.Logger
}

func NewReaderUseCase(store repository.TicketStore, logger *zerolog.Logger) *ReaderUseCase {
	l := logger.With().Str("component", "Reader").Logger()
	return &ReaderUseCase{store: store, log: &l}
}

func (uc *ReaderUseCase) GetStatus(ctx context.Context, ticketID string) (*model.StatusRecord, error) {
	return uc.store.ReadStatus(ctx, ticketID)
}

// TakeNext destructively pops the highest-priority completed ticket. The
// status record itself survives; only the ready-set entry is consumed.
func (uc *ReaderUseCase) TakeNext(ctx context.Context) (*model.StatusRecord, error) {
	defer logging.TraceDuration(uc.log, "Reader.TakeNext")()

	ticketID, err := uc.store.PopHighestReady(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := uc.store.ReadStatus(ctx, ticketID)
	if err != nil {
		// The ready-set outlived the status record (retention expiry).
		uc.log.Warn().Str("ticket_id", ticketID).Err(err).Msg("popped ready ticket without status record")
		return nil, err
	}
	return rec, nil
}

// ListAll is the non-destructive view: every known ticket, completed ones
// first in ready-queue order, then pending/processing by creation time.
func (uc *ReaderUseCase) ListAll(ctx context.Context) ([]*model.StatusRecord, error) {
	defer logging.TraceDuration(uc.log, "Reader.ListAll")()

	ids, err := uc.store.ListKnownIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.StatusRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := uc.store.ReadStatus(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue // record aged out of retention
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return model.MoreUrgent(out[i], out[j]) })
	return out, nil
}
