package usecase

import (
	"context"
	"strings"
	"time"

	"smart-support-router/internal/config"
	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/model"
	"smart-support-router/internal/domain/ports/repository"
	"smart-support-router/internal/domain/ports/usecase"
	"smart-support-router/internal/infra/logging"
	"smart-support-router/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var _ usecase.TicketIngress = (*IngressUseCase)(nil)

// IngressUseCase accepts tickets: it assigns an id under the submit lock,
// records the initial pending status and enqueues the work envelope. No
// classification happens here; callers get their id back immediately.
type IngressUseCase struct {
	store         repository.TicketStore
	locker        repository.Locker
	submitLockKey string
	cfg           config.SubmitConfig
	now           func() time.Time
	log           *zerolog.Logger
}

func NewIngressUseCase(
	store repository.TicketStore,
	locker repository.Locker,
	submitLockKey string,
	cfg config.SubmitConfig,
	logger *zerolog.Logger,
) *IngressUseCase {
	l := logger.With().Str("component", "Ingress").Logger()
	return &IngressUseCase{
		store:         store,
		locker:        locker,
		submitLockKey: submitLockKey,
		cfg:           cfg,
		now:           time.Now,
		log:           &l,
	}
}

func (uc *IngressUseCase) Submit(ctx context.Context, req usecase.SubmitRequest) (string, error) {
	defer logging.TraceDuration(uc.log, "Ingress.Submit")()

	combined := model.CombinedText(req.Subject, req.Body, req.Description)
	if combined == "" {
		return "", domain.ErrInvalidArgument
	}

	token, err := uc.acquireSubmitLock(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if _, rerr := uc.locker.Unlock(ctx, uc.submitLockKey, token); rerr != nil {
			// The lease expires on its own; a failed release only costs
			// other submitters a short wait.
			uc.log.Warn().Err(rerr).Msg("submit lock release failed")
		}
	}()

	ticketID := req.TicketID
	if ticketID == "" {
		ticketID = generateTicketID()
	}
	createdAt := uc.now()

	rec := &model.StatusRecord{
		TicketID:    ticketID,
		Status:      model.TicketStatusPending,
		Subject:     req.Subject,
		Body:        req.Body,
		Description: req.Description,
		CreatedAt:   createdAt,
	}
	if err := uc.store.WriteStatus(ctx, rec); err != nil {
		return "", err
	}
	if err := uc.store.AddKnownID(ctx, ticketID); err != nil {
		return "", err
	}
	if err := uc.store.EnqueueWork(ctx, &model.WorkItem{
		TicketID:     ticketID,
		Subject:      req.Subject,
		Body:         req.Body,
		Description:  req.Description,
		CombinedText: combined,
		CreatedAt:    createdAt,
	}); err != nil {
		return "", err
	}

	metrics.IncSubmitted()
	uc.log.Info().Str("ticket_id", ticketID).Msg("ticket accepted")
	return ticketID, nil
}

// acquireSubmitLock makes a bounded number of attempts before giving up
// with ErrSubmissionContended, which callers treat as retryable.
func (uc *IngressUseCase) acquireSubmitLock(ctx context.Context) (string, error) {
	for i := 0; i < uc.cfg.LockAttempts; i++ {
		token, ok, err := uc.locker.TryLock(ctx, uc.submitLockKey, uc.cfg.LockTTL)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		metrics.IncLockContention("submit")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(uc.cfg.LockBackoff):
		}
	}
	return "", domain.ErrSubmissionContended
}

func generateTicketID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ticket-" + hex[:16]
}
