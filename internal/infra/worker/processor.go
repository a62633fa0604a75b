package worker

import (
	"context"
	"errors"
	"time"

	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/model"
	"smart-support-router/internal/domain/ports/adapter"
	"smart-support-router/internal/domain/ports/repository"
	"smart-support-router/internal/infra/logging"
	"smart-support-router/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Options carries the tunables of a processor instance. NotifyTimeout and
// the classification timeout (inside the classifier) are deliberately
// independent of LockTTL: lease expiry must not race a legitimately slow
// but succeeding call under normal load.
type Options struct {
	DequeueTimeout time.Duration
	LockTTL        time.Duration
	AlertThreshold float64
	NotifyTimeout  time.Duration
	// ProcessingLockKey maps a ticket id to its lock key.
	ProcessingLockKey func(id string) string
}

// Processor runs the worker state machine: dequeue, acquire per-ticket
// exclusivity, classify, publish the result, notify, release. One Processor
// per worker instance; instances share nothing but the store.
type Processor struct {
	store      repository.TicketStore
	locker     repository.Locker
	classifier adapter.Classifier
	notifier   adapter.Notifier
	pool       *Pool
	opts       Options
	log        *zerolog.Logger
}

func NewProcessor(
	store repository.TicketStore,
	locker repository.Locker,
	classifier adapter.Classifier,
	notifier adapter.Notifier,
	pool *Pool,
	opts Options,
	logger *zerolog.Logger,
) *Processor {
	l := logger.With().Str("component", "Processor").Logger()
	return &Processor{
		store:      store,
		locker:     locker,
		classifier: classifier,
		notifier:   notifier,
		pool:       pool,
		opts:       opts,
		log:        &l,
	}
}

// Run blocks until ctx is canceled. Store outages are logged and retried
// with a short pause; the loop itself never exits on an operational error.
func (p *Processor) Run(ctx context.Context) error {
	p.log.Info().Dur("dequeue_timeout", p.opts.DequeueTimeout).Msg("processor started")
	for {
		if ctx.Err() != nil {
			p.log.Info().Msg("processor stopping")
			return ctx.Err()
		}
		item, err := p.store.DequeueWork(ctx, p.opts.DequeueTimeout)
		if errors.Is(err, domain.ErrNotFound) {
			continue // idle timeout, not an error
		}
		if err != nil {
			if ctx.Err() != nil {
				p.log.Info().Msg("processor stopping")
				return ctx.Err()
			}
			p.log.Error().Err(err).Msg("dequeue failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		p.ProcessOne(ctx, item)
	}
}

// ProcessOne drives a single work item through the state machine. It is
// exported for the worker loop and for tests; every exit path leaves the
// status record in a forward-only state.
func (p *Processor) ProcessOne(ctx context.Context, item *model.WorkItem) {
	if item.TicketID == "" {
		p.log.Warn().Msg("work item without ticket id, dropped")
		return
	}
	ctx = logging.WithTicketID(ctx, item.TicketID)
	log := *logging.With(ctx, p.log)

	lockKey := p.opts.ProcessingLockKey(item.TicketID)
	token, ok, err := p.locker.TryLock(ctx, lockKey, p.opts.LockTTL)
	if err != nil {
		log.Error().Err(err).Msg("processing lock acquire failed")
		metrics.IncProcessed("failed")
		return
	}
	if !ok {
		// Another worker owns this ticket (or a duplicate envelope raced us).
		// Discarding here is what guarantees at-most-one classification.
		metrics.IncLockContention("processing")
		metrics.IncProcessed("skipped_locked")
		log.Debug().Msg("ticket already being processed, skipped")
		return
	}
	defer func() {
		// Release on a fresh context: the lease must not leak just because
		// the loop's context was canceled mid-ticket.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		released, rerr := p.locker.Unlock(rctx, lockKey, token)
		if rerr != nil {
			log.Error().Err(rerr).Msg("processing lock release failed")
		} else if !released {
			log.Warn().Err(domain.ErrLockNotHeld).Msg("processing lease expired mid-work")
		}
	}()

	start := time.Now()
	processing := &model.StatusRecord{
		TicketID:    item.TicketID,
		Status:      model.TicketStatusProcessing,
		Subject:     item.Subject,
		Body:        item.Body,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
	}
	if err := p.store.WriteStatus(ctx, processing); err != nil {
		log.Error().Err(err).Msg("write processing status failed")
		metrics.IncProcessed("failed")
		return
	}

	text := item.CombinedText
	if text == "" {
		text = model.CombinedText(item.Subject, item.Body, item.Description)
	}

	// The failover policy makes this total: a failing primary degrades to
	// the keyword fallback instead of aborting the ticket.
	category, score, _ := p.classifier.Classify(ctx, text)
	score = model.ClampScore(score)

	completed := *processing
	completed.Status = model.TicketStatusCompleted
	completed.Category = category
	completed.UrgencyScore = &score
	completed.UrgencyLabel = model.UrgencyLabel(score)
	if err := p.store.WriteStatus(ctx, &completed); err != nil {
		log.Error().Err(err).Msg("write completed status failed")
		metrics.IncProcessed("failed")
		return
	}
	if err := p.store.AddReady(ctx, item.TicketID, score, item.CreatedAt); err != nil {
		log.Error().Err(err).Msg("publish to ready queue failed")
		metrics.IncProcessed("failed")
		return
	}

	if score > p.opts.AlertThreshold {
		p.dispatchNotify(adapter.Alert{
			TicketID:     item.TicketID,
			UrgencyScore: score,
			Category:     category,
			Text:         text,
		}, &log)
	}

	metrics.IncProcessed("completed")
	log.Info().
		Str("category", string(category)).
		Float64("urgency_score", score).
		Dur("duration", time.Since(start)).
		Msg("ticket completed")
}

// dispatchNotify hands the alert to the bounded pool and returns
// immediately. The outcome never reaches the ticket's status.
func (p *Processor) dispatchNotify(alert adapter.Alert, log *zerolog.Logger) {
	notify := func(context.Context) error {
		nctx, cancel := context.WithTimeout(context.Background(), p.opts.NotifyTimeout)
		defer cancel()
		if err := p.notifier.Notify(nctx, alert); err != nil {
			metrics.IncNotification("failed")
			log.Warn().Err(err).Msg("high-urgency notification failed")
			return nil
		}
		metrics.IncNotification("sent")
		return nil
	}
	if err := p.pool.Submit(notify); err != nil {
		metrics.IncNotification("dropped")
		log.Warn().Err(err).Msg("high-urgency notification dropped")
	}
}
