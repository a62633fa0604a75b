package repository

import (
	"context"
	"time"

	"smart-support-router/internal/domain/model"
)

// TicketStore is the shared-store contract the core depends on. All mutation
// of the pending-work queue and the ready-set goes through these primitives;
// implementations must map transport failures to domain.ErrStoreUnavailable.
type TicketStore interface {
	// EnqueueWork appends an envelope to the tail of the pending-work queue.
	EnqueueWork(ctx context.Context, item *model.WorkItem) error
	// DequeueWork removes and returns the head of the queue, blocking up to
	// timeout. Returns domain.ErrNotFound when the wait times out.
	DequeueWork(ctx context.Context, timeout time.Duration) (*model.WorkItem, error)

	WriteStatus(ctx context.Context, rec *model.StatusRecord) error
	// ReadStatus returns domain.ErrNotFound for unknown ids.
	ReadStatus(ctx context.Context, ticketID string) (*model.StatusRecord, error)

	// AddKnownID records a ticket id in the audit set backing ListAll.
	AddKnownID(ctx context.Context, ticketID string) error
	ListKnownIDs(ctx context.Context) ([]string, error)

	// AddReady publishes a completed ticket into the priority ready-set.
	AddReady(ctx context.Context, ticketID string, score float64, createdAt time.Time) error
	// PopHighestReady atomically removes and returns the highest-priority
	// ticket id, or domain.ErrNotFound when the ready-set is empty.
	PopHighestReady(ctx context.Context) (string, error)
	// ListReadyIDs returns the ready-set ids in priority order, non-destructively.
	ListReadyIDs(ctx context.Context) ([]string, error)
}

// Locker is the lease-lock contract. Leases expire on their own so a crashed
// holder cannot deadlock the system.
type Locker interface {
	// TryLock makes a single atomic attempt to acquire key for ttl. The
	// returned token must be presented to Unlock; ok is false when the lock
	// is already held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock releases key if it still holds token. It is idempotent: a
	// second release, or a release after lease expiry, returns (false, nil)
	// and never touches a lock acquired by another holder.
	Unlock(ctx context.Context, key, token string) (bool, error)
}
