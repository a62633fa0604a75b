package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smart-support-router/internal/config"
	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/model"
	"smart-support-router/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

// Keys builds every key in the store's namespace. The layout: one FIFO
// pending-work queue, one status record per ticket id, one audit set of all
// ids, one priority ready-set, and two lock namespaces.
type Keys struct {
	prefix string
}

func NewKeys(prefix string) Keys { return Keys{prefix: prefix} }

func (k Keys) Queue() string                { return k.prefix + "queue" }
func (k Keys) Status(id string) string      { return k.prefix + "status:" + id }
func (k Keys) AllIDs() string               { return k.prefix + "all_ids" }
func (k Keys) Ready() string                { return k.prefix + "ready" }
func (k Keys) SubmitLock() string           { return k.prefix + "lock:submit" }
func (k Keys) ProcessingLock(id string) string { return k.prefix + "lock:processing:" + id }

var _ repository.TicketStore = (*TicketStore)(nil)

// TicketStore implements the shared-store contract on Redis: LPUSH/BRPOP for
// the pending-work queue, JSON strings for status records, a set for known
// ids and a sorted set for the ready-queue.
type TicketStore struct {
	cli       *redis.Client
	keys      Keys
	statusTTL time.Duration
}

func NewTicketStore(c *Client, cfg *config.RedisConfig) *TicketStore {
	return &TicketStore{
		cli:       c.cli,
		keys:      NewKeys(cfg.KeyPrefix),
		statusTTL: cfg.StatusTTL,
	}
}

func (s *TicketStore) Keys() Keys { return s.keys }

func (s *TicketStore) EnqueueWork(ctx context.Context, item *model.WorkItem) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal work item: %w", err)
	}
	if err := s.cli.LPush(ctx, s.keys.Queue(), b).Err(); err != nil {
		return storeErr("lpush", err)
	}
	return nil
}

func (s *TicketStore) DequeueWork(ctx context.Context, timeout time.Duration) (*model.WorkItem, error) {
	res, err := s.cli.BRPop(ctx, timeout, s.keys.Queue()).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("brpop", err)
	}
	// res is [key, value]
	var item model.WorkItem
	if err := json.Unmarshal([]byte(res[1]), &item); err != nil {
		return nil, fmt.Errorf("unmarshal work item: %w", err)
	}
	return &item, nil
}

func (s *TicketStore) WriteStatus(ctx context.Context, rec *model.StatusRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := s.cli.Set(ctx, s.keys.Status(rec.TicketID), b, s.statusTTL).Err(); err != nil {
		return storeErr("set status", err)
	}
	return nil
}

func (s *TicketStore) ReadStatus(ctx context.Context, ticketID string) (*model.StatusRecord, error) {
	raw, err := s.cli.Get(ctx, s.keys.Status(ticketID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get status", err)
	}
	var rec model.StatusRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal status: %w", err)
	}
	return &rec, nil
}

func (s *TicketStore) AddKnownID(ctx context.Context, ticketID string) error {
	if err := s.cli.SAdd(ctx, s.keys.AllIDs(), ticketID).Err(); err != nil {
		return storeErr("sadd", err)
	}
	return nil
}

func (s *TicketStore) ListKnownIDs(ctx context.Context) ([]string, error) {
	ids, err := s.cli.SMembers(ctx, s.keys.AllIDs()).Result()
	if err != nil {
		return nil, storeErr("smembers", err)
	}
	return ids, nil
}

func (s *TicketStore) AddReady(ctx context.Context, ticketID string, score float64, createdAt time.Time) error {
	member := model.EncodeReadyMember(createdAt, ticketID)
	if err := s.cli.ZAdd(ctx, s.keys.Ready(), &redis.Z{Score: score, Member: member}).Err(); err != nil {
		return storeErr("zadd", err)
	}
	return nil
}

func (s *TicketStore) PopHighestReady(ctx context.Context) (string, error) {
	zs, err := s.cli.ZPopMax(ctx, s.keys.Ready()).Result()
	if err != nil {
		return "", storeErr("zpopmax", err)
	}
	if len(zs) == 0 {
		return "", domain.ErrNotFound
	}
	member, _ := zs[0].Member.(string)
	return model.DecodeReadyMember(member), nil
}

func (s *TicketStore) ListReadyIDs(ctx context.Context) ([]string, error) {
	members, err := s.cli.ZRevRange(ctx, s.keys.Ready(), 0, -1).Result()
	if err != nil {
		return nil, storeErr("zrevrange", err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, model.DecodeReadyMember(m))
	}
	return ids, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
