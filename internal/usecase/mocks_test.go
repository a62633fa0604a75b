// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/model"
)

// memStore is a small in-memory TicketStore used by unit tests. It mirrors
// the Redis implementation's ordering: the ready-set pops the highest score
// first and, on ties, the lexicographically greatest encoded member.
type memStore struct {
	mu       sync.Mutex
	queue    []*model.WorkItem
	statuses map[string]*model.StatusRecord
	known    []string
	ready    map[string]float64 // encoded member -> score

	failWith error // when set, every store call fails with it
}

func newMemStore() *memStore {
	return &memStore{
		statuses: make(map[string]*model.StatusRecord),
		ready:    make(map[string]float64),
	}
}

func (m *memStore) EnqueueWork(ctx context.Context, item *model.WorkItem) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	m.queue = append(m.queue, &cp)
	return nil
}

func (m *memStore) DequeueWork(ctx context.Context, timeout time.Duration) (*model.WorkItem, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil, domain.ErrNotFound
	}
	item := m.queue[0]
	m.queue = m.queue[1:]
	return item, nil
}

func (m *memStore) WriteStatus(ctx context.Context, rec *model.StatusRecord) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.statuses[rec.TicketID] = &cp
	return nil
}

func (m *memStore) ReadStatus(ctx context.Context, ticketID string) (*model.StatusRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.statuses[ticketID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) AddKnownID(ctx context.Context, ticketID string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.known = append(m.known, ticketID)
	return nil
}

func (m *memStore) ListKnownIDs(ctx context.Context) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.known...), nil
}

func (m *memStore) AddReady(ctx context.Context, ticketID string, score float64, createdAt time.Time) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready[model.EncodeReadyMember(createdAt, ticketID)] = score
	return nil
}

func (m *memStore) PopHighestReady(ctx context.Context) (string, error) {
	if m.failWith != nil {
		return "", m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	best := ""
	for member, score := range m.ready {
		if best == "" {
			best = member
			continue
		}
		if score > m.ready[best] || (score == m.ready[best] && member > best) {
			best = member
		}
	}
	if best == "" {
		return "", domain.ErrNotFound
	}
	delete(m.ready, best)
	return model.DecodeReadyMember(best), nil
}

func (m *memStore) ListReadyIDs(ctx context.Context) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.ready))
	for member := range m.ready {
		ids = append(ids, model.DecodeReadyMember(member))
	}
	return ids, nil
}

// memLocker is an in-memory lease locker without expiry; tests that need an
// expired lease manipulate the held map directly.
type memLocker struct {
	mu      sync.Mutex
	held    map[string]string
	counter int

	failWith error
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]string)}
}

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.failWith != nil {
		return "", false, l.failWith
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.counter++
	token := fmt.Sprintf("token-%d", l.counter)
	l.held[key] = token
	return token, true, nil
}

func (l *memLocker) Unlock(ctx context.Context, key, token string) (bool, error) {
	if l.failWith != nil {
		return false, l.failWith
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return false, nil
	}
	delete(l.held, key)
	return true, nil
}
