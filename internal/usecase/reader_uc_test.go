package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/model"
)

func completeTicket(t *testing.T, store *memStore, id string, score float64, createdAt time.Time) {
	t.Helper()
	ctx := context.Background()
	s := score
	rec := &model.StatusRecord{
		TicketID:     id,
		Status:       model.TicketStatusCompleted,
		Category:     model.CategoryTechnical,
		UrgencyScore: &s,
		UrgencyLabel: model.UrgencyLabel(s),
		CreatedAt:    createdAt,
	}
	if err := store.WriteStatus(ctx, rec); err != nil {
		t.Fatalf("WriteStatus: %v", err)
	}
	if err := store.AddKnownID(ctx, id); err != nil {
		t.Fatalf("AddKnownID: %v", err)
	}
	if err := store.AddReady(ctx, id, score, createdAt); err != nil {
		t.Fatalf("AddReady: %v", err)
	}
}

func TestReader_TakeNext_PriorityOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	uc := NewReaderUseCase(store, newLogger())

	base := time.Now()
	// Submitted in score order 0.2, 0.9, 0.5; consumed 0.9, 0.5, 0.2.
	completeTicket(t, store, "ticket-a", 0.2, base)
	completeTicket(t, store, "ticket-b", 0.9, base.Add(time.Second))
	completeTicket(t, store, "ticket-c", 0.5, base.Add(2*time.Second))

	var got []float64
	for i := 0; i < 3; i++ {
		rec, err := uc.TakeNext(ctx)
		if err != nil {
			t.Fatalf("TakeNext %d: %v", i, err)
		}
		got = append(got, *rec.UrgencyScore)
	}
	want := []float64{0.9, 0.5, 0.2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected scores %v, got %v", want, got)
		}
	}

	// Destructive: the ready-set is now empty but records survive.
	if _, err := uc.TakeNext(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty ready-set, got %v", err)
	}
	if _, err := uc.GetStatus(ctx, "ticket-b"); err != nil {
		t.Fatalf("status record must survive TakeNext: %v", err)
	}
}

func TestReader_TakeNext_TieBreakByCreation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	uc := NewReaderUseCase(store, newLogger())

	t1 := time.Now()
	t2 := t1.Add(time.Minute)
	completeTicket(t, store, "ticket-later", 0.5, t2)
	completeTicket(t, store, "ticket-earlier", 0.5, t1)

	rec, err := uc.TakeNext(ctx)
	if err != nil {
		t.Fatalf("TakeNext: %v", err)
	}
	if rec.TicketID != "ticket-earlier" {
		t.Fatalf("expected earlier ticket first on equal score, got %q", rec.TicketID)
	}
}

func TestReader_ListAll_Ordering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	uc := NewReaderUseCase(store, newLogger())

	base := time.Now()
	completeTicket(t, store, "ticket-low", 0.2, base)
	completeTicket(t, store, "ticket-high", 0.9, base.Add(time.Second))

	// A ticket still pending sorts after every completed one.
	pending := &model.StatusRecord{
		TicketID:  "ticket-pending",
		Status:    model.TicketStatusPending,
		CreatedAt: base.Add(-time.Hour), // older than everything
	}
	if err := store.WriteStatus(ctx, pending); err != nil {
		t.Fatalf("WriteStatus: %v", err)
	}
	if err := store.AddKnownID(ctx, pending.TicketID); err != nil {
		t.Fatalf("AddKnownID: %v", err)
	}

	out, err := uc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := []string{"ticket-high", "ticket-low", "ticket-pending"}
	if len(out) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(out))
	}
	for i, id := range want {
		if out[i].TicketID != id {
			t.Fatalf("position %d: expected %q, got %q", i, id, out[i].TicketID)
		}
	}
}

func TestReader_GetStatus_NotFound(t *testing.T) {
	t.Parallel()

	uc := NewReaderUseCase(newMemStore(), newLogger())
	_, err := uc.GetStatus(context.Background(), "ticket-missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
