package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Category string

const (
	CategoryBilling   Category = "Billing"
	CategoryTechnical Category = "Technical"
	CategoryLegal     Category = "Legal"
)

// Categories lists every routable category, in fallback tie-break order.
var Categories = []Category{CategoryLegal, CategoryBilling, CategoryTechnical}

func (c Category) Valid() bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategoryLegal:
		return true
	}
	return false
}

type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusProcessing TicketStatus = "processing"
	TicketStatusCompleted  TicketStatus = "completed"
)

// rank orders the lifecycle: pending -> processing -> completed.
func (s TicketStatus) rank() int {
	switch s {
	case TicketStatusPending:
		return 0
	case TicketStatusProcessing:
		return 1
	case TicketStatusCompleted:
		return 2
	}
	return -1
}

// CanTransition reports whether moving from s to next is a forward step.
// The lifecycle is strictly forward; there are no reverse transitions.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	return next.rank() > s.rank()
}

// StatusRecord is the externally visible projection of a ticket's lifecycle.
// It is written once as pending by ingress and thereafter only by the worker.
type StatusRecord struct {
	TicketID     string       `json:"ticket_id"`
	Status       TicketStatus `json:"status"`
	Subject      string       `json:"subject,omitempty"`
	Body         string       `json:"body,omitempty"`
	Description  string       `json:"description,omitempty"`
	Category     Category     `json:"category,omitempty"`
	UrgencyScore *float64     `json:"urgency_score,omitempty"`
	UrgencyLabel string       `json:"urgency_label,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// WorkItem is the immutable envelope placed on the pending-work queue.
type WorkItem struct {
	TicketID     string    `json:"ticket_id"`
	Subject      string    `json:"subject,omitempty"`
	Body         string    `json:"body,omitempty"`
	Description  string    `json:"description,omitempty"`
	CombinedText string    `json:"combined_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// CombinedText joins the non-empty text fields into the single string used
// for classification and urgency scoring.
func CombinedText(subject, body, description string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{subject, body, description} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// UrgencyLabel maps a score S in [0,1] to the coarse label used in responses.
func UrgencyLabel(score float64) string {
	if score >= 0.5 {
		return "high"
	}
	return "low"
}

// ClampScore bounds S to [0,1] and rounds to 4 decimals.
func ClampScore(s float64) float64 {
	s = math.Max(0, math.Min(1, s))
	return math.Round(s*10000) / 10000
}

// EncodeReadyMember builds the ready-set member for a ticket. The ZSET score
// carries urgency; ties are broken by the member itself. Redis pops the
// lexicographically greatest member among equal scores, so the creation time
// is inverted and zero-padded: an earlier ticket encodes to a greater member
// and is popped first. The id suffix makes the ordering total.
func EncodeReadyMember(createdAt time.Time, id string) string {
	return fmt.Sprintf("%020d:%s", math.MaxInt64-createdAt.UnixNano(), id)
}

// DecodeReadyMember extracts the ticket id from a ready-set member.
func DecodeReadyMember(member string) string {
	if i := strings.IndexByte(member, ':'); i >= 0 {
		return member[i+1:]
	}
	return member
}

// MoreUrgent is the in-process counterpart of the ready-set ordering:
// completed tickets first, highest score first, earlier creation breaking
// ties; pending/processing tickets after, oldest first.
func MoreUrgent(a, b *StatusRecord) bool {
	ac, bc := a.Status == TicketStatusCompleted, b.Status == TicketStatusCompleted
	if ac != bc {
		return ac
	}
	if ac && bc {
		as, bs := scoreOf(a), scoreOf(b)
		if as != bs {
			return as > bs
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.TicketID < b.TicketID
}

func scoreOf(r *StatusRecord) float64 {
	if r.UrgencyScore == nil {
		return 0
	}
	return *r.UrgencyScore
}
