// Package reviews holds patient reviews of the practice. New reviews wait
// for staff approval before they are published.
package reviews

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
)

type Source string

const (
	SourceInternal    Source = "internal"
	SourceZnanyLekarz Source = "znanylekarz"
)

type Review struct {
	ID          uuid.UUID `json:"id"`
	Author      string    `json:"patient_name"`
	Rating      int       `json:"rating"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"date"`
	Approved    bool      `json:"approved"`
	Source      Source    `json:"source"`
}

// Board is an in-memory review store. Callers lock.
type Board struct {
	byID map[uuid.UUID]*Review
	now  func() time.Time
}

func NewBoard(now func() time.Time) *Board {
	if now == nil {
		now = time.Now
	}
	return &Board{byID: make(map[uuid.UUID]*Review), now: now}
}

// Submit stores a pending internal review.
func (b *Board) Submit(author string, rating int, text string) (Review, error) {
	const op = "submit review"
	author, text = strings.TrimSpace(author), strings.TrimSpace(text)
	if author == "" || text == "" {
		return Review{}, appointment.NewError(appointment.KindInvalidInput, op, "field", "patient_name_text")
	}
	if rating < 1 || rating > 5 {
		return Review{}, appointment.NewError(appointment.KindInvalidInput, op, "field", "rating")
	}
	return b.Restore(Review{Author: author, Rating: rating, Text: text, Source: SourceInternal})
}

// Restore inserts a review as is, keeping its ID and approval.
func (b *Board) Restore(r Review) (Review, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if _, exists := b.byID[r.ID]; exists {
		return Review{}, appointment.NewError(appointment.KindInvalidInput, "restore review",
			"review_id", r.ID.String(), "reason", "duplicate_id")
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = b.now()
	}
	if r.Source == "" {
		r.Source = SourceInternal
	}
	stored := r
	b.byID[r.ID] = &stored
	return r, nil
}

func (b *Board) Approve(id uuid.UUID) (Review, error) {
	r, ok := b.byID[id]
	if !ok {
		return Review{}, appointment.NewError(appointment.KindNotFound, "approve review", "review_id", id.String())
	}
	r.Approved = true
	return *r, nil
}

// Reject discards a review, published or not.
func (b *Board) Reject(id uuid.UUID) error {
	if _, ok := b.byID[id]; !ok {
		return appointment.NewError(appointment.KindNotFound, "reject review", "review_id", id.String())
	}
	delete(b.byID, id)
	return nil
}

// List returns approved or pending reviews, newest first.
func (b *Board) List(approved bool) []Review {
	out := []Review{}
	for _, r := range b.byID {
		if r.Approved == approved {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
