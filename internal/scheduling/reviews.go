package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/eventlog"
	"github.com/hackgods/practice-scheduling/internal/reviews"
)

// Reviews lists published reviews, or the moderation queue for staff.
func (s *Scheduler) Reviews(who Identity, pending bool) ([]reviews.Review, error) {
	if pending {
		if err := s.requireStaff("list pending reviews", who); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews.List(!pending), nil
}

func (s *Scheduler) SubmitReview(ctx context.Context, author string, rating int, text string) (reviews.Review, error) {
	s.mu.Lock()
	r, err := s.reviews.Submit(author, rating, text)
	s.mu.Unlock()
	if err != nil {
		return reviews.Review{}, err
	}
	s.logEvent(ctx, nil, eventlog.EventReviewSubmitted, map[string]any{"review_id": r.ID.String(), "rating": r.Rating})
	return r, nil
}

// RestoreReviews loads saved reviews, approval state included.
func (s *Scheduler) RestoreReviews(rs []reviews.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rs {
		if _, err := s.reviews.Restore(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) ApproveReview(ctx context.Context, who Identity, id uuid.UUID) (reviews.Review, error) {
	if err := s.requireStaff("approve review", who); err != nil {
		return reviews.Review{}, err
	}
	s.mu.Lock()
	r, err := s.reviews.Approve(id)
	s.mu.Unlock()
	if err != nil {
		return reviews.Review{}, err
	}
	s.logEvent(ctx, nil, eventlog.EventReviewApproved, map[string]any{"review_id": id.String()})
	return r, nil
}

func (s *Scheduler) RejectReview(ctx context.Context, who Identity, id uuid.UUID) error {
	if err := s.requireStaff("reject review", who); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.reviews.Reject(id)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logEvent(ctx, nil, eventlog.EventReviewRejected, map[string]any{"review_id": id.String()})
	return nil
}
