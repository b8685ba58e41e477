package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/id"
	"github.com/boutique-api/internal/pkg/validate"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Put(ctx context.Context, r *domain.Review) error
	Get(ctx context.Context, reviewID string) (*domain.Review, error)
	GetByUserAndProduct(ctx context.Context, userID, productID string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListPending(ctx context.Context) ([]domain.Review, error)
	Delete(ctx context.Context, reviewID string) error
}

// ProductStore confirms the reviewed product exists.
type ProductStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

// Service owns product reviews and their moderation queue.
type Service struct {
	reviews  Repo
	products ProductStore
	clock    clock.Clock
}

func NewService(reviews Repo, products ProductStore, clk clock.Clock) *Service {
	return &Service{reviews: reviews, products: products, clock: clk}
}

// Summary is the public review listing for a product.
type Summary struct {
	Reviews       []domain.Review `json:"reviews"`
	AverageRating string          `json:"average_rating"`
	Count         int             `json:"count"`
}

// Submit records a user's review of a product, replacing any review they
// already left. Either way the review lands unapproved and waits for
// moderation.
func (s *Service) Submit(ctx context.Context, userID, productID string, in *domain.ReviewInput) (*domain.Review, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrBadRequest)
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	rev, err := s.reviews.GetByUserAndProduct(ctx, userID, productID)
	switch {
	case err == nil:
		rev.Rating = in.Rating
		rev.Comment = in.Comment
		rev.Approved = false
		rev.UpdatedAt = now
	case errors.Is(err, domain.ErrNotFound):
		rev = &domain.Review{
			ReviewID:  id.New(),
			ProductID: productID,
			UserID:    userID,
			Rating:    in.Rating,
			Comment:   in.Comment,
			Approved:  false,
			PostedAt:  now,
			UpdatedAt: now,
		}
	default:
		return nil, err
	}

	if err := s.reviews.Put(ctx, rev); err != nil {
		return nil, fmt.Errorf("store review: %w", err)
	}
	return rev, nil
}

// ListApproved returns the approved reviews for a product together with the
// average rating across them.
func (s *Service) ListApproved(ctx context.Context, productID string) (*Summary, error) {
	all, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	approved := make([]domain.Review, 0, len(all))
	sum := 0
	for _, r := range all {
		if r.Approved {
			approved = append(approved, r)
			sum += r.Rating
		}
	}

	avg := decimal.Zero
	if len(approved) > 0 {
		avg = decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(len(approved))), 1)
	}
	return &Summary{
		Reviews:       approved,
		AverageRating: avg.StringFixed(1),
		Count:         len(approved),
	}, nil
}

// ListPending returns the moderation queue.
func (s *Service) ListPending(ctx context.Context) ([]domain.Review, error) {
	return s.reviews.ListPending(ctx)
}

// Approve publishes a review.
func (s *Service) Approve(ctx context.Context, reviewID string) (*domain.Review, error) {
	rev, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	rev.Approved = true
	rev.UpdatedAt = s.clock.Now()
	if err := s.reviews.Put(ctx, rev); err != nil {
		return nil, fmt.Errorf("store review: %w", err)
	}
	return rev, nil
}

// Delete removes a review outright.
func (s *Service) Delete(ctx context.Context, reviewID string) error {
	if _, err := s.reviews.Get(ctx, reviewID); err != nil {
		return err
	}
	return s.reviews.Delete(ctx, reviewID)
}
