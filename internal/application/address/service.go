package address

import (
	"context"
	"fmt"
	"time"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/id"
	"github.com/boutique-api/internal/pkg/validate"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Put(ctx context.Context, a *domain.Address) error
	Get(ctx context.Context, addressID string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Update(ctx context.Context, addressID string, updates map[string]interface{}) error
	Delete(ctx context.Context, addressID string) error
}

// Service manages shipping addresses.
type Service struct {
	addrs Repo
	clock clock.Clock
}

func NewService(addrs Repo, clk clock.Clock) *Service {
	return &Service{addrs: addrs, clock: clk}
}

func (s *Service) Create(ctx context.Context, userID string, in *domain.AddressInput) (*domain.Address, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	now := s.clock.Now()
	a := &domain.Address{
		AddressID:     id.New(),
		UserID:        userID,
		RecipientName: in.RecipientName,
		StreetAddress: in.StreetAddress,
		Landmark:      in.Landmark,
		City:          in.City,
		State:         in.State,
		Pincode:       in.Pincode,
		PhoneNumber:   in.PhoneNumber,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.addrs.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("store address: %w", err)
	}
	return a, nil
}

// Get returns an address owned by userID. A foreign address is reported as
// missing rather than forbidden so address IDs cannot be probed.
func (s *Service) Get(ctx context.Context, addressID, userID string) (*domain.Address, error) {
	a, err := s.addrs.Get(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("address %s: %w", addressID, domain.ErrNotFound)
	}
	return a, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.addrs.ListByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, addressID, userID string, in *domain.AddressInput) (*domain.Address, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if _, err := s.Get(ctx, addressID, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"recipient_name": in.RecipientName,
		"street_address": in.StreetAddress,
		"landmark":       in.Landmark,
		"city":           in.City,
		"state":          in.State,
		"pincode":        in.Pincode,
		"phone_number":   in.PhoneNumber,
		"updated_at":     s.clock.Now().Format(time.RFC3339),
	}
	if err := s.addrs.Update(ctx, addressID, updates); err != nil {
		return nil, err
	}
	return s.addrs.Get(ctx, addressID)
}

// Delete removes an address. Orders that snapshotted it are unaffected.
func (s *Service) Delete(ctx context.Context, addressID, userID string) error {
	if _, err := s.Get(ctx, addressID, userID); err != nil {
		return err
	}
	return s.addrs.Delete(ctx, addressID)
}
