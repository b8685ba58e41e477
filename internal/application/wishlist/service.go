package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/pricing"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Put(ctx context.Context, item *domain.WishlistItem) error
	Get(ctx context.Context, userID, productID string) (*domain.WishlistItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Delete(ctx context.Context, userID, productID string) error
}

// ProductStore resolves saved products for the priced listing.
type ProductStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

// Service owns per-user saved products.
type Service struct {
	items    Repo
	products ProductStore
	clock    clock.Clock
}

func NewService(items Repo, products ProductStore, clk clock.Clock) *Service {
	return &Service{items: items, products: products, clock: clk}
}

// Entry is a saved product with its current price. Prices are never stored
// with the wishlist entry; they reflect the live catalog at read time.
type Entry struct {
	ProductID       string    `json:"product_id"`
	Name            string    `json:"name"`
	Price           string    `json:"price"`
	SellingPrice    string    `json:"selling_price"`
	DiscountPercent int       `json:"discount_percent"`
	Available       bool      `json:"available"`
	AddedAt         time.Time `json:"added_at"`
}

// Add saves a product to the user's wishlist. Saving an already-saved product
// is a no-op because the table is keyed by user and product.
func (s *Service) Add(ctx context.Context, userID, productID string) error {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if p.Enable == 0 {
		return fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}

	if _, err := s.items.Get(ctx, userID, productID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	return s.items.Put(ctx, &domain.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		AddedAt:   s.clock.Now(),
	})
}

// Remove drops a product from the user's wishlist.
func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	return s.items.Delete(ctx, userID, productID)
}

// List returns the user's saved products priced against the live catalog.
// Entries whose product has since been deleted or disabled are skipped.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		p, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if p.Enable == 0 {
			continue
		}
		listPrice, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s has malformed price %q: %w", p.ProductID, p.Price, err)
		}
		entries = append(entries, Entry{
			ProductID:       p.ProductID,
			Name:            p.Name,
			Price:           listPrice.StringFixed(2),
			SellingPrice:    pricing.DiscountedUnitPrice(listPrice, p.DiscountPercent).StringFixed(2),
			DiscountPercent: p.DiscountPercent,
			Available:       p.Available,
			AddedAt:         item.AddedAt,
		})
	}
	return entries, nil
}
