package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/pricing"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Put(ctx context.Context, item *domain.CartItem) error
	Get(ctx context.Context, userID, productID string) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	Delete(ctx context.Context, userID, productID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// ProductStore resolves live products when pricing the cart.
type ProductStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

// Service manages shopping carts. Carts store product references and
// quantities only; prices are resolved against the live catalog on every read,
// so a discount change is reflected in the cart immediately.
type Service struct {
	items    Repo
	products ProductStore
	clock    clock.Clock
}

func NewService(items Repo, products ProductStore, clk clock.Clock) *Service {
	return &Service{items: items, products: products, clock: clk}
}

// View is a priced cart as returned to the client.
type View struct {
	Items []domain.CartLine `json:"items"`
	Total string            `json:"total"`
}

// Add puts a product in the cart. Adding a product already present replaces
// its quantity rather than accumulating.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", domain.ErrBadRequest)
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Available || p.Enable == 0 {
		return fmt.Errorf("product %s is not available: %w", productID, domain.ErrConflict)
	}

	return s.items.Put(ctx, &domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   s.clock.Now(),
	})
}

// UpdateQuantity sets the quantity of an existing cart entry. A quantity of
// zero or less removes the entry.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return s.items.Delete(ctx, userID, productID)
	}

	item, err := s.items.Get(ctx, userID, productID)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	return s.items.Put(ctx, item)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	return s.items.Delete(ctx, userID, productID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.items.DeleteByUser(ctx, userID)
}

// Items returns the priced cart.
func (s *Service) Items(ctx context.Context, userID string) (*View, error) {
	lines, total, err := s.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &View{Items: lines, Total: total}, nil
}

// Lines prices every cart entry against the live catalog and returns the
// lines plus the rounded cart total. Entries whose product has been removed
// from the catalog are skipped.
func (s *Service) Lines(ctx context.Context, userID string) ([]domain.CartLine, string, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	lines := make([]domain.CartLine, 0, len(items))
	priced := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		p, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, "", err
		}

		listPrice, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, "", fmt.Errorf("product %s has malformed price %q: %w", p.ProductID, p.Price, err)
		}

		line := pricing.Line{
			Quantity:        item.Quantity,
			UnitListPrice:   listPrice,
			DiscountPercent: p.DiscountPercent,
		}
		priced = append(priced, line)
		lines = append(lines, domain.CartLine{
			ProductID:       p.ProductID,
			Name:            p.Name,
			Quantity:        item.Quantity,
			UnitListPrice:   listPrice.StringFixed(2),
			DiscountPercent: p.DiscountPercent,
			LineTotal:       pricing.LineTotal(line).StringFixed(2),
		})
	}

	return lines, pricing.CartTotal(priced).StringFixed(2), nil
}
