package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/id"
	"github.com/boutique-api/internal/pkg/pricing"
	"github.com/boutique-api/internal/pkg/validate"
)

const presignTTL = 15 * time.Minute

// Repo is the persistence surface the service needs.
type Repo interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, productID string) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Product, string, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

// ImageStore holds product images.
type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// SaleNotifier broadcasts a product that just went on sale. Optional; a nil
// notifier disables broadcasts.
type SaleNotifier interface {
	SaleStarted(p domain.Product, sellingPrice string, clearance bool)
}

// Service owns the product catalog.
type Service struct {
	products Repo
	images   ImageStore
	notifier SaleNotifier
	clock    clock.Clock
}

func NewService(products Repo, images ImageStore, notifier SaleNotifier, clk clock.Clock) *Service {
	return &Service{products: products, images: images, notifier: notifier, clock: clk}
}

// View is a product as returned to clients, with the effective selling price
// computed from the live discount.
type View struct {
	domain.Product
	SellingPrice string `json:"selling_price"`
	Clearance    bool   `json:"clearance"`
	ImageURL     string `json:"image_url,omitempty"`
}

// Page is one page of catalog views.
type Page struct {
	Items      []View `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func (s *Service) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.Product, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("price must be a non-negative decimal: %w", domain.ErrBadRequest)
	}

	now := s.clock.Now()
	p := &domain.Product{
		ProductID:       id.New(),
		Name:            req.Name,
		Description:     req.Description,
		Price:           price.StringFixed(2),
		DiscountPercent: req.DiscountPercent,
		Category:        req.Category,
		Color:           req.Color,
		SKU:             req.SKU,
		SizeOptions:     req.SizeOptions,
		StockQuantity:   req.StockQuantity,
		Available:       req.StockQuantity > 0,
		Enable:          1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.products.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("store product: %w", err)
	}

	if s.notifier != nil && p.DiscountPercent > 0 {
		go s.notifier.SaleStarted(*p,
			pricing.DiscountedUnitPrice(price, p.DiscountPercent).StringFixed(2),
			pricing.IsClearance(p.DiscountPercent))
	}
	return p, nil
}

// Get returns a single product view. Disabled products are hidden from
// non-admin callers.
func (s *Service) Get(ctx context.Context, productID string, includeDisabled bool) (*View, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Enable == 0 && !includeDisabled {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	v, err := s.view(ctx, p)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) List(ctx context.Context, limit int32, cursor string) (*Page, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	products, next, err := s.products.ScanPage(ctx, limit, cursor)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, products)
	if err != nil {
		return nil, err
	}
	return &Page{Items: views, NextCursor: next}, nil
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]View, error) {
	products, err := s.products.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	enabled := products[:0]
	for _, p := range products {
		if p.Enable == 1 {
			enabled = append(enabled, p)
		}
	}
	return s.views(ctx, enabled)
}

// ListClearance returns enabled products whose discount meets the clearance
// threshold.
func (s *Service) ListClearance(ctx context.Context, limit int32, cursor string) (*Page, error) {
	page, err := s.List(ctx, limit, cursor)
	if err != nil {
		return nil, err
	}
	clearance := page.Items[:0]
	for _, v := range page.Items {
		if v.Clearance {
			clearance = append(clearance, v)
		}
	}
	page.Items = clearance
	return page, nil
}

func (s *Service) Update(ctx context.Context, productID string, req *domain.UpdateProductRequest) (*View, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	prev, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("price must be a non-negative decimal: %w", domain.ErrBadRequest)
		}
		updates["price"] = price.StringFixed(2)
	}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = *req.DiscountPercent
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.SizeOptions != nil {
		updates["size_options"] = *req.SizeOptions
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("nothing to update: %w", domain.ErrBadRequest)
	}
	updates["updated_at"] = s.clock.Now().Format(time.RFC3339)

	if err := s.products.Update(ctx, productID, updates); err != nil {
		return nil, err
	}
	v, err := s.Get(ctx, productID, true)
	if err != nil {
		return nil, err
	}

	// Broadcast only when the discount first appears; edits to an already
	// discounted product stay quiet.
	if s.notifier != nil && v.DiscountPercent > 0 && prev.DiscountPercent == 0 {
		go s.notifier.SaleStarted(v.Product, v.SellingPrice, v.Clearance)
	}
	return v, nil
}

// Delete soft-deletes a product. Order snapshots referencing it are unaffected
// and carts drop it on their next read.
func (s *Service) Delete(ctx context.Context, productID string) error {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return err
	}
	return s.products.SoftDelete(ctx, productID)
}

// UploadImage stores a product image and records its object key.
func (s *Service) UploadImage(ctx context.Context, productID, filename, contentType string, r io.Reader) (*View, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s", productID, filename)
	if _, err := s.images.Upload(ctx, key, r, contentType); err != nil {
		return nil, err
	}

	if p.ImageKey != "" && p.ImageKey != key {
		if err := s.images.Delete(ctx, p.ImageKey); err != nil {
			slog.Warn("failed to delete replaced product image", "product_id", productID, "key", p.ImageKey, "error", err)
		}
	}

	if err := s.products.Update(ctx, productID, map[string]interface{}{"image_key": key}); err != nil {
		return nil, err
	}
	return s.Get(ctx, productID, true)
}

func (s *Service) views(ctx context.Context, products []domain.Product) ([]View, error) {
	views := make([]View, 0, len(products))
	for i := range products {
		v, err := s.view(ctx, &products[i])
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) view(ctx context.Context, p *domain.Product) (View, error) {
	listPrice, err := decimal.NewFromString(p.Price)
	if err != nil {
		return View{}, fmt.Errorf("product %s has malformed price %q: %w", p.ProductID, p.Price, err)
	}

	v := View{
		Product:      *p,
		SellingPrice: pricing.DiscountedUnitPrice(listPrice, p.DiscountPercent).StringFixed(2),
		Clearance:    pricing.IsClearance(p.DiscountPercent),
	}
	if p.ImageKey != "" && s.images != nil {
		url, err := s.images.PresignedURL(ctx, p.ImageKey, presignTTL)
		if err == nil {
			v.ImageURL = url
		}
	}
	return v, nil
}
