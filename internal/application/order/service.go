package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"strings"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/id"
	"github.com/boutique-api/internal/pkg/pricing"
)

// ReturnWindow is how long after placement a delivered order can be returned.
// The boundary is inclusive: a request at exactly ReturnWindow is accepted.
const ReturnWindow = 7 * 24 * time.Hour

// Repo is the persistence surface the service needs.
type Repo interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatusFrom(ctx context.Context, orderID, from, to string, updatedAt time.Time) error
	SetStatus(ctx context.Context, orderID, status string, updatedAt time.Time) error
}

// CartProvider yields the priced cart lines an order is built from and clears
// the cart once the order is placed.
type CartProvider interface {
	Lines(ctx context.Context, userID string) ([]domain.CartLine, string, error)
	Clear(ctx context.Context, userID string) error
}

// AddressStore resolves the shipping address snapshotted into the order.
type AddressStore interface {
	Get(ctx context.Context, addressID string) (*domain.Address, error)
}

// Mailer sends order lifecycle notifications.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Service owns the order lifecycle.
type Service struct {
	orders Repo
	cart   CartProvider
	addrs  AddressStore
	mailer Mailer
	clock  clock.Clock
}

func NewService(orders Repo, cart CartProvider, addrs AddressStore, mailer Mailer, clk clock.Clock) *Service {
	return &Service{orders: orders, cart: cart, addrs: addrs, mailer: mailer, clock: clk}
}

// CreateInput describes a checkout.
type CreateInput struct {
	UserID          string
	UserEmail       string
	AddressID       string
	PaymentMode     string
	PaymentIntentID string
}

// Create places an order from the user's current cart. The cart must be
// non-empty. Line items and the shipping address are serialized into the order
// as snapshots at this moment; later edits to products or the address never
// touch placed orders. The new order starts in PROCESSING and the cart is
// cleared.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	lines, total, err := s.cart.Lines(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("cannot place order: %w", domain.ErrEmptyCart)
	}

	addr, err := s.addrs.Get(ctx, in.AddressID)
	if err != nil {
		return nil, fmt.Errorf("resolve shipping address: %w", err)
	}
	if addr.UserID != in.UserID {
		return nil, fmt.Errorf("address does not belong to user: %w", domain.ErrForbidden)
	}

	itemsJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("snapshot items: %w", err)
	}
	shippingJSON, err := json.Marshal(addr)
	if err != nil {
		return nil, fmt.Errorf("snapshot address: %w", err)
	}

	now := s.clock.Now()
	o := &domain.Order{
		OrderID:          id.New(),
		UserID:           in.UserID,
		PlacedAt:         now,
		TotalAmount:      total,
		Status:           domain.OrderProcessing,
		ItemsSnapshot:    string(itemsJSON),
		ShippingSnapshot: string(shippingJSON),
		PaymentMode:      in.PaymentMode,
		PaymentIntentID:  in.PaymentIntentID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.orders.Put(ctx, o); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	if err := s.cart.Clear(ctx, in.UserID); err != nil {
		slog.Warn("failed to clear cart after order", "user_id", in.UserID, "order_id", o.OrderID, "error", err)
	}

	if in.UserEmail != "" {
		go s.notify(in.UserEmail, "Order confirmed", confirmationBody(o, lines))
	}

	return o, nil
}

// Get returns an order, enforcing that it belongs to the requesting user.
// Admin callers pass an empty userID to skip the ownership check.
func (s *Service) Get(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != "" && o.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

// Cancel moves an order to CANCELLED. Only PENDING and PROCESSING orders can
// be cancelled; the transition is conditional on the status observed here, so
// a concurrent state change surfaces as ErrStateConflict instead of silently
// overwriting it.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	o, err := s.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	switch o.Status {
	case domain.OrderPending, domain.OrderProcessing:
	default:
		return nil, fmt.Errorf("cannot cancel order in status %s: %w", o.Status, domain.ErrStateConflict)
	}

	now := s.clock.Now()
	if err := s.orders.UpdateStatusFrom(ctx, orderID, o.Status, domain.OrderCancelled, now); err != nil {
		return nil, err
	}
	o.Status = domain.OrderCancelled
	o.UpdatedAt = now
	return o, nil
}

// RequestReturn moves a DELIVERED order to RETURN_REQUESTED. The request must
// arrive within ReturnWindow of placement; exactly at the boundary is allowed.
func (s *Service) RequestReturn(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	o, err := s.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	if o.Status != domain.OrderDelivered {
		return nil, fmt.Errorf("cannot request return for order in status %s: %w", o.Status, domain.ErrStateConflict)
	}
	if s.clock.Now().Sub(o.PlacedAt) > ReturnWindow {
		return nil, fmt.Errorf("return window for order %s has closed: %w", orderID, domain.ErrWindowClosed)
	}

	now := s.clock.Now()
	if err := s.orders.UpdateStatusFrom(ctx, orderID, domain.OrderDelivered, domain.OrderReturnRequested, now); err != nil {
		return nil, err
	}
	o.Status = domain.OrderReturnRequested
	o.UpdatedAt = now
	return o, nil
}

// AdminSetStatus force-sets an order's status without transition checks. It is
// the escape hatch for fulfilment and support workflows, so the only guards
// are that the order exists and the status value is known.
func (s *Service) AdminSetStatus(ctx context.Context, orderID, status, customerEmail string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown order status %q: %w", status, domain.ErrBadRequest)
	}

	now := s.clock.Now()
	if err := s.orders.SetStatus(ctx, orderID, status, now); err != nil {
		return nil, err
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if customerEmail != "" {
		go s.notify(customerEmail, "Order update",
			fmt.Sprintf("Your order %s is now %s.", orderID, status))
	}
	return o, nil
}

// confirmationBody renders the order confirmation email, one line per item.
// Items at a clearance discount are marked as such.
func confirmationBody(o *domain.Order, lines []domain.CartLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your order %s has been placed and is being processed.\n\n", o.OrderID)
	for _, l := range lines {
		fmt.Fprintf(&b, "%dx %s", l.Quantity, l.Name)
		if l.DiscountPercent > 0 {
			fmt.Fprintf(&b, " (%d%% off", l.DiscountPercent)
			if pricing.IsClearance(l.DiscountPercent) {
				b.WriteString(", clearance")
			}
			b.WriteString(")")
		}
		fmt.Fprintf(&b, " - %s\n", l.LineTotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", o.TotalAmount)
	return b.String()
}

func (s *Service) notify(to, subject, body string) {
	if err := s.mailer.SendEmail(to, subject, body); err != nil {
		slog.Warn("order notification failed", "to", to, "subject", subject, "error", err)
	}
}
