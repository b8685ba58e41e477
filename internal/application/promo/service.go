package promo

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/validate"
)

// CouponRepo is the coupon persistence surface.
type CouponRepo interface {
	Put(ctx context.Context, c *domain.Coupon) error
	Get(ctx context.Context, code string) (*domain.Coupon, error)
	Scan(ctx context.Context) ([]domain.Coupon, error)
	Delete(ctx context.Context, code string) error
}

// GiftCardRepo is the gift card persistence surface.
type GiftCardRepo interface {
	Put(ctx context.Context, g *domain.GiftCard) error
	Get(ctx context.Context, code string) (*domain.GiftCard, error)
	Update(ctx context.Context, code string, updates map[string]interface{}) error
}

// Mailer delivers gift cards.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Service manages coupons and gift cards.
type Service struct {
	coupons   CouponRepo
	giftCards GiftCardRepo
	mailer    Mailer
	clock     clock.Clock
}

func NewService(coupons CouponRepo, giftCards GiftCardRepo, mailer Mailer, clk clock.Clock) *Service {
	return &Service{coupons: coupons, giftCards: giftCards, mailer: mailer, clock: clk}
}

// CreateCoupon registers a new coupon code. Codes are unique; re-creating an
// existing code is a conflict.
func (s *Service) CreateCoupon(ctx context.Context, in *domain.CouponInput) (*domain.Coupon, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	code := strings.ToUpper(in.Code)
	if _, err := s.coupons.Get(ctx, code); err == nil {
		return nil, fmt.Errorf("coupon %s already exists: %w", code, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	c := &domain.Coupon{
		Code:            code,
		Description:     in.Description,
		DiscountPercent: in.DiscountPercent,
		Active:          in.Active == nil || *in.Active,
		ExpiresAt:       in.ExpiresAt,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.coupons.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("store coupon: %w", err)
	}
	return c, nil
}

// GetCoupon returns a coupon if it is live: active and not past its expiry.
func (s *Service) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	c, err := s.coupons.Get(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, fmt.Errorf("coupon %s is inactive: %w", c.Code, domain.ErrNotFound)
	}
	if c.ExpiresAt != nil && s.clock.Now().Unix() >= *c.ExpiresAt {
		return nil, fmt.Errorf("coupon %s has expired: %w", c.Code, domain.ErrExpired)
	}
	return c, nil
}

func (s *Service) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return s.coupons.Scan(ctx)
}

func (s *Service) DeleteCoupon(ctx context.Context, code string) error {
	code = strings.ToUpper(code)
	if _, err := s.coupons.Get(ctx, code); err != nil {
		return err
	}
	return s.coupons.Delete(ctx, code)
}

// IssueGiftCard creates a gift card and emails the code to the recipient.
func (s *Service) IssueGiftCard(ctx context.Context, in *domain.GiftCardInput) (*domain.GiftCard, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	balance, err := decimal.NewFromString(in.Balance)
	if err != nil || balance.IsNegative() || balance.IsZero() {
		return nil, fmt.Errorf("balance must be a positive decimal: %w", domain.ErrBadRequest)
	}

	code, err := giftCardCode()
	if err != nil {
		return nil, fmt.Errorf("generate gift card code: %w", err)
	}

	g := &domain.GiftCard{
		Code:           code,
		Balance:        balance.StringFixed(2),
		RecipientEmail: strings.ToLower(in.RecipientEmail),
		Message:        in.Message,
		Active:         true,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.giftCards.Put(ctx, g); err != nil {
		return nil, fmt.Errorf("store gift card: %w", err)
	}

	go func() {
		body := fmt.Sprintf("You received a gift card worth %s. Code: %s", g.Balance, g.Code)
		if g.Message != "" {
			body += "\n\n" + g.Message
		}
		if err := s.mailer.SendEmail(g.RecipientEmail, "You received a gift card", body); err != nil {
			slog.Warn("gift card delivery failed", "code", g.Code, "error", err)
		}
	}()

	return g, nil
}

func (s *Service) GetGiftCard(ctx context.Context, code string) (*domain.GiftCard, error) {
	g, err := s.giftCards.Get(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	if !g.Active {
		return nil, fmt.Errorf("gift card %s is inactive: %w", g.Code, domain.ErrNotFound)
	}
	return g, nil
}

// RedeemGiftCard deducts amount from the card's balance. A card drained to
// zero is deactivated.
func (s *Service) RedeemGiftCard(ctx context.Context, code, amount string) (*domain.GiftCard, error) {
	deduct, err := decimal.NewFromString(amount)
	if err != nil || deduct.IsNegative() || deduct.IsZero() {
		return nil, fmt.Errorf("amount must be a positive decimal: %w", domain.ErrBadRequest)
	}

	g, err := s.GetGiftCard(ctx, code)
	if err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(g.Balance)
	if err != nil {
		return nil, fmt.Errorf("gift card %s has malformed balance %q: %w", g.Code, g.Balance, err)
	}
	if deduct.GreaterThan(balance) {
		return nil, fmt.Errorf("insufficient gift card balance: %w", domain.ErrConflict)
	}

	remaining := balance.Sub(deduct).Round(2)
	updates := map[string]interface{}{"balance": remaining.StringFixed(2)}
	if remaining.IsZero() {
		updates["active"] = false
	}
	if err := s.giftCards.Update(ctx, g.Code, updates); err != nil {
		return nil, err
	}

	g.Balance = remaining.StringFixed(2)
	g.Active = !remaining.IsZero()
	return g, nil
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func giftCardCode() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return "GC-" + string(b[:4]) + "-" + string(b[4:8]) + "-" + string(b[8:]), nil
}
