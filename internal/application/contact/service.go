package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/id"
	"github.com/boutique-api/internal/pkg/validate"
)

// MessageRepo stores contact form submissions.
type MessageRepo interface {
	Put(ctx context.Context, m *domain.ContactMessage) error
	Scan(ctx context.Context) ([]domain.ContactMessage, error)
	Delete(ctx context.Context, messageID string) error
}

// SubscriptionRepo stores newsletter subscriptions.
type SubscriptionRepo interface {
	Put(ctx context.Context, s *domain.NewsletterSubscription) error
	Delete(ctx context.Context, email string) error
	Scan(ctx context.Context) ([]domain.NewsletterSubscription, error)
}

// UserDirectory lists registered customers who opted in to marketing mail.
type UserDirectory interface {
	ListNewsletterOptIns(ctx context.Context) ([]string, error)
}

// Mailer acknowledges contact submissions and carries broadcasts.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Service handles the contact form, the newsletter list and sale broadcasts.
type Service struct {
	messages MessageRepo
	subs     SubscriptionRepo
	users    UserDirectory
	mailer   Mailer
	clock    clock.Clock
}

func NewService(messages MessageRepo, subs SubscriptionRepo, users UserDirectory, mailer Mailer, clk clock.Clock) *Service {
	return &Service{messages: messages, subs: subs, users: users, mailer: mailer, clock: clk}
}

// Submit stores a contact message and sends an acknowledgement email.
func (s *Service) Submit(ctx context.Context, in *domain.ContactInput) (*domain.ContactMessage, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	m := &domain.ContactMessage{
		MessageID: id.New(),
		Name:      in.Name,
		Email:     strings.ToLower(in.Email),
		Subject:   in.Subject,
		Body:      in.Body,
		CreatedAt: s.clock.Now(),
	}
	if err := s.messages.Put(ctx, m); err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	go func() {
		if err := s.mailer.SendEmail(m.Email, "We received your message",
			"Thanks for reaching out, "+m.Name+". We will get back to you shortly."); err != nil {
			slog.Warn("contact acknowledgement failed", "message_id", m.MessageID, "error", err)
		}
	}()

	return m, nil
}

func (s *Service) ListMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	return s.messages.Scan(ctx)
}

func (s *Service) DeleteMessage(ctx context.Context, messageID string) error {
	return s.messages.Delete(ctx, messageID)
}

// Subscribe adds an email to the newsletter list. Subscribing twice is a
// no-op because the table is keyed by email.
func (s *Service) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email: %w", domain.ErrBadRequest)
	}
	return s.subs.Put(ctx, &domain.NewsletterSubscription{
		Email:     email,
		CreatedAt: s.clock.Now(),
	})
}

func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	return s.subs.Delete(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) ListSubscriptions(ctx context.Context) ([]domain.NewsletterSubscription, error) {
	return s.subs.Scan(ctx)
}

// SaleStarted mails every opted-in customer and footer subscriber about a
// product that just went on sale. Each recipient gets their own message;
// individual failures are logged and the rest of the fan-out continues.
func (s *Service) SaleStarted(p domain.Product, sellingPrice string, clearance bool) {
	ctx := context.Background()
	recipients, err := s.saleRecipients(ctx)
	if err != nil {
		slog.Warn("sale broadcast aborted", "product_id", p.ProductID, "error", err)
		return
	}
	if len(recipients) == 0 {
		slog.Info("sale broadcast skipped, no active subscribers", "product_id", p.ProductID)
		return
	}

	offer := "Exclusive offer"
	if clearance {
		offer = "Clearance sale"
	}
	subject := fmt.Sprintf("%s: %s", offer, p.Name)
	body := fmt.Sprintf(
		"%s is now on sale.\n\nCategory: %s\nList price: %s\nDiscount: %d%%\nSale price: %s\n\n%s\n\nShop now before it sells out.",
		p.Name, p.Category, p.Price, p.DiscountPercent, sellingPrice, p.Description)

	for _, to := range recipients {
		if err := s.mailer.SendEmail(to, subject, body); err != nil {
			slog.Warn("sale broadcast delivery failed", "to", to, "product_id", p.ProductID, "error", err)
		}
	}
}

// saleRecipients merges opted-in customer emails with the footer subscriber
// list, deduplicated.
func (s *Service) saleRecipients(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var recipients []string

	optIns, err := s.users.ListNewsletterOptIns(ctx)
	if err != nil {
		return nil, err
	}
	for _, email := range optIns {
		if _, ok := seen[email]; !ok {
			seen[email] = struct{}{}
			recipients = append(recipients, email)
		}
	}

	subs, err := s.subs.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if _, ok := seen[sub.Email]; !ok {
			seen[sub.Email] = struct{}{}
			recipients = append(recipients, sub.Email)
		}
	}
	return recipients, nil
}
