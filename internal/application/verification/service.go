package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/otp"
)

// TokenTTL is how long an issued code stays valid.
const TokenTTL = 5 * time.Minute

// Delivery channels for the one-time code.
const (
	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"
)

// TokenRepo is the persistence surface the service needs.
type TokenRepo interface {
	Put(ctx context.Context, v *domain.VerificationToken) error
	GetByOwner(ctx context.Context, ownerID string) (*domain.VerificationToken, error)
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// Mailer delivers codes over email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// SMSSender delivers codes over SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Service issues and verifies one-time codes.
type Service struct {
	tokens TokenRepo
	mailer Mailer
	sms    SMSSender
	clock  clock.Clock
}

func NewService(tokens TokenRepo, mailer Mailer, sms SMSSender, clk clock.Clock) *Service {
	return &Service{tokens: tokens, mailer: mailer, sms: sms, clock: clk}
}

// IssueInput describes a code to issue. Recipient is the address or phone the
// code is delivered to. NewEmail is set only for EMAIL_CHANGE, holding the
// candidate address while the token stays linked to the existing account.
type IssueInput struct {
	OwnerID   string
	Purpose   string
	Channel   string
	Recipient string
	NewEmail  string
}

// Issue generates a fresh 6-digit code for the owner, replacing any live token
// the owner already has. The old token is deleted before the new one is
// written, so at no point do two codes exist for the same owner.
//
// Delivery happens on a background goroutine; a delivery failure is logged but
// does not fail the issue. The code is persisted either way and the owner can
// request a resend.
func (s *Service) Issue(ctx context.Context, in IssueInput) (*domain.VerificationToken, error) {
	if !domain.ValidPurpose(in.Purpose) {
		return nil, fmt.Errorf("unknown verification purpose %q: %w", in.Purpose, domain.ErrBadRequest)
	}

	code, err := otp.Code()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	token := &domain.VerificationToken{
		OwnerID:   in.OwnerID,
		Code:      code,
		Purpose:   in.Purpose,
		NewEmail:  in.NewEmail,
		ExpiresAt: s.clock.Now().Add(TokenTTL).Unix(),
	}

	if err := s.tokens.DeleteByOwner(ctx, in.OwnerID); err != nil {
		return nil, fmt.Errorf("supersede previous token: %w", err)
	}
	if err := s.tokens.Put(ctx, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	go s.deliver(in, code)

	return token, nil
}

func (s *Service) deliver(in IssueInput, code string) {
	var err error
	switch in.Channel {
	case ChannelSMS:
		err = s.sms.SendSMS(context.Background(), in.Recipient, "Your verification code is "+code)
	default:
		err = s.mailer.SendEmail(in.Recipient, subjectFor(in.Purpose),
			"Your verification code is "+code+". It expires in 5 minutes.")
	}
	if err != nil {
		slog.Warn("verification code delivery failed",
			"owner_id", in.OwnerID,
			"purpose", in.Purpose,
			"channel", in.Channel,
			"error", err,
		)
	}
}

func subjectFor(purpose string) string {
	switch purpose {
	case domain.PurposePasswordReset:
		return "Reset your password"
	case domain.PurposeEmailChange:
		return "Confirm your new email address"
	default:
		return "Verify your account"
	}
}

// Verify checks a submitted code against the owner's live token. On success
// the token is consumed and returned so callers can act on its purpose and
// payload. An expired token is deleted on sight; a wrong code leaves the token
// in place so the owner can retry until expiry.
func (s *Service) Verify(ctx context.Context, ownerID, purpose, code string) (*domain.VerificationToken, error) {
	if !validCodeFormat(code) {
		return nil, fmt.Errorf("code must be 6 digits: %w", domain.ErrBadRequest)
	}

	token, err := s.tokens.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if token.Purpose != purpose {
		return nil, fmt.Errorf("no %s token for owner: %w", purpose, domain.ErrNotFound)
	}

	if s.clock.Now().Unix() >= token.ExpiresAt {
		if err := s.tokens.DeleteByOwner(ctx, ownerID); err != nil {
			slog.Warn("failed to delete expired token", "owner_id", ownerID, "error", err)
		}
		return nil, fmt.Errorf("verification code expired: %w", domain.ErrExpired)
	}

	if token.Code != code {
		return nil, fmt.Errorf("verification code does not match: %w", domain.ErrCodeMismatch)
	}

	if err := s.tokens.DeleteByOwner(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("consume token: %w", err)
	}
	return token, nil
}

func validCodeFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
