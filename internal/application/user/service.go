package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/boutique-api/internal/application/verification"
	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/pkg/id"
	"github.com/boutique-api/internal/pkg/validate"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

// Verifier issues and checks one-time codes.
type Verifier interface {
	Issue(ctx context.Context, in verification.IssueInput) (*domain.VerificationToken, error)
	Verify(ctx context.Context, ownerID, purpose, code string) (*domain.VerificationToken, error)
}

// Service owns account registration, credentials and profile management.
type Service struct {
	users    Repo
	verifier Verifier
	clock    clock.Clock
}

func NewService(users Repo, verifier Verifier, clk clock.Clock) *Service {
	return &Service{users: users, verifier: verifier, clock: clk}
}

const passwordSpecials = "@$!%*?&"

// validPassword enforces the account password policy: at least 8 characters
// drawn from letters, digits and @$!%*?&, including at least one lower case
// letter, one upper case letter, one digit and one special character.
func validPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, c := range pw {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

func passwordPolicyError() error {
	return fmt.Errorf("password must be at least 8 characters with upper and lower case letters, a digit and one of %s: %w",
		passwordSpecials, domain.ErrBadRequest)
}

// Register creates a customer account and sends a registration code to the
// given email. The account stays unverified (and unable to log in) until the
// code is confirmed.
func (s *Service) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("passwords do not match: %w", domain.ErrBadRequest)
	}
	if !validPassword(req.Password) {
		return nil, passwordPolicyError()
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s already registered: %w", email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if req.Phone != nil && *req.Phone != "" {
		if _, err := s.users.GetByPhone(ctx, *req.Phone); err == nil {
			return nil, fmt.Errorf("phone already registered: %w", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("date_of_birth must be YYYY-MM-DD: %w", domain.ErrBadRequest)
		}
		dob = &parsed
	}

	now := s.clock.Now()
	u := &domain.User{
		UserID:             id.New(),
		Email:              email,
		Phone:              req.Phone,
		PasswordHash:       string(hash),
		Role:               domain.RoleCustomer,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		PreferredSize:      req.PreferredSize,
		Gender:             req.Gender,
		DateOfBirth:        dob,
		NewsletterOptIn:    req.NewsletterOptIn != nil && *req.NewsletterOptIn,
		EmailVerified:      false,
		CredentialsUpdated: true,
		Enable:             1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.users.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}

	if _, err := s.verifier.Issue(ctx, verification.IssueInput{
		OwnerID:   u.UserID,
		Purpose:   domain.PurposeRegistration,
		Channel:   verification.ChannelEmail,
		Recipient: u.Email,
	}); err != nil {
		return nil, fmt.Errorf("issue registration code: %w", err)
	}

	return u, nil
}

// ConfirmRegistration checks a registration code and marks the account's email
// as verified.
func (s *Service) ConfirmRegistration(ctx context.Context, email, code string) error {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return fmt.Errorf("account already verified: %w", domain.ErrConflict)
	}

	if _, err := s.verifier.Verify(ctx, u.UserID, domain.PurposeRegistration, code); err != nil {
		return err
	}

	return s.users.Update(ctx, u.UserID, map[string]interface{}{"email_verified": true})
}

// ResendRegistrationCode issues a fresh registration code, superseding the
// previous one.
func (s *Service) ResendRegistrationCode(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return fmt.Errorf("account already verified: %w", domain.ErrConflict)
	}

	_, err = s.verifier.Issue(ctx, verification.IssueInput{
		OwnerID:   u.UserID,
		Purpose:   domain.PurposeRegistration,
		Channel:   verification.ChannelEmail,
		Recipient: u.Email,
	})
	return err
}

// RequestPasswordReset issues a reset code to the account matching the
// identifier. An identifier containing "@" is treated as an email, anything
// else as a phone number, and the code is delivered over the matching channel.
func (s *Service) RequestPasswordReset(ctx context.Context, identifier string) error {
	var (
		u       *domain.User
		channel string
		to      string
		err     error
	)
	if strings.Contains(identifier, "@") {
		u, err = s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(identifier)))
		channel, to = verification.ChannelEmail, ""
	} else {
		u, err = s.users.GetByPhone(ctx, identifier)
		channel, to = verification.ChannelSMS, identifier
	}
	if err != nil {
		return err
	}
	if channel == verification.ChannelEmail {
		to = u.Email
	}

	_, err = s.verifier.Issue(ctx, verification.IssueInput{
		OwnerID:   u.UserID,
		Purpose:   domain.PurposePasswordReset,
		Channel:   channel,
		Recipient: to,
	})
	return err
}

// ResetPassword consumes a reset code and replaces the account's password.
func (s *Service) ResetPassword(ctx context.Context, identifier, code, newPassword string) error {
	if !validPassword(newPassword) {
		return passwordPolicyError()
	}

	var (
		u   *domain.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(identifier)))
	} else {
		u, err = s.users.GetByPhone(ctx, identifier)
	}
	if err != nil {
		return err
	}

	if _, err := s.verifier.Verify(ctx, u.UserID, domain.PurposePasswordReset, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.Update(ctx, u.UserID, map[string]interface{}{
		"password_hash":       string(hash),
		"credentials_updated": true,
	})
}

// ChangePassword rotates the password of a logged-in user after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if !validPassword(newPassword) {
		return passwordPolicyError()
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.Update(ctx, userID, map[string]interface{}{
		"password_hash":       string(hash),
		"credentials_updated": true,
	})
}

// InitiateEmailChange issues an EMAIL_CHANGE code. The token stays linked to
// the current account while the code is delivered to the candidate address, so
// only someone who can read the new mailbox can complete the change.
func (s *Service) InitiateEmailChange(ctx context.Context, userID, newEmail string) error {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if newEmail == u.Email {
		return fmt.Errorf("new email is the same as the current one: %w", domain.ErrBadRequest)
	}
	if _, err := s.users.GetByEmail(ctx, newEmail); err == nil {
		return fmt.Errorf("email %s already registered: %w", newEmail, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	_, err = s.verifier.Issue(ctx, verification.IssueInput{
		OwnerID:   userID,
		Purpose:   domain.PurposeEmailChange,
		Channel:   verification.ChannelEmail,
		Recipient: newEmail,
		NewEmail:  newEmail,
	})
	return err
}

// FinalizeEmailChange consumes an EMAIL_CHANGE code and applies the rename
// carried in the token.
func (s *Service) FinalizeEmailChange(ctx context.Context, userID, code string) error {
	token, err := s.verifier.Verify(ctx, userID, domain.PurposeEmailChange, code)
	if err != nil {
		return err
	}

	// Re-check uniqueness; someone may have claimed the address while the code
	// was in flight.
	if _, err := s.users.GetByEmail(ctx, token.NewEmail); err == nil {
		return fmt.Errorf("email %s already registered: %w", token.NewEmail, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	return s.users.Update(ctx, userID, map[string]interface{}{
		"email":          token.NewEmail,
		"email_verified": true,
	})
}

// UpdateProfile applies the non-nil fields of the request.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Phone != nil {
		if *req.Phone != "" {
			if existing, err := s.users.GetByPhone(ctx, *req.Phone); err == nil && existing.UserID != userID {
				return nil, fmt.Errorf("phone already registered: %w", domain.ErrConflict)
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}
		updates["phone"] = *req.Phone
	}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.PreferredSize != nil {
		updates["preferred_size"] = *req.PreferredSize
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *req.DateOfBirth); err != nil {
			return nil, fmt.Errorf("date_of_birth must be YYYY-MM-DD: %w", domain.ErrBadRequest)
		}
		updates["date_of_birth"] = *req.DateOfBirth
	}
	if req.NewsletterOptIn != nil {
		updates["newsletter_opt_in"] = *req.NewsletterOptIn
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("nothing to update: %w", domain.ErrBadRequest)
	}

	if err := s.users.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.users.Get(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *Service) List(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.users.ScanPage(ctx, limit, cursor)
}

// Deactivate soft-deletes an account. Orders placed by the account keep their
// snapshots and stay readable.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	return s.users.SoftDelete(ctx, userID)
}

// EnsureDefaultAdmin creates the bootstrap admin account if no account with
// the configured email exists. The account is created pre-verified but with
// credentials_updated false until the password is rotated.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := s.clock.Now()
	admin := &domain.User{
		UserID:             id.New(),
		Email:              email,
		PasswordHash:       string(hash),
		Role:               domain.RoleAdmin,
		FirstName:          "Store",
		LastName:           "Admin",
		EmailVerified:      true,
		CredentialsUpdated: false,
		Enable:             1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.users.Put(ctx, admin); err != nil {
		return fmt.Errorf("store default admin: %w", err)
	}
	slog.Info("created default admin account", "email", email)
	return nil
}
