package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/boutique-api/internal/domain"
)

// UserStore resolves accounts during login.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenSigner issues access tokens.
type TokenSigner interface {
	Sign(userID, role string) (string, error)
}

// Service authenticates accounts and issues access tokens.
type Service struct {
	users  UserStore
	signer TokenSigner
}

func NewService(users UserStore, signer TokenSigner) *Service {
	return &Service{users: users, signer: signer}
}

// Result is a successful login.
type Result struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login checks credentials and returns a signed access token. Wrong email and
// wrong password are indistinguishable to the caller. Customers must have
// verified their email; the bootstrap admin is created pre-verified so the
// check never locks it out.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if u.Enable == 0 {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if u.Role != domain.RoleAdmin && !u.EmailVerified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrForbidden)
	}

	token, err := s.signer.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Result{Token: token, User: u}, nil
}
