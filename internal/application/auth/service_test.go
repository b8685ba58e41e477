package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/boutique-api/internal/domain"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) Sign(userID, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin_Success(t *testing.T) {
	users, signer := new(mockUserStore), new(mockSigner)
	svc := NewService(users, signer)

	users.On("GetByEmail", mock.Anything, "shopper@example.com").Return(&domain.User{
		UserID:        "u-1",
		Email:         "shopper@example.com",
		PasswordHash:  hashOf(t, "sup3rsecret"),
		Role:          domain.RoleCustomer,
		EmailVerified: true,
		Enable:        1,
	}, nil)
	signer.On("Sign", "u-1", domain.RoleCustomer).Return("signed-token", nil)

	res, err := svc.Login(context.Background(), " Shopper@Example.com ", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", res.Token)
	assert.Equal(t, "u-1", res.User.UserID)
}

func TestLogin_UnknownEmailLooksLikeBadPassword(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockSigner))

	users.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, fmt.Errorf("user not found: %w", domain.ErrNotFound))

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockSigner))

	users.On("GetByEmail", mock.Anything, "shopper@example.com").Return(&domain.User{
		UserID:        "u-1",
		PasswordHash:  hashOf(t, "rightpassword"),
		Role:          domain.RoleCustomer,
		EmailVerified: true,
		Enable:        1,
	}, nil)

	_, err := svc.Login(context.Background(), "shopper@example.com", "wrongpassword")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UnverifiedCustomerRejected(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockSigner))

	users.On("GetByEmail", mock.Anything, "shopper@example.com").Return(&domain.User{
		UserID:        "u-1",
		PasswordHash:  hashOf(t, "sup3rsecret"),
		Role:          domain.RoleCustomer,
		EmailVerified: false,
		Enable:        1,
	}, nil)

	_, err := svc.Login(context.Background(), "shopper@example.com", "sup3rsecret")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin_AdminExemptFromVerification(t *testing.T) {
	users, signer := new(mockUserStore), new(mockSigner)
	svc := NewService(users, signer)

	users.On("GetByEmail", mock.Anything, "admin@example.com").Return(&domain.User{
		UserID:        "u-admin",
		PasswordHash:  hashOf(t, "changeme123"),
		Role:          domain.RoleAdmin,
		EmailVerified: false,
		Enable:        1,
	}, nil)
	signer.On("Sign", "u-admin", domain.RoleAdmin).Return("admin-token", nil)

	res, err := svc.Login(context.Background(), "admin@example.com", "changeme123")
	require.NoError(t, err)
	assert.Equal(t, "admin-token", res.Token)
}

func TestLogin_DisabledAccount(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockSigner))

	users.On("GetByEmail", mock.Anything, "gone@example.com").Return(&domain.User{
		UserID:        "u-1",
		PasswordHash:  hashOf(t, "sup3rsecret"),
		Role:          domain.RoleCustomer,
		EmailVerified: true,
		Enable:        0,
	}, nil)

	_, err := svc.Login(context.Background(), "gone@example.com", "sup3rsecret")
	require.ErrorIs(t, err, domain.ErrForbidden)
}
