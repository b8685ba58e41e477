package verification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
)

type mockTokenRepo struct {
	mock.Mock
	calls []string
}

func (m *mockTokenRepo) Put(ctx context.Context, v *domain.VerificationToken) error {
	m.calls = append(m.calls, "Put")
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockTokenRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.VerificationToken, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationToken), args.Error(1)
}

func (m *mockTokenRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	m.calls = append(m.calls, "DeleteByOwner")
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
	sent chan struct{}
}

func (m *mockMailer) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	if m.sent != nil {
		m.sent <- struct{}{}
	}
	return args.Error(0)
}

type mockSMSSender struct {
	mock.Mock
	sent chan struct{}
}

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	args := m.Called(ctx, to, message)
	if m.sent != nil {
		m.sent <- struct{}{}
	}
	return args.Error(0)
}

func fixedClock() clock.Clock {
	return clock.Fixed{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestIssue_DeletesPreviousTokenBeforeStoring(t *testing.T) {
	repo := new(mockTokenRepo)
	mailer := &mockMailer{sent: make(chan struct{}, 1)}
	svc := NewService(repo, mailer, nil, fixedClock())

	repo.On("DeleteByOwner", mock.Anything, "user-1").Return(nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendEmail", "user@example.com", mock.Anything, mock.Anything).Return(nil)

	token, err := svc.Issue(context.Background(), IssueInput{
		OwnerID:   "user-1",
		Purpose:   domain.PurposeRegistration,
		Channel:   ChannelEmail,
		Recipient: "user@example.com",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"DeleteByOwner", "Put"}, repo.calls)
	assert.Len(t, token.Code, 6)
	assert.Equal(t, fixedClock().Now().Add(TokenTTL).Unix(), token.ExpiresAt)

	<-mailer.sent
	mailer.AssertCalled(t, "SendEmail", "user@example.com", "Verify your account", mock.Anything)
}

func TestIssue_RejectsUnknownPurpose(t *testing.T) {
	svc := NewService(new(mockTokenRepo), new(mockMailer), nil, fixedClock())

	_, err := svc.Issue(context.Background(), IssueInput{
		OwnerID: "user-1",
		Purpose: "SOMETHING_ELSE",
	})
	require.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestIssue_DeliveryFailureDoesNotFailIssue(t *testing.T) {
	repo := new(mockTokenRepo)
	mailer := &mockMailer{sent: make(chan struct{}, 1)}
	svc := NewService(repo, mailer, nil, fixedClock())

	repo.On("DeleteByOwner", mock.Anything, "user-1").Return(nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := svc.Issue(context.Background(), IssueInput{
		OwnerID:   "user-1",
		Purpose:   domain.PurposePasswordReset,
		Channel:   ChannelEmail,
		Recipient: "user@example.com",
	})
	require.NoError(t, err)
	<-mailer.sent
}

func TestIssue_SendsSMSWhenChannelIsSMS(t *testing.T) {
	repo := new(mockTokenRepo)
	sms := &mockSMSSender{sent: make(chan struct{}, 1)}
	svc := NewService(repo, new(mockMailer), sms, fixedClock())

	repo.On("DeleteByOwner", mock.Anything, "user-1").Return(nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, "+15551234567", mock.Anything).Return(nil)

	_, err := svc.Issue(context.Background(), IssueInput{
		OwnerID:   "user-1",
		Purpose:   domain.PurposePasswordReset,
		Channel:   ChannelSMS,
		Recipient: "+15551234567",
	})
	require.NoError(t, err)
	<-sms.sent
	sms.AssertExpectations(t)
}

func TestIssue_SupersedesOldToken(t *testing.T) {
	repo := new(mockTokenRepo)
	mailer := &mockMailer{sent: make(chan struct{}, 2)}
	svc := NewService(repo, mailer, nil, fixedClock())

	repo.On("DeleteByOwner", mock.Anything, "user-1").Return(nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	first, err := svc.Issue(context.Background(), IssueInput{
		OwnerID: "user-1", Purpose: domain.PurposeRegistration,
		Channel: ChannelEmail, Recipient: "user@example.com",
	})
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), IssueInput{
		OwnerID: "user-1", Purpose: domain.PurposeRegistration,
		Channel: ChannelEmail, Recipient: "user@example.com",
	})
	require.NoError(t, err)

	// Each issue deletes before writing, so the second write replaces the first.
	require.Equal(t, []string{"DeleteByOwner", "Put", "DeleteByOwner", "Put"}, repo.calls)
	assert.NotEqual(t, first.Code, second.Code)
	<-mailer.sent
	<-mailer.sent
}

func TestVerify_RejectsMalformedCode(t *testing.T) {
	svc := NewService(new(mockTokenRepo), new(mockMailer), nil, fixedClock())

	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
		_, err := svc.Verify(context.Background(), "user-1", domain.PurposeRegistration, code)
		require.ErrorIs(t, err, domain.ErrBadRequest, "code %q", code)
	}
}

func TestVerify_NoTokenForOwner(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewService(repo, new(mockMailer), nil, fixedClock())

	repo.On("GetByOwner", mock.Anything, "user-1").
		Return(nil, fmt.Errorf("verification token not found: %w", domain.ErrNotFound))

	_, err := svc.Verify(context.Background(), "user-1", domain.PurposeRegistration, "123456")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerify_PurposeMismatchBehavesLikeMissing(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewService(repo, new(mockMailer), nil, fixedClock())

	repo.On("GetByOwner", mock.Anything, "user-1").Return(&domain.VerificationToken{
		OwnerID:   "user-1",
		Code:      "123456",
		Purpose:   domain.PurposeRegistration,
		ExpiresAt: fixedClock().Now().Add(time.Minute).Unix(),
	}, nil)

	_, err := svc.Verify(context.Background(), "user-1", domain.PurposePasswordReset, "123456")
	require.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "DeleteByOwner", mock.Anything, mock.Anything)
}

func TestVerify_ExpiredTokenIsDeleted(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewService(repo, new(mockMailer), nil, fixedClock())

	repo.On("GetByOwner", mock.Anything, "user-1").Return(&domain.VerificationToken{
		OwnerID:   "user-1",
		Code:      "123456",
		Purpose:   domain.PurposeRegistration,
		ExpiresAt: fixedClock().Now().Add(-time.Second).Unix(),
	}, nil)
	repo.On("DeleteByOwner", mock.Anything, "user-1").Return(nil)

	_, err := svc.Verify(context.Background(), "user-1", domain.PurposeRegistration, "123456")
	require.ErrorIs(t, err, domain.ErrExpired)
	repo.AssertCalled(t, "DeleteByOwner", mock.Anything, "user-1")
}

func TestVerify_TokenExpiredExactlyNow(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewService(repo, new(mockMailer), nil, fixedClock())

	repo.On("GetByOwner", mock.Anything, "user-1").Return(&domain.VerificationToken{
		OwnerID:   "user-1",
		Code:      "123456",
		Purpose:   domain.PurposeRegistration,
		ExpiresAt: fixedClock().Now().Unix(),
	}, nil)
	repo.On("DeleteByOwner", mock.Anything, "user-1").Return(nil)

	_, err := svc.Verify(context.Background(), "user-1", domain.PurposeRegistration, "123456")
	require.ErrorIs(t, err, domain.ErrExpired)
}

func TestVerify_WrongCodeKeepsToken(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewService(repo, new(mockMailer), nil, fixedClock())

	repo.On("GetByOwner", mock.Anything, "user-1").Return(&domain.VerificationToken{
		OwnerID:   "user-1",
		Code:      "123456",
		Purpose:   domain.PurposeRegistration,
		ExpiresAt: fixedClock().Now().Add(time.Minute).Unix(),
	}, nil)

	_, err := svc.Verify(context.Background(), "user-1", domain.PurposeRegistration, "654321")
	require.ErrorIs(t, err, domain.ErrCodeMismatch)
	repo.AssertNotCalled(t, "DeleteByOwner", mock.Anything, mock.Anything)
}

func TestVerify_SuccessConsumesToken(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewService(repo, new(mockMailer), nil, fixedClock())

	stored := &domain.VerificationToken{
		OwnerID:   "user-1",
		Code:      "123456",
		Purpose:   domain.PurposeEmailChange,
		NewEmail:  "new@example.com",
		ExpiresAt: fixedClock().Now().Add(time.Minute).Unix(),
	}
	repo.On("GetByOwner", mock.Anything, "user-1").Return(stored, nil)
	repo.On("DeleteByOwner", mock.Anything, "user-1").Return(nil)

	token, err := svc.Verify(context.Background(), "user-1", domain.PurposeEmailChange, "123456")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", token.NewEmail)
	repo.AssertCalled(t, "DeleteByOwner", mock.Anything, "user-1")
}

func TestVerify_MismatchThenSuccess(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewService(repo, new(mockMailer), nil, fixedClock())

	stored := &domain.VerificationToken{
		OwnerID:   "user-1",
		Code:      "123456",
		Purpose:   domain.PurposeRegistration,
		ExpiresAt: fixedClock().Now().Add(time.Minute).Unix(),
	}
	repo.On("GetByOwner", mock.Anything, "user-1").Return(stored, nil)
	repo.On("DeleteByOwner", mock.Anything, "user-1").Return(nil)

	_, err := svc.Verify(context.Background(), "user-1", domain.PurposeRegistration, "000000")
	require.ErrorIs(t, err, domain.ErrCodeMismatch)

	token, err := svc.Verify(context.Background(), "user-1", domain.PurposeRegistration, "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", token.Code)
}
