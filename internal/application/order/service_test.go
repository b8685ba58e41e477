package order

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Put(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockRepo) UpdateStatusFrom(ctx context.Context, orderID, from, to string, updatedAt time.Time) error {
	args := m.Called(ctx, orderID, from, to, updatedAt)
	return args.Error(0)
}

func (m *mockRepo) SetStatus(ctx context.Context, orderID, status string, updatedAt time.Time) error {
	args := m.Called(ctx, orderID, status, updatedAt)
	return args.Error(0)
}

type mockCart struct {
	mock.Mock
}

func (m *mockCart) Lines(ctx context.Context, userID string) ([]domain.CartLine, string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.CartLine), args.String(1), args.Error(2)
}

func (m *mockCart) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockAddrs struct {
	mock.Mock
}

func (m *mockAddrs) Get(ctx context.Context, addressID string) (*domain.Address, error) {
	args := m.Called(ctx, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
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

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo, cart *mockCart, addrs *mockAddrs, mailer *mockMailer, now time.Time) *Service {
	return NewService(repo, cart, addrs, mailer, clock.Fixed{T: now})
}

func sampleLines() []domain.CartLine {
	return []domain.CartLine{
		{ProductID: "p-1", Name: "Linen Shirt", Quantity: 2, UnitListPrice: "100.00", DiscountPercent: 10, LineTotal: "180.00"},
		{ProductID: "p-2", Name: "Silk Scarf", Quantity: 1, UnitListPrice: "250.00", DiscountPercent: 0, LineTotal: "250.00"},
	}
}

func TestCreate_EmptyCartRejected(t *testing.T) {
	repo, cart, addrs := new(mockRepo), new(mockCart), new(mockAddrs)
	svc := newTestService(repo, cart, addrs, new(mockMailer), testNow)

	cart.On("Lines", mock.Anything, "user-1").Return([]domain.CartLine{}, "0.00", nil)

	_, err := svc.Create(context.Background(), CreateInput{UserID: "user-1", AddressID: "addr-1"})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_SnapshotsCartAndAddress(t *testing.T) {
	repo, cart, addrs := new(mockRepo), new(mockCart), new(mockAddrs)
	mailer := &mockMailer{sent: make(chan struct{}, 1)}
	svc := newTestService(repo, cart, addrs, mailer, testNow)

	cart.On("Lines", mock.Anything, "user-1").Return(sampleLines(), "430.00", nil)
	cart.On("Clear", mock.Anything, "user-1").Return(nil)
	addrs.On("Get", mock.Anything, "addr-1").Return(&domain.Address{
		AddressID: "addr-1", UserID: "user-1", RecipientName: "A. Shopper",
		StreetAddress: "12 High St", City: "Pune", State: "MH", Pincode: "411001",
	}, nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendEmail", "shopper@example.com", mock.Anything, mock.Anything).Return(nil)

	o, err := svc.Create(context.Background(), CreateInput{
		UserID: "user-1", UserEmail: "shopper@example.com", AddressID: "addr-1", PaymentMode: "CARD",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderProcessing, o.Status)
	assert.Equal(t, "430.00", o.TotalAmount)
	assert.Equal(t, testNow, o.PlacedAt)
	assert.NotEmpty(t, o.OrderID)

	var items []domain.CartLine
	require.NoError(t, json.Unmarshal([]byte(o.ItemsSnapshot), &items))
	assert.Len(t, items, 2)
	assert.Equal(t, "180.00", items[0].LineTotal)

	var addr domain.Address
	require.NoError(t, json.Unmarshal([]byte(o.ShippingSnapshot), &addr))
	assert.Equal(t, "12 High St", addr.StreetAddress)

	cart.AssertCalled(t, "Clear", mock.Anything, "user-1")
	<-mailer.sent
}

func TestCreate_ConfirmationListsItemsAndFlagsClearance(t *testing.T) {
	repo, cart, addrs := new(mockRepo), new(mockCart), new(mockAddrs)
	mailer := &mockMailer{sent: make(chan struct{}, 1)}
	svc := newTestService(repo, cart, addrs, mailer, testNow)

	lines := append(sampleLines(), domain.CartLine{
		ProductID: "p-3", Name: "Wool Coat", Quantity: 1,
		UnitListPrice: "2000.00", DiscountPercent: 60, LineTotal: "800.00",
	})
	cart.On("Lines", mock.Anything, "user-1").Return(lines, "1230.00", nil)
	cart.On("Clear", mock.Anything, "user-1").Return(nil)
	addrs.On("Get", mock.Anything, "addr-1").Return(&domain.Address{
		AddressID: "addr-1", UserID: "user-1",
	}, nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendEmail", "shopper@example.com", "Order confirmed",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "2x Linen Shirt (10% off) - 180.00") &&
				strings.Contains(body, "1x Silk Scarf - 250.00") &&
				strings.Contains(body, "1x Wool Coat (60% off, clearance) - 800.00") &&
				strings.Contains(body, "Total: 1230.00")
		}),
	).Return(nil)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID: "user-1", UserEmail: "shopper@example.com", AddressID: "addr-1", PaymentMode: "CARD",
	})
	require.NoError(t, err)
	<-mailer.sent
	mailer.AssertExpectations(t)
}

func TestCreate_ForeignAddressRejected(t *testing.T) {
	repo, cart, addrs := new(mockRepo), new(mockCart), new(mockAddrs)
	svc := newTestService(repo, cart, addrs, new(mockMailer), testNow)

	cart.On("Lines", mock.Anything, "user-1").Return(sampleLines(), "430.00", nil)
	addrs.On("Get", mock.Anything, "addr-9").Return(&domain.Address{
		AddressID: "addr-9", UserID: "someone-else",
	}, nil)

	_, err := svc.Create(context.Background(), CreateInput{UserID: "user-1", AddressID: "addr-9"})
	require.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCancel_FromProcessing(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderProcessing,
	}, nil)
	repo.On("UpdateStatusFrom", mock.Anything, "ord-1", domain.OrderProcessing, domain.OrderCancelled, testNow).Return(nil)

	o, err := svc.Cancel(context.Background(), "ord-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, o.Status)
}

func TestCancel_FromShippedConflicts(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderShipped,
	}, nil)

	_, err := svc.Cancel(context.Background(), "ord-1", "user-1")
	require.ErrorIs(t, err, domain.ErrStateConflict)
	repo.AssertNotCalled(t, "UpdateStatusFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_AlreadyCancelledRejectsAgain(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderCancelled,
	}, nil)

	_, err := svc.Cancel(context.Background(), "ord-1", "user-1")
	require.ErrorIs(t, err, domain.ErrStateConflict)
	repo.AssertNotCalled(t, "UpdateStatusFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_ConcurrentTransitionSurfacesConflict(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderProcessing,
	}, nil)
	repo.On("UpdateStatusFrom", mock.Anything, "ord-1", domain.OrderProcessing, domain.OrderCancelled, testNow).
		Return(fmt.Errorf("order ord-1 no longer in status PROCESSING: %w", domain.ErrStateConflict))

	_, err := svc.Cancel(context.Background(), "ord-1", "user-1")
	require.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestCancel_ForeignOrderLooksMissing(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "someone-else", Status: domain.OrderProcessing,
	}, nil)

	_, err := svc.Cancel(context.Background(), "ord-1", "user-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestReturn_WithinWindow(t *testing.T) {
	repo := new(mockRepo)
	placed := testNow.Add(-6 * 24 * time.Hour)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderDelivered, PlacedAt: placed,
	}, nil)
	repo.On("UpdateStatusFrom", mock.Anything, "ord-1", domain.OrderDelivered, domain.OrderReturnRequested, testNow).Return(nil)

	o, err := svc.RequestReturn(context.Background(), "ord-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderReturnRequested, o.Status)
}

func TestRequestReturn_ExactlyAtBoundaryAllowed(t *testing.T) {
	repo := new(mockRepo)
	placed := testNow.Add(-ReturnWindow)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderDelivered, PlacedAt: placed,
	}, nil)
	repo.On("UpdateStatusFrom", mock.Anything, "ord-1", domain.OrderDelivered, domain.OrderReturnRequested, testNow).Return(nil)

	_, err := svc.RequestReturn(context.Background(), "ord-1", "user-1")
	require.NoError(t, err)
}

func TestRequestReturn_AfterWindowClosed(t *testing.T) {
	repo := new(mockRepo)
	placed := testNow.Add(-ReturnWindow - time.Second)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderDelivered, PlacedAt: placed,
	}, nil)

	_, err := svc.RequestReturn(context.Background(), "ord-1", "user-1")
	require.ErrorIs(t, err, domain.ErrWindowClosed)
	repo.AssertNotCalled(t, "UpdateStatusFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestReturn_NotDelivered(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderShipped, PlacedAt: testNow,
	}, nil)

	_, err := svc.RequestReturn(context.Background(), "ord-1", "user-1")
	require.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestAdminSetStatus_UnknownStatusRejected(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	_, err := svc.AdminSetStatus(context.Background(), "ord-1", "TELEPORTED", "")
	require.ErrorIs(t, err, domain.ErrBadRequest)
	repo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminSetStatus_BypassesTransitionGuards(t *testing.T) {
	repo := new(mockRepo)
	mailer := &mockMailer{sent: make(chan struct{}, 1)}
	svc := newTestService(repo, new(mockCart), new(mockAddrs), mailer, testNow)

	// CANCELLED back to PROCESSING is not a customer-reachable transition but
	// the admin path allows it.
	repo.On("SetStatus", mock.Anything, "ord-1", domain.OrderProcessing, testNow).Return(nil)
	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderProcessing,
	}, nil)
	mailer.On("SendEmail", "shopper@example.com", mock.Anything, mock.Anything).Return(nil)

	o, err := svc.AdminSetStatus(context.Background(), "ord-1", domain.OrderProcessing, "shopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, o.Status)
	<-mailer.sent
}

func TestGet_ScopedToOwner(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockCart), new(mockAddrs), new(mockMailer), testNow)

	repo.On("Get", mock.Anything, "ord-1").Return(&domain.Order{
		OrderID: "ord-1", UserID: "user-1", Status: domain.OrderProcessing,
	}, nil)

	_, err := svc.Get(context.Background(), "ord-1", "user-2")
	require.ErrorIs(t, err, domain.ErrNotFound)

	o, err := svc.Get(context.Background(), "ord-1", "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", o.UserID)
}
