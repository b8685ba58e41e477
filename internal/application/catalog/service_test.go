package catalog

import (
	"context"
	"io"
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

func (m *mockRepo) Put(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockRepo) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	args := m.Called(ctx, productID, updates)
	return args.Error(0)
}

func (m *mockRepo) SoftDelete(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *mockRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Product, string, error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.String(1), args.Error(2)
}

func (m *mockRepo) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type mockImages struct {
	mock.Mock
}

func (m *mockImages) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockImages) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockImages) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
	notified chan struct{}
}

func (m *mockNotifier) SaleStarted(p domain.Product, sellingPrice string, clearance bool) {
	m.Called(p, sellingPrice, clearance)
	if m.notified != nil {
		m.notified <- struct{}{}
	}
}

var testNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo, images *mockImages) *Service {
	return NewService(repo, images, nil, clock.Fixed{T: testNow})
}

func newNotifyingService(repo *mockRepo, notifier *mockNotifier) *Service {
	return NewService(repo, new(mockImages), notifier, clock.Fixed{T: testNow})
}

func TestCreate_NormalizesPriceAndSetsAvailability(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockImages))

	repo.On("Put", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Price == "999.00" && p.Available && p.Enable == 1
	})).Return(nil)

	p, err := svc.Create(context.Background(), &domain.CreateProductRequest{
		Name: "Linen Shirt", Description: "A shirt", Price: "999",
		DiscountPercent: 20, Category: "shirts", StockQuantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "999.00", p.Price)
	assert.True(t, p.Available)
}

func TestCreate_OutOfStockStartsUnavailable(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockImages))

	repo.On("Put", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return !p.Available
	})).Return(nil)

	_, err := svc.Create(context.Background(), &domain.CreateProductRequest{
		Name: "Linen Shirt", Description: "A shirt", Price: "999.00",
		Category: "shirts", StockQuantity: 0,
	})
	require.NoError(t, err)
}

func TestCreate_RejectsMalformedPrice(t *testing.T) {
	svc := newTestService(new(mockRepo), new(mockImages))

	for _, price := range []string{"abc", "-5.00", ""} {
		_, err := svc.Create(context.Background(), &domain.CreateProductRequest{
			Name: "X", Description: "Y", Price: price, Category: "shirts",
		})
		require.ErrorIs(t, err, domain.ErrBadRequest, "price %q", price)
	}
}

func TestGet_ComputesSellingPriceAndClearance(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockImages))

	repo.On("Get", mock.Anything, "p-1").Return(&domain.Product{
		ProductID: "p-1", Price: "9.99", DiscountPercent: 33, Enable: 1,
	}, nil)

	v, err := svc.Get(context.Background(), "p-1", false)
	require.NoError(t, err)
	assert.Equal(t, "6.69", v.SellingPrice)
	assert.False(t, v.Clearance)
}

func TestGet_ClearanceAtThreshold(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockImages))

	repo.On("Get", mock.Anything, "p-1").Return(&domain.Product{
		ProductID: "p-1", Price: "100.00", DiscountPercent: 50, Enable: 1,
	}, nil)

	v, err := svc.Get(context.Background(), "p-1", false)
	require.NoError(t, err)
	assert.Equal(t, "50.00", v.SellingPrice)
	assert.True(t, v.Clearance)
}

func TestGet_HidesDisabledFromCustomers(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockImages))

	repo.On("Get", mock.Anything, "p-1").Return(&domain.Product{
		ProductID: "p-1", Price: "100.00", Enable: 0,
	}, nil)

	_, err := svc.Get(context.Background(), "p-1", false)
	require.ErrorIs(t, err, domain.ErrNotFound)

	v, err := svc.Get(context.Background(), "p-1", true)
	require.NoError(t, err)
	assert.Equal(t, "p-1", v.ProductID)
}

func TestListClearance_FiltersBelowThreshold(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockImages))

	repo.On("ScanPage", mock.Anything, int32(25), "").Return([]domain.Product{
		{ProductID: "p-1", Price: "100.00", DiscountPercent: 49, Enable: 1},
		{ProductID: "p-2", Price: "100.00", DiscountPercent: 50, Enable: 1},
		{ProductID: "p-3", Price: "100.00", DiscountPercent: 70, Enable: 1},
	}, "", nil)

	page, err := svc.ListClearance(context.Background(), 0, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "p-2", page.Items[0].ProductID)
	assert.Equal(t, "p-3", page.Items[1].ProductID)
}

func TestCreate_DiscountedProductTriggersBroadcast(t *testing.T) {
	repo := new(mockRepo)
	notifier := &mockNotifier{notified: make(chan struct{}, 1)}
	svc := newNotifyingService(repo, notifier)

	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	notifier.On("SaleStarted", mock.MatchedBy(func(p domain.Product) bool {
		return p.Name == "Linen Shirt" && p.DiscountPercent == 50
	}), "499.50", true).Return()

	_, err := svc.Create(context.Background(), &domain.CreateProductRequest{
		Name: "Linen Shirt", Description: "A shirt", Price: "999.00",
		DiscountPercent: 50, Category: "shirts", StockQuantity: 5,
	})
	require.NoError(t, err)
	<-notifier.notified
	notifier.AssertExpectations(t)
}

func TestUpdate_NewDiscountTriggersBroadcast(t *testing.T) {
	repo := new(mockRepo)
	notifier := &mockNotifier{notified: make(chan struct{}, 1)}
	svc := newNotifyingService(repo, notifier)

	repo.On("Get", mock.Anything, "p-1").Return(&domain.Product{
		ProductID: "p-1", Name: "Scarf", Price: "250.00", DiscountPercent: 0, Enable: 1,
	}, nil).Once()
	repo.On("Update", mock.Anything, "p-1", mock.Anything).Return(nil)
	repo.On("Get", mock.Anything, "p-1").Return(&domain.Product{
		ProductID: "p-1", Name: "Scarf", Price: "250.00", DiscountPercent: 40, Enable: 1,
	}, nil)
	notifier.On("SaleStarted", mock.MatchedBy(func(p domain.Product) bool {
		return p.ProductID == "p-1" && p.DiscountPercent == 40
	}), "150.00", false).Return()

	pct := 40
	_, err := svc.Update(context.Background(), "p-1", &domain.UpdateProductRequest{DiscountPercent: &pct})
	require.NoError(t, err)
	<-notifier.notified
	notifier.AssertExpectations(t)
}

func TestUpdate_AlreadyDiscountedStaysQuiet(t *testing.T) {
	repo := new(mockRepo)
	notifier := new(mockNotifier)
	svc := newNotifyingService(repo, notifier)

	repo.On("Get", mock.Anything, "p-1").Return(&domain.Product{
		ProductID: "p-1", Name: "Scarf", Price: "250.00", DiscountPercent: 20, Enable: 1,
	}, nil).Once()
	repo.On("Update", mock.Anything, "p-1", mock.Anything).Return(nil)
	repo.On("Get", mock.Anything, "p-1").Return(&domain.Product{
		ProductID: "p-1", Name: "Scarf", Price: "250.00", DiscountPercent: 40, Enable: 1,
	}, nil)

	pct := 40
	_, err := svc.Update(context.Background(), "p-1", &domain.UpdateProductRequest{DiscountPercent: &pct})
	require.NoError(t, err)
	notifier.AssertNotCalled(t, "SaleStarted", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadImage_StoresKeyOnProduct(t *testing.T) {
	repo, images := new(mockRepo), new(mockImages)
	svc := newTestService(repo, images)

	repo.On("Get", mock.Anything, "p-1").Return(&domain.Product{
		ProductID: "p-1", Price: "100.00", Enable: 1,
	}, nil)
	images.On("Upload", mock.Anything, "products/p-1/front.jpg", mock.Anything, "image/jpeg").
		Return("s3://bucket/products/p-1/front.jpg", nil)
	repo.On("Update", mock.Anything, "p-1", map[string]interface{}{
		"image_key": "products/p-1/front.jpg",
	}).Return(nil)

	_, err := svc.UploadImage(context.Background(), "p-1", "front.jpg", "image/jpeg", nil)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	images.AssertExpectations(t)
}
