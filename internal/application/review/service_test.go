package review

import (
	"context"
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

func (m *mockRepo) Put(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRepo) Get(ctx context.Context, reviewID string) (*domain.Review, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockRepo) GetByUserAndProduct(ctx context.Context, userID, productID string) (*domain.Review, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockRepo) ListPending(ctx context.Context) ([]domain.Review, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, reviewID string) error {
	args := m.Called(ctx, reviewID)
	return args.Error(0)
}

type mockProducts struct {
	mock.Mock
}

func (m *mockProducts) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo, products *mockProducts) *Service {
	return NewService(repo, products, clock.Fixed{T: testNow})
}

func notFound() error {
	return domain.ErrNotFound
}

func TestSubmit_CreatesUnapprovedReview(t *testing.T) {
	repo := new(mockRepo)
	products := new(mockProducts)
	svc := newTestService(repo, products)

	products.On("Get", mock.Anything, "prod-1").Return(&domain.Product{ProductID: "prod-1"}, nil)
	repo.On("GetByUserAndProduct", mock.Anything, "user-1", "prod-1").Return(nil, notFound())
	repo.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.ReviewID != "" && r.Rating == 4 && !r.Approved && r.PostedAt.Equal(testNow)
	})).Return(nil)

	rev, err := svc.Submit(context.Background(), "user-1", "prod-1", &domain.ReviewInput{
		Rating: 4, Comment: "Lovely fabric",
	})
	require.NoError(t, err)
	assert.False(t, rev.Approved)
	repo.AssertExpectations(t)
}

func TestSubmit_RatingOutOfRange(t *testing.T) {
	svc := newTestService(new(mockRepo), new(mockProducts))

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), "user-1", "prod-1", &domain.ReviewInput{Rating: rating})
		require.ErrorIs(t, err, domain.ErrBadRequest)
	}
}

func TestSubmit_UnknownProduct(t *testing.T) {
	repo := new(mockRepo)
	products := new(mockProducts)
	svc := newTestService(repo, products)

	products.On("Get", mock.Anything, "ghost").Return(nil, notFound())

	_, err := svc.Submit(context.Background(), "user-1", "ghost", &domain.ReviewInput{Rating: 3})
	require.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSubmit_UpdateResetsApproval(t *testing.T) {
	repo := new(mockRepo)
	products := new(mockProducts)
	svc := newTestService(repo, products)

	posted := testNow.Add(-48 * time.Hour)
	products.On("Get", mock.Anything, "prod-1").Return(&domain.Product{ProductID: "prod-1"}, nil)
	repo.On("GetByUserAndProduct", mock.Anything, "user-1", "prod-1").Return(&domain.Review{
		ReviewID: "rev-1", ProductID: "prod-1", UserID: "user-1",
		Rating: 5, Comment: "Great", Approved: true, PostedAt: posted,
	}, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.ReviewID == "rev-1" && r.Rating == 2 && !r.Approved &&
			r.PostedAt.Equal(posted) && r.UpdatedAt.Equal(testNow)
	})).Return(nil)

	rev, err := svc.Submit(context.Background(), "user-1", "prod-1", &domain.ReviewInput{
		Rating: 2, Comment: "Shrank after one wash",
	})
	require.NoError(t, err)
	assert.False(t, rev.Approved)
	repo.AssertExpectations(t)
}

func TestListApproved_FiltersAndAverages(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockProducts))

	repo.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.Review{
		{ReviewID: "rev-1", Rating: 5, Approved: true},
		{ReviewID: "rev-2", Rating: 2, Approved: false},
		{ReviewID: "rev-3", Rating: 4, Approved: true},
	}, nil)

	sum, err := svc.ListApproved(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.Len(t, sum.Reviews, 2)
	assert.Equal(t, "4.5", sum.AverageRating)
}

func TestListApproved_NoReviews(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockProducts))

	repo.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.Review{}, nil)

	sum, err := svc.ListApproved(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
	assert.Equal(t, "0.0", sum.AverageRating)
}

func TestApprove_Publishes(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockProducts))

	repo.On("Get", mock.Anything, "rev-1").Return(&domain.Review{
		ReviewID: "rev-1", Rating: 4, Approved: false,
	}, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.ReviewID == "rev-1" && r.Approved && r.UpdatedAt.Equal(testNow)
	})).Return(nil)

	rev, err := svc.Approve(context.Background(), "rev-1")
	require.NoError(t, err)
	assert.True(t, rev.Approved)
}

func TestDelete_UnknownReview(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockProducts))

	repo.On("Get", mock.Anything, "ghost").Return(nil, notFound())

	err := svc.Delete(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
