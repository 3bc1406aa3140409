package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop_checkout/internal/domain/catalog/model"
	"shop_checkout/internal/domain/catalog/repository"
	"shop_checkout/pkg/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	if p, ok := args.Get(1).(*model.Product); ok && p != nil {
		*(dest.(*model.Product)) = *p
	}
	return args.Error(0)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func shirt() *model.Product {
	return &model.Product{ID: "P1", Name: "Linen Shirt", Price: decimal.NewFromInt(500), Images: model.ImageList{"p1.jpg"}}
}

func TestCatalogService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Cache hit skips database", func(t *testing.T) {
		repo := new(MockProductRepository)
		c := new(MockCache)
		c.On("Get", ctx, "product:P1", mock.Anything).Return(nil, shirt())

		svc := NewCatalogService(repo, c, time.Minute, nil)
		p, err := svc.Lookup(ctx, "P1")

		require.NoError(t, err)
		assert.Equal(t, "Linen Shirt", p.Name)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Cache miss loads and fills", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByID", ctx, "P1").Return(shirt(), nil)
		c := new(MockCache)
		c.On("Get", ctx, "product:P1", mock.Anything).Return(cache.ErrCacheMiss, nil)
		c.On("Set", ctx, "product:P1", mock.Anything, time.Minute).Return(nil)

		svc := NewCatalogService(repo, c, time.Minute, nil)
		p, err := svc.Lookup(ctx, "P1")

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(p.Price))
		c.AssertExpectations(t)
	})

	t.Run("Cache failure falls back to database", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByID", ctx, "P1").Return(shirt(), nil)
		c := new(MockCache)
		c.On("Get", ctx, "product:P1", mock.Anything).Return(errors.New("redis down"), nil)
		c.On("Set", ctx, "product:P1", mock.Anything, time.Minute).Return(errors.New("redis down"))

		svc := NewCatalogService(repo, c, time.Minute, nil)
		p, err := svc.Lookup(ctx, "P1")

		require.NoError(t, err)
		assert.Equal(t, "P1", p.ID)
	})

	t.Run("Not found is not cached", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByID", ctx, "gone").Return(nil, repository.ErrProductNotFound)
		c := new(MockCache)
		c.On("Get", ctx, "product:gone", mock.Anything).Return(cache.ErrCacheMiss, nil)

		svc := NewCatalogService(repo, c, time.Minute, nil)
		_, err := svc.Lookup(ctx, "gone")

		assert.ErrorIs(t, err, repository.ErrProductNotFound)
		c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No cache configured", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByID", ctx, "P1").Return(shirt(), nil)

		svc := NewCatalogService(repo, nil, 0, nil)
		_, err := svc.Lookup(ctx, "P1")
		assert.NoError(t, err)
	})
}
