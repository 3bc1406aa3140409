package service

import (
	"context"
	"errors"
	"time"

	"shop_checkout/internal/domain/catalog/model"
	"shop_checkout/internal/domain/catalog/repository"
	"shop_checkout/pkg/cache"

	"go.uber.org/zap"
)

// CatalogService 按商品 ID 查询价格与展示信息
type CatalogService interface {
	Lookup(ctx context.Context, productID string) (*model.Product, error)
}

type catalogService struct {
	repo  repository.ProductRepository
	cache cache.CacheService // 可为 nil
	ttl   time.Duration
	log   *zap.Logger
}

func NewCatalogService(repo repository.ProductRepository, c cache.CacheService, ttl time.Duration, log *zap.Logger) CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &catalogService{repo: repo, cache: c, ttl: ttl, log: log}
}

func cacheKey(productID string) string {
	return "product:" + productID
}

// Lookup 先读缓存，未命中查库并回填
// 缓存故障只记日志，不影响下单
func (s *catalogService) Lookup(ctx context.Context, productID string) (*model.Product, error) {
	if s.cache != nil {
		var cached model.Product
		err := s.cache.Get(ctx, cacheKey(productID), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("catalog cache get failed", zap.String("product_id", productID), zap.Error(err))
		}
	}

	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, cacheKey(productID), p, s.ttl); err != nil {
			s.log.Warn("catalog cache set failed", zap.String("product_id", productID), zap.Error(err))
		}
	}
	return p, nil
}
