package catalog

import (
	"fmt"

	"shop_checkout/internal/domain/catalog/repository"
	"shop_checkout/internal/domain/catalog/service"
	"shop_checkout/internal/pkg/registry"
	"shop_checkout/pkg/cache"

	"github.com/jmoiron/sqlx"
)

// ServiceKey 其他模块通过 registry.Lookup 取目录服务
const ServiceKey = "catalog.service"

func init() {
	registry.Register(&CatalogModule{})
}

type CatalogModule struct{}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 5
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	db := ctx.SQLX
	if db == nil {
		sqlDB, err := ctx.DB.DB()
		if err != nil {
			return fmt.Errorf("catalog: underlying sql.DB: %w", err)
		}
		db = sqlx.NewDb(sqlDB, "postgres")
	}

	var c cache.CacheService
	if ctx.Redis != nil {
		c = cache.NewMonitoredCache(cache.NewRedisCache(ctx.Redis, "catalog:"), "catalog", ctx.Metrics)
	}

	svc := service.NewCatalogService(
		repository.NewProductRepository(db),
		c,
		ctx.Config.Catalog.CacheTTL,
		ctx.Logger.Named("catalog"),
	)
	registry.Provide(ServiceKey, svc)
	return nil
}
