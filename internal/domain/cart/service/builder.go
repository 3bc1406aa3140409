package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	catalogmodel "shop_checkout/internal/domain/catalog/model"
	catalogrepo "shop_checkout/internal/domain/catalog/repository"
	"shop_checkout/internal/domain/cart/model"
	"shop_checkout/internal/pkg/apperr"

	"go.uber.org/zap"
)

// Catalog 商品查询能力
type Catalog interface {
	Lookup(ctx context.Context, productID string) (*catalogmodel.Product, error)
}

// Builder 把购物车选择转换为价格快照
type Builder struct {
	catalog Catalog
	log     *zap.Logger
}

func NewBuilder(catalog Catalog, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{catalog: catalog, log: log}
}

// Build 按商品ID、尺码顺序生成行项目
// 目录里已不存在的商品直接跳过；结果为空返回 apperr.ErrEmptyCart
func (b *Builder) Build(ctx context.Context, cart model.Selection) (*model.Snapshot, error) {
	productIDs := make([]string, 0, len(cart))
	for id := range cart {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	items := make([]model.LineItem, 0, len(cart))
	for _, id := range productIDs {
		sizes := cart[id]
		keys := make([]string, 0, len(sizes))
		for size, qty := range sizes {
			if qty > 0 {
				keys = append(keys, size)
			}
		}
		if len(keys) == 0 {
			continue
		}
		sort.Strings(keys)

		product, err := b.catalog.Lookup(ctx, id)
		if errors.Is(err, catalogrepo.ErrProductNotFound) {
			b.log.Info("dropping unknown product from cart", zap.String("product_id", id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("catalog lookup %s: %w", id, err)
		}

		for _, size := range keys {
			items = append(items, model.LineItem{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Size:      size,
				Quantity:  sizes[size],
				ImageRef:  product.FirstImage(),
			})
		}
	}

	if len(items) == 0 {
		return nil, apperr.ErrEmptyCart
	}
	return &model.Snapshot{Items: items, Total: model.Sum(items)}, nil
}
