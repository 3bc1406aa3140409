package service

import (
	"context"
	"errors"
	"testing"

	catalogmodel "shop_checkout/internal/domain/catalog/model"
	catalogrepo "shop_checkout/internal/domain/catalog/repository"
	"shop_checkout/internal/domain/cart/model"
	"shop_checkout/internal/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[string]*catalogmodel.Product

func (f fakeCatalog) Lookup(_ context.Context, id string) (*catalogmodel.Product, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, catalogrepo.ErrProductNotFound
}

type brokenCatalog struct{}

func (brokenCatalog) Lookup(context.Context, string) (*catalogmodel.Product, error) {
	return nil, errors.New("connection refused")
}

func catalog() fakeCatalog {
	return fakeCatalog{
		"P1": {ID: "P1", Name: "Linen Shirt", Price: decimal.NewFromInt(500), Images: catalogmodel.ImageList{"p1.jpg"}},
		"P2": {ID: "P2", Name: "Cap", Price: decimal.RequireFromString("120.50")},
	}
}

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(catalog(), nil)

	t.Run("Single item", func(t *testing.T) {
		snap, err := b.Build(ctx, model.Selection{"P1": {"M": 2}})
		require.NoError(t, err)
		require.Len(t, snap.Items, 1)

		item := snap.Items[0]
		assert.Equal(t, "Linen Shirt", item.Name)
		assert.Equal(t, "M", item.Size)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, "p1.jpg", item.ImageRef)
		assert.Equal(t, "1000", snap.Total.String())
	})

	t.Run("Deterministic order and exact sum", func(t *testing.T) {
		snap, err := b.Build(ctx, model.Selection{
			"P2": {"L": 3},
			"P1": {"S": 1, "M": 2},
		})
		require.NoError(t, err)

		var keys []string
		for _, it := range snap.Items {
			keys = append(keys, it.ProductID+"/"+it.Size)
		}
		assert.Equal(t, []string{"P1/M", "P1/S", "P2/L"}, keys)
		// 500*2 + 500*1 + 120.50*3
		assert.True(t, decimal.RequireFromString("1861.50").Equal(snap.Total), snap.Total.String())
		assert.True(t, model.Sum(snap.Items).Equal(snap.Total))
	})

	t.Run("Unknown products and zero quantities dropped", func(t *testing.T) {
		snap, err := b.Build(ctx, model.Selection{
			"P1":    {"M": 1, "L": 0},
			"GHOST": {"M": 5},
		})
		require.NoError(t, err)
		require.Len(t, snap.Items, 1)
		assert.Equal(t, "P1", snap.Items[0].ProductID)
	})

	t.Run("Empty result", func(t *testing.T) {
		_, err := b.Build(ctx, model.Selection{"GHOST": {"M": 1}, "P1": {"M": 0}})
		assert.ErrorIs(t, err, apperr.ErrEmptyCart)
		assert.ErrorIs(t, err, apperr.ErrValidation)

		_, err = b.Build(ctx, nil)
		assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	})

	t.Run("Catalog failure propagates", func(t *testing.T) {
		_, err := NewBuilder(brokenCatalog{}, nil).Build(ctx, model.Selection{"P1": {"M": 1}})
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrValidation)
	})
}
