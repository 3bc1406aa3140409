package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop_checkout/internal/domain/catalog/model"

	"github.com/jmoiron/sqlx"
)

// ErrProductNotFound 商品不存在或已下架
var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

const selectProduct = `SELECT id, name, price, images FROM products WHERE id = $1`

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.db.GetContext(ctx, &p, selectProduct, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("query product %s: %w", id, err)
	}
	return &p, nil
}
