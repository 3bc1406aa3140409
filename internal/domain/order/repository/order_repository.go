package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop_checkout/internal/domain/order/model"
	"shop_checkout/internal/pkg/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation postgres 唯一约束冲突错误码
const pgUniqueViolation = "23505"

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error)
	AttachTransaction(ctx context.Context, orderID, transactionID string) error
	TransitionPayment(ctx context.Context, transactionID string, to model.PaymentStatus, paidAt *time.Time) (bool, error)
	UpdateFulfillmentStatus(ctx context.Context, orderID string, status model.FulfillmentStatus) error
	Transaction(ctx context.Context, fn func(repo OrderRepository) error) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction id already in use", apperr.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", apperr.ErrNotFound, transactionID)
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser 按下单时间倒序
func (r *orderRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error) {
	var (
		orders []model.Order
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Order("id").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// AttachTransaction 只在 transaction_id 为空时写入
// 同一对 (order, transaction) 重复关联视为成功
func (r *orderRepository) AttachTransaction(ctx context.Context, orderID, transactionID string) error {
	db := r.db.WithContext(ctx)

	var owner model.Order
	err := db.Select("id").Where("transaction_id = ?", transactionID).Take(&owner).Error
	switch {
	case err == nil && owner.ID != orderID:
		return fmt.Errorf("%w: transaction %s belongs to another order", apperr.ErrConflict, transactionID)
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	result := db.Model(&model.Order{}).
		Where("id = ? AND transaction_id IS NULL", orderID).
		Update("transaction_id", transactionID)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("%w: transaction %s belongs to another order", apperr.ErrConflict, transactionID)
		}
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	current, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if current.TxnID() == transactionID {
		return nil
	}
	return fmt.Errorf("%w: order %s already has a transaction", apperr.ErrConflict, orderID)
}

// TransitionPayment 乐观更新：只有当前状态属于 to 的合法来源时才写入
// 返回 false 表示未更新（重复回调或已处于终态）
func (r *orderRepository) TransitionPayment(ctx context.Context, transactionID string, to model.PaymentStatus, paidAt *time.Time) (bool, error) {
	sources := to.Sources()
	if len(sources) == 0 {
		return false, fmt.Errorf("%w: %q is not a transition target", apperr.ErrValidation, to)
	}

	updates := map[string]interface{}{
		"payment_status": to,
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("transaction_id = ? AND payment_status IN ?", transactionID, sources).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepository) UpdateFulfillmentStatus(ctx context.Context, orderID string, status model.FulfillmentStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("fulfillment_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: order %s", apperr.ErrNotFound, orderID)
	}
	return nil
}

func (r *orderRepository) Transaction(ctx context.Context, fn func(repo OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepository{db: tx})
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
