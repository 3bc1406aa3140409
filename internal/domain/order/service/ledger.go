package service

import (
	"context"
	"fmt"
	"time"

	cartModel "shop_checkout/internal/domain/cart/model"
	"shop_checkout/internal/domain/order/model"
	"shop_checkout/internal/domain/order/repository"
	"shop_checkout/internal/pkg/apperr"
	"shop_checkout/pkg/metrics"
	"shop_checkout/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NewOrder 建单参数
type NewOrder struct {
	UserID        string
	Items         []cartModel.LineItem
	Amount        decimal.Decimal
	Address       model.Address
	Customer      *model.Customer
	PaymentMethod model.PaymentMethod
	AlreadyPaid   bool // 仅货到付款路径可置 true
}

// Outcome 支付状态迁移结果
type Outcome int

const (
	Applied   Outcome = iota + 1 // 本次调用完成了迁移
	Unchanged                    // 重复回调或终态拒绝，不算错误
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "unchanged"
}

// Transition SetPaymentStatus 的返回值，Order 为迁移后的最新记录
type Transition struct {
	Outcome Outcome
	Order   *model.Order
}

// Ledger 订单账本，订单数据的唯一入口
type Ledger interface {
	CreateOrder(ctx context.Context, in NewOrder) (*model.Order, error)
	AttachTransaction(ctx context.Context, orderID, transactionID string) error
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	SetPaymentStatus(ctx context.Context, transactionID string, to model.PaymentStatus) (*Transition, error)
	SetFulfillmentStatus(ctx context.Context, orderID string, status model.FulfillmentStatus) error
	ListUserOrders(ctx context.Context, userID string, page utils.Pagination) ([]model.Order, int64, error)
	Atomically(ctx context.Context, fn func(l Ledger) error) error
}

type ledger struct {
	repo    repository.OrderRepository
	log     *zap.Logger
	metrics *metrics.MetricsCollector
	now     func() time.Time
}

func NewLedger(repo repository.OrderRepository, log *zap.Logger, m *metrics.MetricsCollector) Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &ledger{repo: repo, log: log, metrics: m, now: time.Now}
}

func (l *ledger) CreateOrder(ctx context.Context, in NewOrder) (*model.Order, error) {
	if err := validateNewOrder(in); err != nil {
		return nil, err
	}

	status := model.PaymentPending
	if in.AlreadyPaid {
		status = model.PaymentPaid
	}

	order := &model.Order{
		UserID:            in.UserID,
		Items:             in.Items,
		Amount:            in.Amount,
		Address:           in.Address,
		Customer:          in.Customer,
		PaymentMethod:     in.PaymentMethod,
		PaymentStatus:     status,
		FulfillmentStatus: model.FulfillmentPlaced,
	}
	if err := l.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	l.metrics.RecordOrderCreated(string(in.PaymentMethod))
	l.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("method", string(order.PaymentMethod)),
		zap.String("payment_status", string(order.PaymentStatus)),
		zap.String("amount", order.Amount.StringFixed(2)))
	return order, nil
}

func validateNewOrder(in NewOrder) error {
	switch {
	case in.UserID == "":
		return fmt.Errorf("%w: user id is required", apperr.ErrValidation)
	case len(in.Items) == 0:
		return fmt.Errorf("%w: order has no items", apperr.ErrValidation)
	case in.Amount.IsNegative():
		return fmt.Errorf("%w: amount must not be negative", apperr.ErrValidation)
	case !in.PaymentMethod.Valid():
		return fmt.Errorf("%w: unsupported payment method %q", apperr.ErrValidation, in.PaymentMethod)
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: quantity of %s must be at least 1", apperr.ErrValidation, it.ProductID)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: unit price of %s must not be negative", apperr.ErrValidation, it.ProductID)
		}
	}
	return nil
}

func (l *ledger) AttachTransaction(ctx context.Context, orderID, transactionID string) error {
	if transactionID == "" {
		return fmt.Errorf("%w: transaction id is required", apperr.ErrValidation)
	}
	return l.repo.AttachTransaction(ctx, orderID, transactionID)
}

func (l *ledger) FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	return l.repo.GetByTransactionID(ctx, transactionID)
}

// GetOrder 非 UUID 的订单号直接视为不存在，避免 postgres 类型转换报错
func (l *ledger) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if uuid.Validate(orderID) != nil {
		return nil, fmt.Errorf("%w: order %s", apperr.ErrNotFound, orderID)
	}
	return l.repo.GetByID(ctx, orderID)
}

// SetPaymentStatus 单行条件更新保证同一交易的并发回调最终收敛
// 已处于目标状态或终态时返回 Unchanged
func (l *ledger) SetPaymentStatus(ctx context.Context, transactionID string, to model.PaymentStatus) (*Transition, error) {
	if !to.Terminal() {
		return nil, fmt.Errorf("%w: %q is not a transition target", apperr.ErrValidation, to)
	}

	var paidAt *time.Time
	if to == model.PaymentPaid {
		now := l.now()
		paidAt = &now
	}

	applied, err := l.repo.TransitionPayment(ctx, transactionID, to, paidAt)
	if err != nil {
		l.metrics.RecordTransition(string(to), "error")
		return nil, fmt.Errorf("transition %s to %s: %w", transactionID, to, err)
	}

	order, err := l.repo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	outcome := Unchanged
	if applied {
		outcome = Applied
	}
	l.metrics.RecordTransition(string(to), outcome.String())

	log := l.log.With(
		zap.String("order_id", order.ID),
		zap.String("transaction_id", transactionID),
		zap.String("target", string(to)),
		zap.String("current", string(order.PaymentStatus)))
	switch {
	case applied:
		log.Info("payment status updated")
	case order.PaymentStatus == to:
		log.Info("payment status replay ignored")
	default:
		log.Warn("payment transition refused")
	}

	return &Transition{Outcome: outcome, Order: order}, nil
}

func (l *ledger) SetFulfillmentStatus(ctx context.Context, orderID string, status model.FulfillmentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown order status %q", apperr.ErrValidation, status)
	}
	if err := l.repo.UpdateFulfillmentStatus(ctx, orderID, status); err != nil {
		return err
	}
	l.log.Info("fulfillment status updated", zap.String("order_id", orderID), zap.String("status", string(status)))
	return nil
}

func (l *ledger) ListUserOrders(ctx context.Context, userID string, page utils.Pagination) ([]model.Order, int64, error) {
	offset, limit := page.GetPageOffset()
	return l.repo.ListByUser(ctx, userID, offset, limit)
}

// Atomically fn 内的账本操作在同一数据库事务中提交
func (l *ledger) Atomically(ctx context.Context, fn func(l Ledger) error) error {
	return l.repo.Transaction(ctx, func(repo repository.OrderRepository) error {
		return fn(&ledger{repo: repo, log: l.log, metrics: l.metrics, now: l.now})
	})
}
