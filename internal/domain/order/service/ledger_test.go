package service

import (
	"context"
	"sync"
	"testing"

	cartModel "shop_checkout/internal/domain/cart/model"
	"shop_checkout/internal/domain/order/model"
	"shop_checkout/internal/domain/order/repository"
	"shop_checkout/internal/pkg/apperr"
	"shop_checkout/pkg/metrics"
	"shop_checkout/pkg/testutil"
	"shop_checkout/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) Ledger {
	db := testutil.NewDB(t, &model.Order{})
	m := metrics.NewMetricsCollectorWithRegisterer(prometheus.NewRegistry())
	return NewLedger(repository.NewOrderRepository(db), nil, m)
}

func shirtItems() []cartModel.LineItem {
	return []cartModel.LineItem{
		{ProductID: "P1", Name: "Linen Shirt", UnitPrice: decimal.NewFromInt(500), Size: "M", Quantity: 2},
	}
}

func gatewayOrder(t *testing.T, l Ledger, txn string) *model.Order {
	t.Helper()
	ctx := context.Background()
	var order *model.Order
	err := l.Atomically(ctx, func(tx Ledger) error {
		var err error
		order, err = tx.CreateOrder(ctx, NewOrder{
			UserID:        "user-1",
			Items:         shirtItems(),
			Amount:        decimal.NewFromInt(1000),
			PaymentMethod: model.MethodBkash,
		})
		if err != nil {
			return err
		}
		return tx.AttachTransaction(ctx, order.ID, txn)
	})
	require.NoError(t, err)
	return order
}

func TestLedger_CreateOrder(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	t.Run("Cash order is paid", func(t *testing.T) {
		order, err := l.CreateOrder(ctx, NewOrder{
			UserID:        "user-1",
			Items:         shirtItems(),
			Amount:        decimal.NewFromInt(1000),
			PaymentMethod: model.MethodCOD,
			AlreadyPaid:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
		assert.Equal(t, model.FulfillmentPlaced, order.FulfillmentStatus)
		assert.Nil(t, order.TransactionID)
		assert.False(t, order.CreatedAt.IsZero())
		assert.Equal(t, "1000", order.Amount.String())
	})

	t.Run("Gateway order is pending", func(t *testing.T) {
		order, err := l.CreateOrder(ctx, NewOrder{
			UserID:        "user-1",
			Items:         shirtItems(),
			Amount:        decimal.NewFromInt(1000),
			PaymentMethod: model.MethodNagad,
		})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentPending, order.PaymentStatus)
	})

	invalid := []struct {
		name string
		in   NewOrder
	}{
		{"Empty items", NewOrder{UserID: "u", Amount: decimal.NewFromInt(1), PaymentMethod: model.MethodCOD}},
		{"Negative amount", NewOrder{UserID: "u", Items: shirtItems(), Amount: decimal.NewFromInt(-1), PaymentMethod: model.MethodCOD}},
		{"Missing user", NewOrder{Items: shirtItems(), Amount: decimal.NewFromInt(1), PaymentMethod: model.MethodCOD}},
		{"Unknown method", NewOrder{UserID: "u", Items: shirtItems(), Amount: decimal.NewFromInt(1), PaymentMethod: "stripe"}},
		{"Zero quantity", NewOrder{UserID: "u", Items: []cartModel.LineItem{{ProductID: "P1", Quantity: 0}}, PaymentMethod: model.MethodCOD}},
		{"Negative price", NewOrder{UserID: "u", Items: []cartModel.LineItem{{ProductID: "P1", Quantity: 1, UnitPrice: decimal.NewFromInt(-5)}}, PaymentMethod: model.MethodCOD}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.CreateOrder(ctx, tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestLedger_SetPaymentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Idempotent settlement", func(t *testing.T) {
		l := newLedger(t)
		gatewayOrder(t, l, "TXN_A")

		first, err := l.SetPaymentStatus(ctx, "TXN_A", model.PaymentPaid)
		require.NoError(t, err)
		assert.Equal(t, Applied, first.Outcome)
		assert.Equal(t, model.PaymentPaid, first.Order.PaymentStatus)
		assert.NotNil(t, first.Order.PaidAt)

		second, err := l.SetPaymentStatus(ctx, "TXN_A", model.PaymentPaid)
		require.NoError(t, err)
		assert.Equal(t, Unchanged, second.Outcome)
		assert.Equal(t, model.PaymentPaid, second.Order.PaymentStatus)
	})

	t.Run("Paid is sticky", func(t *testing.T) {
		l := newLedger(t)
		gatewayOrder(t, l, "TXN_B")

		_, err := l.SetPaymentStatus(ctx, "TXN_B", model.PaymentPaid)
		require.NoError(t, err)

		for _, to := range []model.PaymentStatus{model.PaymentFailed, model.PaymentCancelled} {
			tr, err := l.SetPaymentStatus(ctx, "TXN_B", to)
			require.NoError(t, err)
			assert.Equal(t, Unchanged, tr.Outcome)
			assert.Equal(t, model.PaymentPaid, tr.Order.PaymentStatus)
		}
	})

	t.Run("Failed is sticky", func(t *testing.T) {
		l := newLedger(t)
		gatewayOrder(t, l, "TXN_C")

		tr, err := l.SetPaymentStatus(ctx, "TXN_C", model.PaymentFailed)
		require.NoError(t, err)
		assert.Equal(t, Applied, tr.Outcome)

		tr, err = l.SetPaymentStatus(ctx, "TXN_C", model.PaymentPaid)
		require.NoError(t, err)
		assert.Equal(t, Unchanged, tr.Outcome)
		assert.Equal(t, model.PaymentFailed, tr.Order.PaymentStatus)
		assert.Nil(t, tr.Order.PaidAt)
	})

	t.Run("Unknown transaction", func(t *testing.T) {
		l := newLedger(t)
		_, err := l.SetPaymentStatus(ctx, "TXN_NONE", model.PaymentPaid)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Pending is not a target", func(t *testing.T) {
		l := newLedger(t)
		gatewayOrder(t, l, "TXN_D")
		_, err := l.SetPaymentStatus(ctx, "TXN_D", model.PaymentPending)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Concurrent callbacks converge", func(t *testing.T) {
		l := newLedger(t)
		gatewayOrder(t, l, "TXN_E")

		targets := []model.PaymentStatus{
			model.PaymentPaid, model.PaymentPaid, model.PaymentPaid, model.PaymentPaid,
			model.PaymentPaid, model.PaymentPaid, model.PaymentPaid, model.PaymentPaid,
		}
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			applied int
		)
		for _, to := range targets {
			wg.Add(1)
			go func(to model.PaymentStatus) {
				defer wg.Done()
				tr, err := l.SetPaymentStatus(ctx, "TXN_E", to)
				if !assert.NoError(t, err) {
					return
				}
				if tr.Outcome == Applied {
					mu.Lock()
					applied++
					mu.Unlock()
				}
			}(to)
		}
		wg.Wait()

		assert.Equal(t, 1, applied)
		order, err := l.FindByTransactionID(ctx, "TXN_E")
		require.NoError(t, err)
		assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
	})
}

func TestLedger_AttachTransaction(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	first := gatewayOrder(t, l, "TXN_DUP")

	other, err := l.CreateOrder(ctx, NewOrder{
		UserID: "user-2", Items: shirtItems(), Amount: decimal.NewFromInt(1000), PaymentMethod: model.MethodBkash,
	})
	require.NoError(t, err)

	err = l.AttachTransaction(ctx, other.ID, "TXN_DUP")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	err = l.AttachTransaction(ctx, other.ID, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	found, err := l.FindByTransactionID(ctx, "TXN_DUP")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestLedger_SetFulfillmentStatus(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	order := gatewayOrder(t, l, "TXN_F")

	require.NoError(t, l.SetFulfillmentStatus(ctx, order.ID, model.FulfillmentDelivered))
	got, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FulfillmentDelivered, got.FulfillmentStatus)

	err = l.SetFulfillmentStatus(ctx, order.ID, "Shipped")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = l.SetFulfillmentStatus(ctx, "missing", model.FulfillmentCancelled)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLedger_ListUserOrders(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	gatewayOrder(t, l, "TXN_L1")
	gatewayOrder(t, l, "TXN_L2")

	orders, total, err := l.ListUserOrders(ctx, "user-1", utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)
}
