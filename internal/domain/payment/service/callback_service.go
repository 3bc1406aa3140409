package service

import (
	"context"

	orderModel "shop_checkout/internal/domain/order/model"
	orderService "shop_checkout/internal/domain/order/service"
	"shop_checkout/internal/domain/payment/gateway"
	"shop_checkout/internal/pkg/events"

	"go.uber.org/zap"
)

// Outcome 浏览器回调最终跳转的结果页
type Outcome int

const (
	OutcomeSucceeded Outcome = iota + 1
	OutcomeFailed
	OutcomeCancelled
)

// 回调渠道
const (
	ChannelSuccess = "success"
	ChannelFail    = "fail"
	ChannelCancel  = "cancel"
	ChannelIPN     = "ipn"
)

// Callback 网关回传的关联信息
type Callback struct {
	ValID         string
	TransactionID string
}

// HandleSuccess 浏览器成功回跳：必须经网关校验 val_id 才能置为已付
func (s *CheckoutService) HandleSuccess(ctx context.Context, cb Callback) Outcome {
	if s.confirm(ctx, ChannelSuccess, cb) {
		return OutcomeSucceeded
	}
	return OutcomeFailed
}

// HandleIPN 异步通知，与成功回跳共用确认逻辑，先到者生效
func (s *CheckoutService) HandleIPN(ctx context.Context, cb Callback) {
	s.confirm(ctx, ChannelIPN, cb)
}

// HandleFail 网关告知支付失败，无需校验；已付订单不受影响
func (s *CheckoutService) HandleFail(ctx context.Context, cb Callback) Outcome {
	log := s.log.With(zap.String("channel", ChannelFail), zap.String("transaction_id", cb.TransactionID))
	if cb.TransactionID == "" {
		s.metrics.RecordCallback(ChannelFail, "malformed")
		log.Warn("callback without tran_id")
		return OutcomeFailed
	}

	tr, err := s.ledger.SetPaymentStatus(ctx, cb.TransactionID, orderModel.PaymentFailed)
	switch {
	case isNotFound(err):
		s.metrics.RecordCallback(ChannelFail, "unknown_transaction")
		log.Warn("callback for unknown transaction")
	case err != nil:
		s.metrics.RecordCallback(ChannelFail, "error")
		log.Error("mark payment failed", zap.Error(err))
	case tr.Outcome == orderService.Applied:
		s.metrics.RecordCallback(ChannelFail, "failed")
		s.dispatch(events.OrderPaymentFailed, tr.Order)
	default:
		s.metrics.RecordCallback(ChannelFail, "unchanged")
	}
	return OutcomeFailed
}

// HandleCancel 用户在收银台取消，订单状态不变
func (s *CheckoutService) HandleCancel(ctx context.Context, cb Callback) Outcome {
	s.metrics.RecordCallback(ChannelCancel, "cancelled")
	s.log.Info("payment cancelled by buyer",
		zap.String("channel", ChannelCancel),
		zap.String("transaction_id", cb.TransactionID))
	return OutcomeCancelled
}

// confirm 校验并置为已付，返回订单最终是否已付
func (s *CheckoutService) confirm(ctx context.Context, channel string, cb Callback) bool {
	log := s.log.With(zap.String("channel", channel), zap.String("transaction_id", cb.TransactionID))
	if cb.TransactionID == "" || cb.ValID == "" {
		s.metrics.RecordCallback(channel, "malformed")
		log.Warn("callback without tran_id or val_id")
		return false
	}

	order, err := s.ledger.FindByTransactionID(ctx, cb.TransactionID)
	if err != nil {
		if isNotFound(err) {
			s.metrics.RecordCallback(channel, "unknown_transaction")
			log.Warn("callback for unknown transaction")
		} else {
			s.metrics.RecordCallback(channel, "error")
			log.Error("load order for callback", zap.Error(err))
		}
		return false
	}

	// 失败/取消是终态，不再向网关确认
	if order.PaymentStatus.Terminal() && order.PaymentStatus != orderModel.PaymentPaid {
		s.metrics.RecordCallback(channel, "unchanged")
		log.Info("callback for settled order ignored", zap.String("payment_status", string(order.PaymentStatus)))
		return false
	}

	v, err := s.gateway.Validate(ctx, cb.ValID)
	if err != nil {
		s.metrics.RecordCallback(channel, "gateway_error")
		log.Error("validate payment", zap.String("order_id", order.ID), zap.Error(err))
		return false
	}
	if !s.matches(order, v, log) {
		s.metrics.RecordCallback(channel, "invalid")
		return false
	}

	tr, err := s.ledger.SetPaymentStatus(ctx, cb.TransactionID, orderModel.PaymentPaid)
	if err != nil {
		s.metrics.RecordCallback(channel, "error")
		log.Error("mark payment paid", zap.String("order_id", order.ID), zap.Error(err))
		return false
	}

	if tr.Outcome == orderService.Applied {
		s.metrics.RecordCallback(channel, "paid")
		s.dispatch(events.OrderPaid, tr.Order)
	} else {
		s.metrics.RecordCallback(channel, "unchanged")
	}
	return tr.Order.PaymentStatus == orderModel.PaymentPaid
}

// matches 网关确认的交易号与金额必须属于这笔订单
func (s *CheckoutService) matches(order *orderModel.Order, v *gateway.Validation, log *zap.Logger) bool {
	if v.Status != gateway.Valid {
		log.Warn("gateway rejected val_id", zap.String("order_id", order.ID), zap.String("state", v.ProviderState))
		return false
	}
	if v.TransactionID != "" && v.TransactionID != order.TxnID() {
		log.Warn("val_id belongs to another transaction",
			zap.String("order_id", order.ID),
			zap.String("validated_transaction_id", v.TransactionID))
		return false
	}
	if !v.Amount.IsZero() && !v.Amount.Equal(order.Amount) {
		log.Warn("validated amount mismatch",
			zap.String("order_id", order.ID),
			zap.String("order_amount", order.Amount.StringFixed(2)),
			zap.String("validated_amount", v.Amount.StringFixed(2)))
		return false
	}
	return true
}
