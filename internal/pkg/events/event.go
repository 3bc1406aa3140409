package events

import (
	"time"
)

// Type 订单事件类型
type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderPaid          Type = "order.paid"
	OrderPaymentFailed Type = "order.payment_failed"
)

// OrderEvent 订单状态变化后对外发布的事件
// 仅在状态写入提交之后产生，消费者可按 OrderID 去重
type OrderEvent struct {
	Type          Type      `json:"type"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        string    `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}
