package model

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentUnset     PaymentStatus = ""
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// paymentSources 目标状态 -> 允许的来源状态
// Pending 只在建单时写入，不经过状态迁移
var paymentSources = map[PaymentStatus][]PaymentStatus{
	PaymentPaid:      {PaymentPending},
	PaymentFailed:    {PaymentPending},
	PaymentCancelled: {PaymentPending},
}

// Valid 是否为已知状态
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnset, PaymentPending, PaymentPaid, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

// Terminal 终态不可再变
func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed || s == PaymentCancelled
}

// Sources 可迁移到 s 的来源状态
func (s PaymentStatus) Sources() []PaymentStatus {
	return paymentSources[s]
}

// CanTransition from -> to 是否合法
func CanTransition(from, to PaymentStatus) bool {
	for _, src := range paymentSources[to] {
		if src == from {
			return true
		}
	}
	return false
}

// FulfillmentStatus 履约状态，文案与后台页面一致
type FulfillmentStatus string

const (
	FulfillmentPlaced    FulfillmentStatus = "Order Placed"
	FulfillmentDelivered FulfillmentStatus = "Delivered"
	FulfillmentCancelled FulfillmentStatus = "Cancelled"
)

// Valid 是否为后台可选的状态
func (s FulfillmentStatus) Valid() bool {
	switch s {
	case FulfillmentPlaced, FulfillmentDelivered, FulfillmentCancelled:
		return true
	}
	return false
}
