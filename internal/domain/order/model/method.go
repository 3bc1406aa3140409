package model

import (
	"fmt"
	"strings"

	"shop_checkout/internal/pkg/apperr"
)

// PaymentMethod 支付方式，只允许下列取值
type PaymentMethod string

const (
	MethodCOD   PaymentMethod = "cod"
	MethodBkash PaymentMethod = "bkash"
	MethodNagad PaymentMethod = "nagad"
)

// Settlement 结算方式
type Settlement int

const (
	SettlementOnDelivery Settlement = iota + 1 // 货到付款，下单即视为已付
	SettlementGateway                          // 跳转托管收银台
)

// ParsePaymentMethod 大小写不敏感
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodCOD, MethodBkash, MethodNagad:
		return m, nil
	}
	return "", fmt.Errorf("%w: unsupported payment method %q", apperr.ErrValidation, s)
}

// Settlement 新增支付方式时必须在这里归类
func (m PaymentMethod) Settlement() Settlement {
	switch m {
	case MethodCOD:
		return SettlementOnDelivery
	case MethodBkash, MethodNagad:
		return SettlementGateway
	}
	panic(fmt.Sprintf("unknown payment method %q", string(m)))
}

// Valid 是否为已知取值
func (m PaymentMethod) Valid() bool {
	for _, known := range Methods() {
		if m == known {
			return true
		}
	}
	return false
}

// Methods 全部支付方式
func Methods() []PaymentMethod {
	return []PaymentMethod{MethodCOD, MethodBkash, MethodNagad}
}
