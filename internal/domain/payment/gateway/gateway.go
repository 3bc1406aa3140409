package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway 托管收银台适配器，无状态
type Gateway interface {
	// Initiate 提交支付会话，返回收银台跳转地址
	Initiate(ctx context.Context, s Session) (string, error)
	// Validate 服务端校验网关回传的 val_id，客户端声称的支付结果一律不可信
	Validate(ctx context.Context, valID string) (*Validation, error)
}

// Session 一次发起支付所需的信息，不落库
type Session struct {
	TransactionID string
	Amount        decimal.Decimal
	ItemCount     int
	Customer      Customer
	Address       Address
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

type Address struct {
	Street   string
	City     string
	Postcode string
	Country  string
}

// Status 校验结论
type Status int

const (
	Invalid Status = iota
	Valid
)

func (s Status) String() string {
	if s == Valid {
		return "valid"
	}
	return "invalid"
}

// Validation 校验结果，TransactionID/Amount 供调用方与订单交叉核对
type Validation struct {
	Status        Status
	ProviderState string // 网关原始 status 字段
	ValID         string
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	BankTranID    string
}
