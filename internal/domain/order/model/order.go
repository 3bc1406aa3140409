package model

import (
	"time"

	cartModel "shop_checkout/internal/domain/cart/model"
	baseModel "shop_checkout/pkg/model"

	"github.com/shopspring/decimal"
)

// Order 订单：下单时刻的价格快照 + 支付、履约两条独立的状态轴
type Order struct {
	baseModel.BaseModel
	UserID            string               `gorm:"type:varchar(64);not null;index" json:"userId"`
	Items             []cartModel.LineItem `gorm:"type:jsonb;serializer:json;not null" json:"items"`
	Amount            decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"amount"`
	Address           Address              `gorm:"type:jsonb;serializer:json;not null" json:"address"`
	Customer          *Customer            `gorm:"type:jsonb;serializer:json" json:"customer,omitempty"`
	PaymentMethod     PaymentMethod        `gorm:"type:varchar(16);not null" json:"paymentMethod"`
	TransactionID     *string              `gorm:"type:varchar(64);uniqueIndex" json:"transactionId,omitempty"`
	PaymentStatus     PaymentStatus        `gorm:"type:varchar(16);not null;index" json:"paymentStatus"`
	FulfillmentStatus FulfillmentStatus    `gorm:"type:varchar(32);not null" json:"status"`
	PaidAt            *time.Time           `json:"paidAt,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// Paid 兼容前端使用的 payment 布尔字段
func (o *Order) Paid() bool {
	return o.PaymentStatus == PaymentPaid
}

// TxnID 未关联交易时返回空串
func (o *Order) TxnID() string {
	if o.TransactionID == nil {
		return ""
	}
	return *o.TransactionID
}

// Address 收货信息快照
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// FullName 名 + 姓
func (a Address) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Customer 网关订单的付款人信息
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
