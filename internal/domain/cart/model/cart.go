package model

import (
	"github.com/shopspring/decimal"
)

// Selection 客户端提交的购物车：商品ID -> 尺码 -> 数量
type Selection map[string]map[string]int

// LineItem 下单时刻的商品价格快照
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"imageRef"`
}

// Subtotal 单价 * 数量
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshot 购物车定价结果，不落库
type Snapshot struct {
	Items []LineItem
	Total decimal.Decimal
}

// Sum 计算行项目合计
func Sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
