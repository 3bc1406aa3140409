package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product 商品目录只读视图，表由商品服务维护
type Product struct {
	ID     string          `db:"id" json:"id"`
	Name   string          `db:"name" json:"name"`
	Price  decimal.Decimal `db:"price" json:"price"`
	Images ImageList       `db:"images" json:"images"`
}

// FirstImage 返回展示用首图
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ImageList 存为 jsonb 数组
type ImageList []string

func (l *ImageList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported images type %T", src)
	}
	return json.Unmarshal(data, (*[]string)(l))
}

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	return string(b), err
}
