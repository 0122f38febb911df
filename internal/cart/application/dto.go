package application

import (
	"github.com/shopspring/decimal"

	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
)

// ItemView 购物车行视图，价格已按请求者类别换算
type ItemView struct {
	Key       string          `json:"key"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// View 购物车视图
type View struct {
	Items    []ItemView       `json:"items"`
	Total    decimal.Decimal  `json:"total"`
	Category pricing.Category `json:"user_type"`
}
