// Package domain 定义结账流程的模型与端口。
// 两个元数据块随托管支付会话往返：联系信息（order_data）和价格锁定的
// 购物车快照（cart）。订单物化只依赖这两块，不再回读实时购物车或价格。
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart 购物车为空，无法发起结账
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoValidItems 购物车条目全部失效
	ErrNoValidItems = errors.New("no valid items in cart")
	// ErrSessionNotFound 待确认的支付会话不存在或已被消费
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrInvalidSignature webhook 签名校验失败
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// OrderForm 结账表单的联系与收货信息
type OrderForm struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
	// 认证用户可选择把本次收货信息存为地址
	SaveAddress bool `json:"save_address,omitempty"`
	SetDefault  bool `json:"set_default,omitempty"`
}

// Validate 校验必填字段
func (f *OrderForm) Validate() error {
	if f.Email == "" || f.FullName == "" || f.Address == "" {
		return errors.New("email, full_name and address are required")
	}
	return nil
}

// SnapshotEntry 价格锁定的购物车快照行。UnitPrice 是发起结账时按请求者
// 类别报出的单价，订单物化按这个价格落库。
type SnapshotEntry struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

// LineItem 托管支付页上的一行，金额为最小货币单位
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
	Currency   string
}

// Session 支付网关托管会话
type Session struct {
	ID            string
	URL           string
	PaymentIntent string
	AmountTotal   int64
	Status        string
	Metadata      map[string]string
}

// 会话元数据键
const (
	MetadataOrderData = "order_data"
	MetadataCart      = "cart"
)
