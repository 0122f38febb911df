// Package domain 包含订单的领域模型
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/marketplace/pkg/utils"
)

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateSession 同一支付会话已物化为订单
	ErrDuplicateSession = errors.New("checkout session already materialized")
)

// Status 订单状态
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Order 订单聚合根。StripeSessionID 唯一索引是物化幂等的最终防线。
type Order struct {
	gorm.Model
	OrderNo         string          `gorm:"column:order_no;type:varchar(64);uniqueIndex;not null"`
	UserID          *uint           `gorm:"column:user_id;index"`
	Email           string          `gorm:"column:email;type:varchar(255);not null"`
	FullName        string          `gorm:"column:full_name;type:varchar(100);not null"`
	Address         string          `gorm:"column:address;type:text;not null"`
	City            string          `gorm:"column:city;type:varchar(100)"`
	State           string          `gorm:"column:state;type:varchar(100)"`
	PostalCode      string          `gorm:"column:postal_code;type:varchar(20)"`
	Country         string          `gorm:"column:country;type:varchar(100)"`
	Phone           string          `gorm:"column:phone;type:varchar(20)"`
	Status          Status          `gorm:"column:status;type:varchar(20);not null;default:pending"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:decimal(10,2);not null"`
	StripePaymentID string          `gorm:"column:stripe_payment_id;type:varchar(150)"`
	StripeSessionID string          `gorm:"column:stripe_session_id;type:varchar(150);uniqueIndex;not null"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单行，价格为下单时刻的锁定价
type OrderItem struct {
	gorm.Model
	OrderID   uint            `gorm:"column:order_id;index;not null"`
	ProductID uint            `gorm:"column:product_id;index;not null"`
	Name      string          `gorm:"column:name;type:varchar(200);not null"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Size      string          `gorm:"column:size;type:varchar(50)"`
	Color     string          `gorm:"column:color;type:varchar(50)"`
}

func (OrderItem) TableName() string { return "order_items" }

// LineTotal 行小计
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrderNo 生成订单号
func NewOrderNo() string {
	return fmt.Sprintf("ORD-%d", utils.GenID())
}
