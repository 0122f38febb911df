// Package application 订单查询服务
package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/marketplace/internal/order/domain"
)

// ItemDTO 订单行视图
type ItemDTO struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderDTO 订单视图
type OrderDTO struct {
	ID          uint            `json:"id"`
	OrderNo     string          `json:"order_no"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	Address     string          `json:"address"`
	City        string          `json:"city,omitempty"`
	State       string          `json:"state,omitempty"`
	PostalCode  string          `json:"postal_code,omitempty"`
	Country     string          `json:"country,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Status      domain.Status   `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   int64           `json:"created_at"`
	Items       []ItemDTO       `json:"items"`
}

// OrderPage 分页的订单列表
type OrderPage struct {
	Orders   []OrderDTO `json:"orders"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// OrderQueryService 订单查询服务
type OrderQueryService struct {
	orders domain.OrderRepository
}

// NewOrderQueryService 创建订单查询服务
func NewOrderQueryService(orders domain.OrderRepository) *OrderQueryService {
	return &OrderQueryService{orders: orders}
}

func toDTO(o *domain.Order) OrderDTO {
	dto := OrderDTO{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		Email:       o.Email,
		FullName:    o.FullName,
		Address:     o.Address,
		City:        o.City,
		State:       o.State,
		PostalCode:  o.PostalCode,
		Country:     o.Country,
		Phone:       o.Phone,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt.Unix(),
		Items:       make([]ItemDTO, 0, len(o.Items)),
	}
	for i := range o.Items {
		item := &o.Items[i]
		dto.Items = append(dto.Items, ItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			LineTotal: item.LineTotal(),
		})
	}
	return dto
}

// ListByUser 分页列出用户订单，新单在前
func (s *OrderQueryService) ListByUser(ctx context.Context, userID uint, page, pageSize int) (*OrderPage, error) {
	orders, total, err := s.orders.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	result := &OrderPage{
		Orders:   make([]OrderDTO, 0, len(orders)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, o := range orders {
		result.Orders = append(result.Orders, toDTO(o))
	}
	return result, nil
}

// GetForUser 获取属于该用户的订单详情；归属不符时按不存在处理
func (s *OrderQueryService) GetForUser(ctx context.Context, userID, orderID uint) (*OrderDTO, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	dto := toDTO(order)
	return &dto, nil
}
