package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wyfcoding/marketplace/internal/order/domain"
)

type fakeOrderRepo struct {
	orders []*domain.Order
}

func (r *fakeOrderRepo) Save(_ context.Context, o *domain.Order) error {
	r.orders = append(r.orders, o)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uint) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) GetBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.StripeSessionID == sessionID {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uint, page, pageSize int) ([]*domain.Order, int64, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	total := int64(len(out))
	start := (page - 1) * pageSize
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeOrderRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func mustPrice(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func seedOrders() *fakeOrderRepo {
	user1 := uint(1)
	user2 := uint(2)
	return &fakeOrderRepo{orders: []*domain.Order{
		{
			Model: gorm.Model{ID: 1}, OrderNo: "ORD-1", UserID: &user1,
			Email: "a@example.com", Status: domain.StatusProcessing,
			TotalAmount:     mustPrice("110.00"),
			StripeSessionID: "cs_1",
			Items: []domain.OrderItem{
				{ProductID: 1, Name: "Blue Shirt", Price: mustPrice("55.00"), Quantity: 2},
			},
		},
		{
			Model: gorm.Model{ID: 2}, OrderNo: "ORD-2", UserID: &user2,
			Email: "b@example.com", Status: domain.StatusShipped,
			TotalAmount:     mustPrice("42.00"),
			StripeSessionID: "cs_2",
		},
	}}
}

func TestOrderQueryService_ListByUser(t *testing.T) {
	svc := NewOrderQueryService(seedOrders())

	page, err := svc.ListByUser(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "ORD-1", page.Orders[0].OrderNo)
	require.Len(t, page.Orders[0].Items, 1)
	assert.True(t, page.Orders[0].Items[0].LineTotal.Equal(mustPrice("110.00")))
}

func TestOrderQueryService_GetForUser(t *testing.T) {
	svc := NewOrderQueryService(seedOrders())
	ctx := context.Background()

	order, err := svc.GetForUser(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", order.OrderNo)

	// 其他用户的订单按不存在处理
	_, err = svc.GetForUser(ctx, 1, 2)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.GetForUser(ctx, 1, 99)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
