package domain

import "context"

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	// GetByID 按 ID 获取订单及其订单行；不存在时返回 ErrOrderNotFound
	GetByID(ctx context.Context, id uint) (*Order, error)
	// GetBySessionID 按支付会话 ID 获取订单；不存在时返回 ErrOrderNotFound
	GetBySessionID(ctx context.Context, sessionID string) (*Order, error)
	// ListByUser 按用户分页列出订单，新单在前
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
	// WithTx 在单个事务内执行 fn，事务句柄通过 context 传递
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
