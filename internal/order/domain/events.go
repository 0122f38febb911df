package domain

import "context"

// TopicOrderPlaced 订单落库后发布的集成事件主题
const TopicOrderPlaced = "order.placed"

// OrderPlacedEvent 订单创建集成事件
type OrderPlacedEvent struct {
	OrderNo     string `json:"order_no"`
	UserID      *uint  `json:"user_id,omitempty"`
	Email       string `json:"email"`
	TotalAmount string `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
	SessionID   string `json:"session_id"`
}

// EventPublisher 集成事件发布端口。PublishInTx 通过 Outbox 与业务事务共同提交。
type EventPublisher interface {
	PublishInTx(ctx context.Context, tx any, topic, key string, event any) error
}
