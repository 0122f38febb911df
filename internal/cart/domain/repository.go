package domain

import "context"

// Repository 会话购物车仓储接口，按浏览器会话 ID 存取快照
type Repository interface {
	// Get 读取购物车；会话无购物车时返回空购物车
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}
