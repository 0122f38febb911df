package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/marketplace/internal/checkout/domain"
	"github.com/wyfcoding/marketplace/pkg/cache"
)

const keyPrefix = "checkout:pending:%s"

type pendingSessionRepository struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewPendingSessionRepository 创建待确认支付会话存储
func NewPendingSessionRepository(c *cache.RedisCache, ttl time.Duration) domain.PendingSessionRepository {
	return &pendingSessionRepository{cache: c, ttl: ttl}
}

func (r *pendingSessionRepository) Stash(ctx context.Context, browserSessionID, checkoutSessionID string) error {
	return r.cache.Set(ctx, fmt.Sprintf(keyPrefix, browserSessionID), checkoutSessionID, r.ttl)
}

// Pop 原子取出并删除，保证会话 ID 单次有效
func (r *pendingSessionRepository) Pop(ctx context.Context, browserSessionID string) (string, error) {
	id, err := r.cache.GetDel(ctx, fmt.Sprintf(keyPrefix, browserSessionID))
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", domain.ErrSessionNotFound
	}
	return id, nil
}
