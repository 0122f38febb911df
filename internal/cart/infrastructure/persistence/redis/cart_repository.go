package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/marketplace/internal/cart/domain"
	"github.com/wyfcoding/marketplace/pkg/cache"
)

type cartRepository struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewCartRepository 创建 Redis 会话购物车仓储
func NewCartRepository(c *cache.RedisCache, ttl time.Duration) domain.Repository {
	return &cartRepository{cache: c, ttl: ttl}
}

func (r *cartRepository) key(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (r *cartRepository) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart := domain.New()
	if err := r.cache.GetJSON(ctx, r.key(sessionID), cart); err != nil {
		return nil, err
	}
	if cart.Entries == nil {
		cart.Entries = map[string]domain.Entry{}
	}
	return cart, nil
}

func (r *cartRepository) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	return r.cache.SetJSON(ctx, r.key(sessionID), cart, r.ttl)
}

func (r *cartRepository) Delete(ctx context.Context, sessionID string) error {
	return r.cache.Delete(ctx, r.key(sessionID))
}
