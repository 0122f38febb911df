package application

import (
	"context"
	"errors"

	cartdomain "github.com/wyfcoding/marketplace/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/marketplace/internal/catalog/domain"
	"github.com/wyfcoding/marketplace/pkg/logger"
	"github.com/wyfcoding/marketplace/pkg/metrics"
)

var (
	// ErrProductUnavailable 商品不存在或已下架
	ErrProductUnavailable = errors.New("product is not available")
	// ErrInvalidVariant 商品未提供所选尺码或颜色
	ErrInvalidVariant = errors.New("variant not offered for this product")
)

// CartCommandService 购物车命令服务
type CartCommandService struct {
	carts    cartdomain.Repository
	products catalogdomain.ProductRepository
	metrics  *metrics.Metrics
}

// NewCartCommandService 创建购物车命令服务
func NewCartCommandService(carts cartdomain.Repository, products catalogdomain.ProductRepository, m *metrics.Metrics) *CartCommandService {
	return &CartCommandService{carts: carts, products: products, metrics: m}
}

// AddItem 将商品合并进购物车并返回条目键
func (s *CartCommandService) AddItem(ctx context.Context, sessionID string, productID uint, qty int, size, color string) (string, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrProductNotFound) {
			return "", ErrProductUnavailable
		}
		return "", err
	}
	if !product.Available {
		return "", ErrProductUnavailable
	}
	if size != "" && !product.HasSize(size) {
		return "", ErrInvalidVariant
	}
	if color != "" && !product.HasColor(color) {
		return "", ErrInvalidVariant
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	key, err := cart.Add(productID, qty, size, color)
	if err != nil {
		return "", err
	}

	if err := s.carts.Save(ctx, sessionID, cart); err != nil {
		return "", err
	}

	s.metrics.CartOperationsTotal.Inc()
	logger.Debug(ctx, "cart item added",
		"session_id", sessionID,
		"key", key,
		"quantity", qty,
	)
	return key, nil
}

// UpdateItem 设置条目数量；qty <= 0 时删除该条目。条目不存在时为空操作。
func (s *CartCommandService) UpdateItem(ctx context.Context, sessionID, key string, qty int) error {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !cart.Update(key, qty) {
		return nil
	}
	s.metrics.CartOperationsTotal.Inc()
	return s.carts.Save(ctx, sessionID, cart)
}

// RemoveItem 删除条目。条目不存在时为空操作。
func (s *CartCommandService) RemoveItem(ctx context.Context, sessionID, key string) error {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !cart.Remove(key) {
		return nil
	}
	s.metrics.CartOperationsTotal.Inc()
	return s.carts.Save(ctx, sessionID, cart)
}

// Clear 清空会话购物车
func (s *CartCommandService) Clear(ctx context.Context, sessionID string) error {
	s.metrics.CartOperationsTotal.Inc()
	return s.carts.Delete(ctx, sessionID)
}
