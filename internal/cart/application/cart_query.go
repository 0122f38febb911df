package application

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	cartdomain "github.com/wyfcoding/marketplace/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/marketplace/internal/catalog/domain"
	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
	"github.com/wyfcoding/marketplace/pkg/logger"
)

// CartQueryService 购物车查询服务，读取时顺带自愈
type CartQueryService struct {
	carts    cartdomain.Repository
	products catalogdomain.ProductRepository
}

// NewCartQueryService 创建购物车查询服务
func NewCartQueryService(carts cartdomain.Repository, products catalogdomain.ProductRepository) *CartQueryService {
	return &CartQueryService{carts: carts, products: products}
}

// GetCart 返回购物车视图。引用已删除商品的条目会被丢弃并回写存储。
func (s *CartQueryService) GetCart(ctx context.Context, sessionID string, category pricing.Category) (*View, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, cart.Len())
	for k := range cart.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	view := &View{
		Items:    make([]ItemView, 0, len(keys)),
		Total:    decimal.Zero,
		Category: category,
	}

	for _, key := range keys {
		entry := cart.Entries[key]
		product, err := s.products.GetByID(ctx, entry.ProductID)
		if err != nil {
			if errors.Is(err, catalogdomain.ErrProductNotFound) {
				delete(cart.Entries, key)
				cart.MarkHealed()
				continue
			}
			return nil, err
		}

		unit := pricing.Quote(product.Price, category)
		line := unit.Mul(decimal.NewFromInt(int64(entry.Quantity)))

		view.Items = append(view.Items, ItemView{
			Key:       key,
			ProductID: entry.ProductID,
			Name:      product.Name,
			Slug:      product.Slug,
			Quantity:  entry.Quantity,
			Size:      entry.Size,
			Color:     entry.Color,
			UnitPrice: unit,
			LineTotal: line,
		})
		view.Total = view.Total.Add(line)
	}

	if cart.Healed() {
		if err := s.carts.Save(ctx, sessionID, cart); err != nil {
			// 回写失败不影响本次读取，下次读取会再次自愈
			logger.Warn(ctx, "failed to persist healed cart", "session_id", sessionID, "error", err)
		}
	}

	return view, nil
}
