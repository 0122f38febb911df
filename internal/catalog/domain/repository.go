package domain

import "context"

// ProductSort 商品列表排序方式
type ProductSort string

const (
	SortLatest       ProductSort = "latest"
	SortPriceLowHigh ProductSort = "price_low_to_high"
	SortPriceHighLow ProductSort = "price_high_to_low"
	SortNameAZ       ProductSort = "name_a_to_z"
)

// ListQuery 商品列表查询条件
type ListQuery struct {
	CategorySlug string
	Sort         ProductSort
	Page         int
	PageSize     int
}

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	// GetByID 按 ID 获取商品；不存在时返回 ErrProductNotFound
	GetByID(ctx context.Context, id uint) (*Product, error)
	// GetBySlug 按 slug 获取在售商品；不存在时返回 ErrProductNotFound
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	// List 列出在售商品
	List(ctx context.Context, q ListQuery) ([]*Product, int64, error)
	// ListRelated 同分类的关联商品
	ListRelated(ctx context.Context, categoryID, excludeID uint, limit int) ([]*Product, error)
	// DecrementStock 条件扣减库存；stock < qty 时返回 ErrInsufficientStock
	DecrementStock(ctx context.Context, id uint, qty int) error
	// WithTx 在单个事务内执行 fn，事务句柄通过 context 传递
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
}
