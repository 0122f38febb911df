package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/marketplace/internal/catalog/domain"
	"github.com/wyfcoding/marketplace/pkg/contextx"
	"gorm.io/gorm"
)

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

func (r *productRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	product.EnsureSlug()
	return r.getDB(ctx).WithContext(ctx).Save(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Category").Preload("Sizes").Preload("Colors").
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var product domain.Product
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Category").Preload("Sizes").Preload("Colors").
		Where("slug = ? AND available = ?", slug, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.Product, int64, error) {
	db := r.getDB(ctx).WithContext(ctx).
		Model(&domain.Product{}).
		Where("available = ?", true)

	if q.CategorySlug != "" {
		db = db.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", q.CategorySlug)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch q.Sort {
	case domain.SortPriceLowHigh:
		db = db.Order("products.price ASC")
	case domain.SortPriceHighLow:
		db = db.Order("products.price DESC")
	case domain.SortNameAZ:
		db = db.Order("products.name ASC")
	default:
		db = db.Order("products.created_at DESC")
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = 12
	}

	var products []*domain.Product
	err := db.Preload("Category").
		Offset((page - 1) * size).
		Limit(size).
		Find(&products).Error
	return products, total, err
}

func (r *productRepository) ListRelated(ctx context.Context, categoryID, excludeID uint, limit int) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.getDB(ctx).WithContext(ctx).
		Where("category_id = ? AND id <> ? AND available = ?", categoryID, excludeID, true).
		Limit(limit).
		Find(&products).Error
	return products, err
}

// DecrementStock 条件扣减：stock >= qty 时原子减少，否则回报库存不足
func (r *productRepository) DecrementStock(ctx context.Context, id uint, qty int) error {
	res := r.getDB(ctx).WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.getDB(ctx).WithContext(ctx).
			Model(&domain.Product{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrProductNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

type categoryRepository struct{ db *gorm.DB }

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Save(ctx context.Context, category *domain.Category) error {
	category.EnsureSlug()
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}
