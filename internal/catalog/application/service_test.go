package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wyfcoding/marketplace/internal/catalog/domain"
	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
)

type fakeProductRepo struct {
	products []*domain.Product
}

func (r *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.products = append(r.products, p)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uint) (*domain.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug && p.Available {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *fakeProductRepo) List(_ context.Context, q domain.ListQuery) ([]*domain.Product, int64, error) {
	var out []*domain.Product
	for _, p := range r.products {
		if !p.Available {
			continue
		}
		if q.CategorySlug != "" && p.Category.Slug != q.CategorySlug {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ListRelated(_ context.Context, categoryID, excludeID uint, limit int) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.products {
		if p.CategoryID == categoryID && p.ID != excludeID && p.Available && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id uint, qty int) error {
	p, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	if p.Stock < qty {
		return domain.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *fakeProductRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCategoryRepo struct {
	categories []*domain.Category
}

func (r *fakeCategoryRepo) Save(_ context.Context, c *domain.Category) error {
	r.categories = append(r.categories, c)
	return nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	return r.categories, nil
}

func mustPrice(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func seedCatalog() (*fakeProductRepo, *fakeCategoryRepo) {
	shirts := domain.Category{Model: gorm.Model{ID: 1}, Name: "Shirts", Slug: "shirts"}
	shoes := domain.Category{Model: gorm.Model{ID: 2}, Name: "Shoes", Slug: "shoes"}
	products := &fakeProductRepo{products: []*domain.Product{
		{Model: gorm.Model{ID: 1}, Name: "Blue Shirt", Slug: "blue-shirt", Price: mustPrice("50.00"), Stock: 5, Available: true, CategoryID: 1, Category: shirts},
		{Model: gorm.Model{ID: 2}, Name: "Red Shirt", Slug: "red-shirt", Price: mustPrice("40.00"), Stock: 3, Available: true, CategoryID: 1, Category: shirts},
		{Model: gorm.Model{ID: 3}, Name: "Sneakers", Slug: "sneakers", Price: mustPrice("90.00"), Stock: 2, Available: true, CategoryID: 2, Category: shoes},
		{Model: gorm.Model{ID: 4}, Name: "Retired", Slug: "retired", Price: mustPrice("10.00"), Stock: 0, Available: false, CategoryID: 1, Category: shirts},
	}}
	categories := &fakeCategoryRepo{categories: []*domain.Category{&shirts, &shoes}}
	return products, categories
}

func TestCatalogService_ListProductsPricesByCategory(t *testing.T) {
	products, categories := seedCatalog()
	svc := NewCatalogService(products, categories)
	ctx := context.Background()

	page, err := svc.ListProducts(ctx, domain.ListQuery{CategorySlug: "shirts"}, pricing.CategoryGuest)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	// 访客价上浮 10%
	assert.True(t, page.Items[0].Price.Equal(mustPrice("55.00")), "got %s", page.Items[0].Price)

	page, err = svc.ListProducts(ctx, domain.ListQuery{CategorySlug: "shirts"}, pricing.CategoryBusiness)
	require.NoError(t, err)
	assert.True(t, page.Items[0].Price.Equal(mustPrice("37.50")), "got %s", page.Items[0].Price)
}

func TestCatalogService_GetProductWithRelated(t *testing.T) {
	products, categories := seedCatalog()
	svc := NewCatalogService(products, categories)

	detail, err := svc.GetProduct(context.Background(), "blue-shirt", pricing.CategoryNormal)
	require.NoError(t, err)
	assert.Equal(t, "Blue Shirt", detail.Name)
	assert.True(t, detail.Price.Equal(mustPrice("50.00")))
	// 同分类在售商品，不含自身和已下架商品
	require.Len(t, detail.Related, 1)
	assert.Equal(t, "red-shirt", detail.Related[0].Slug)
}

func TestCatalogService_GetProductNotFound(t *testing.T) {
	products, categories := seedCatalog()
	svc := NewCatalogService(products, categories)

	_, err := svc.GetProduct(context.Background(), "missing", pricing.CategoryNormal)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogService_CreateProductGeneratesSlug(t *testing.T) {
	products, categories := seedCatalog()
	svc := NewCatalogService(products, categories)

	p := &domain.Product{Name: "Winter Coat 2.0", Price: mustPrice("120.00"), CategoryID: 1, Available: true}
	require.NoError(t, svc.CreateProduct(context.Background(), p))
	assert.Equal(t, "winter-coat-2-0", p.Slug)
}
