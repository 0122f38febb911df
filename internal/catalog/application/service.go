// Package application 商品目录的应用服务
package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/marketplace/internal/catalog/domain"
	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
)

// ProductView 面向请求者的商品视图，Price 已按类别换算
type ProductView struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
}

// ProductDetail 商品详情，附带同分类关联商品
type ProductDetail struct {
	ProductView
	Related []ProductView `json:"related"`
}

// ProductPage 分页的商品列表
type ProductPage struct {
	Items    []ProductView `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// CategoryView 分类视图
type CategoryView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

const relatedLimit = 4

// CatalogService 商品目录查询与维护
type CatalogService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(products domain.ProductRepository, categories domain.CategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

func toView(p *domain.Product, category pricing.Category) ProductView {
	v := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       pricing.Quote(p.Price, category),
		Stock:       p.Stock,
		Category:    p.Category.Slug,
	}
	for _, s := range p.Sizes {
		v.Sizes = append(v.Sizes, s.Name)
	}
	for _, c := range p.Colors {
		v.Colors = append(v.Colors, c.Name)
	}
	return v
}

// ListProducts 列出在售商品，可按分类过滤并排序
func (s *CatalogService) ListProducts(ctx context.Context, q domain.ListQuery, category pricing.Category) (*ProductPage, error) {
	products, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, err
	}
	page := &ProductPage{
		Items:    make([]ProductView, 0, len(products)),
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	for _, p := range products {
		page.Items = append(page.Items, toView(p, category))
	}
	return page, nil
}

// GetProduct 按 slug 获取商品详情和同分类关联商品
func (s *CatalogService) GetProduct(ctx context.Context, slug string, category pricing.Category) (*ProductDetail, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	detail := &ProductDetail{
		ProductView: toView(product, category),
		Related:     []ProductView{},
	}
	related, err := s.products.ListRelated(ctx, product.CategoryID, product.ID, relatedLimit)
	if err != nil {
		return nil, err
	}
	for _, p := range related {
		detail.Related = append(detail.Related, toView(p, category))
	}
	return detail, nil
}

// ListCategories 列出全部分类
func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryView{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return views, nil
}

// CreateProduct 新增商品，slug 为空时从名称生成
func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	product.EnsureSlug()
	return s.products.Save(ctx, product)
}

// CreateCategory 新增分类
func (s *CatalogService) CreateCategory(ctx context.Context, category *domain.Category) error {
	category.EnsureSlug()
	return s.categories.Save(ctx, category)
}
