// Package domain 包含商品目录的领域模型
package domain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock 库存不足，条件扣减失败
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Category 商品分类
type Category struct {
	gorm.Model
	Name        string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	Slug        string `gorm:"column:slug;type:varchar(100);uniqueIndex;not null"`
	Description string `gorm:"column:description;type:text"`
}

func (Category) TableName() string { return "categories" }

// Size 尺码选项
type Size struct {
	gorm.Model
	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null"`
}

func (Size) TableName() string { return "sizes" }

// Color 颜色选项
type Color struct {
	gorm.Model
	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null"`
}

func (Color) TableName() string { return "colors" }

// Product 商品实体
// Price 为基础价格，面向请求者的实际价格由 pricing 模块按类别换算
type Product struct {
	gorm.Model
	Name        string          `gorm:"column:name;type:varchar(200);not null"`
	Slug        string          `gorm:"column:slug;type:varchar(200);uniqueIndex;not null"`
	Description string          `gorm:"column:description;type:text"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	Available   bool            `gorm:"column:available;not null;default:true"`
	CategoryID  uint            `gorm:"column:category_id;index;not null"`
	Category    Category        `gorm:"foreignKey:CategoryID"`
	Sizes       []Size          `gorm:"many2many:product_sizes"`
	Colors      []Color         `gorm:"many2many:product_colors"`
}

func (Product) TableName() string { return "products" }

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 生成 URL slug
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// EnsureSlug 在 slug 为空时从名称生成
func (p *Product) EnsureSlug() {
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
}

// EnsureSlug 在 slug 为空时从名称生成
func (c *Category) EnsureSlug() {
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
}

// HasSize 商品是否提供该尺码
func (p *Product) HasSize(name string) bool {
	for _, s := range p.Sizes {
		if s.Name == name {
			return true
		}
	}
	return false
}

// HasColor 商品是否提供该颜色
func (p *Product) HasColor(name string) bool {
	for _, c := range p.Colors {
		if c.Name == name {
			return true
		}
	}
	return false
}
