package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	cartdomain "github.com/wyfcoding/marketplace/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/marketplace/internal/catalog/domain"
	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
	"github.com/wyfcoding/marketplace/pkg/metrics"
)

type fakeCartRepo struct {
	store map[string][]byte
	saves int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{store: make(map[string][]byte)}
}

func (r *fakeCartRepo) Get(_ context.Context, sessionID string) (*cartdomain.Cart, error) {
	cart := cartdomain.New()
	raw, ok := r.store[sessionID]
	if !ok {
		return cart, nil
	}
	if err := json.Unmarshal(raw, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *fakeCartRepo) Save(_ context.Context, sessionID string, cart *cartdomain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	r.store[sessionID] = raw
	r.saves++
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, sessionID string) error {
	delete(r.store, sessionID)
	return nil
}

type fakeProductRepo struct {
	products map[uint]*catalogdomain.Product
}

func newFakeProductRepo(products ...*catalogdomain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uint]*catalogdomain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalogdomain.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*catalogdomain.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, catalogdomain.ErrProductNotFound
}

func (r *fakeProductRepo) List(_ context.Context, _ catalogdomain.ListQuery) ([]*catalogdomain.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) ListRelated(_ context.Context, _, _ uint, _ int) ([]*catalogdomain.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id uint, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	if p.Stock < qty {
		return catalogdomain.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *fakeProductRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testProduct(id uint, name string, p string) *catalogdomain.Product {
	return &catalogdomain.Product{
		Model:     gorm.Model{ID: id},
		Name:      name,
		Slug:      catalogdomain.Slugify(name),
		Price:     price(p),
		Stock:     10,
		Available: true,
		Sizes:     []catalogdomain.Size{{Name: "M"}, {Name: "L"}},
		Colors:    []catalogdomain.Color{{Name: "blue"}},
	}
}

func TestCartCommandService_AddItem(t *testing.T) {
	ctx := context.Background()
	shirt := testProduct(1, "Blue Shirt", "19.99")
	carts := newFakeCartRepo()
	svc := NewCartCommandService(carts, newFakeProductRepo(shirt), metrics.New("cart_test"))

	key, err := svc.AddItem(ctx, "sess-1", 1, 2, "M", "blue")
	require.NoError(t, err)
	assert.Equal(t, "1_M_blue", key)

	// 相同组合键累加数量
	_, err = svc.AddItem(ctx, "sess-1", 1, 3, "M", "blue")
	require.NoError(t, err)

	cart, err := carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Entries[key].Quantity)

	// 不同尺码是独立条目
	_, err = svc.AddItem(ctx, "sess-1", 1, 1, "L", "blue")
	require.NoError(t, err)
	cart, _ = carts.Get(ctx, "sess-1")
	assert.Equal(t, 2, cart.Len())
}

func TestCartCommandService_AddItemRejectsUnavailable(t *testing.T) {
	ctx := context.Background()
	hidden := testProduct(2, "Hidden", "5.00")
	hidden.Available = false
	svc := NewCartCommandService(newFakeCartRepo(), newFakeProductRepo(hidden), metrics.New("cart_test"))

	_, err := svc.AddItem(ctx, "sess-1", 2, 1, "", "")
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddItem(ctx, "sess-1", 99, 1, "", "")
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCartCommandService_AddItemRejectsUnknownVariant(t *testing.T) {
	ctx := context.Background()
	shirt := testProduct(1, "Shirt", "10.00")
	svc := NewCartCommandService(newFakeCartRepo(), newFakeProductRepo(shirt), metrics.New("cart_test"))

	_, err := svc.AddItem(ctx, "sess-1", 1, 1, "XXL", "")
	assert.ErrorIs(t, err, ErrInvalidVariant)

	_, err = svc.AddItem(ctx, "sess-1", 1, 1, "M", "pink")
	assert.ErrorIs(t, err, ErrInvalidVariant)

	// 未选规格不校验
	_, err = svc.AddItem(ctx, "sess-1", 1, 1, "", "")
	require.NoError(t, err)
}

func TestCartCommandService_AddItemRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	svc := NewCartCommandService(newFakeCartRepo(), newFakeProductRepo(testProduct(1, "Shirt", "10.00")), metrics.New("cart_test"))

	_, err := svc.AddItem(ctx, "sess-1", 1, 0, "", "")
	assert.ErrorIs(t, err, cartdomain.ErrInvalidQuantity)
}

func TestCartCommandService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	carts := newFakeCartRepo()
	svc := NewCartCommandService(carts, newFakeProductRepo(testProduct(1, "Shirt", "10.00")), metrics.New("cart_test"))

	key, err := svc.AddItem(ctx, "sess-1", 1, 2, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateItem(ctx, "sess-1", key, 7))
	cart, _ := carts.Get(ctx, "sess-1")
	assert.Equal(t, 7, cart.Entries[key].Quantity)

	// 数量归零等同删除
	require.NoError(t, svc.UpdateItem(ctx, "sess-1", key, 0))
	cart, _ = carts.Get(ctx, "sess-1")
	assert.True(t, cart.IsEmpty())

	// 不存在的键是空操作，不回写
	saves := carts.saves
	require.NoError(t, svc.UpdateItem(ctx, "sess-1", "404_", 3))
	require.NoError(t, svc.RemoveItem(ctx, "sess-1", "404_"))
	assert.Equal(t, saves, carts.saves)
}

func TestCartQueryService_GetCartPricesByCategory(t *testing.T) {
	ctx := context.Background()
	shirt := testProduct(1, "Blue Shirt", "50.00")
	carts := newFakeCartRepo()
	cmd := NewCartCommandService(carts, newFakeProductRepo(shirt), metrics.New("cart_test"))
	qry := NewCartQueryService(carts, newFakeProductRepo(shirt))

	_, err := cmd.AddItem(ctx, "sess-1", 1, 2, "", "")
	require.NoError(t, err)

	view, err := qry.GetCart(ctx, "sess-1", pricing.CategoryGuest)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].UnitPrice.Equal(price("55.00")), "got %s", view.Items[0].UnitPrice)
	assert.True(t, view.Total.Equal(price("110.00")), "got %s", view.Total)

	view, err = qry.GetCart(ctx, "sess-1", pricing.CategoryBusiness)
	require.NoError(t, err)
	assert.True(t, view.Total.Equal(price("75.00")), "got %s", view.Total)
}

func TestCartQueryService_DropsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	shirt := testProduct(1, "Shirt", "10.00")
	gone := testProduct(2, "Gone", "5.00")
	products := newFakeProductRepo(shirt, gone)
	carts := newFakeCartRepo()
	cmd := NewCartCommandService(carts, products, metrics.New("cart_test"))
	qry := NewCartQueryService(carts, products)

	_, err := cmd.AddItem(ctx, "sess-1", 1, 1, "", "")
	require.NoError(t, err)
	goneKey, err := cmd.AddItem(ctx, "sess-1", 2, 1, "", "")
	require.NoError(t, err)

	delete(products.products, 2)

	view, err := qry.GetCart(ctx, "sess-1", pricing.CategoryNormal)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, uint(1), view.Items[0].ProductID)

	// 已回写，失效条目不再出现在存储中
	cart, err := carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	_, ok := cart.Entries[goneKey]
	assert.False(t, ok)
	assert.Equal(t, 1, cart.Len())
}

func TestCartQueryService_HealsLegacyEntries(t *testing.T) {
	ctx := context.Background()
	shirt := testProduct(7, "Shirt", "10.00")
	carts := newFakeCartRepo()
	// 旧格式：商品 ID 直接映射为数量
	carts.store["sess-legacy"] = []byte(`{"7": 3, "junk": "x"}`)
	qry := NewCartQueryService(carts, newFakeProductRepo(shirt))

	view, err := qry.GetCart(ctx, "sess-legacy", pricing.CategoryNormal)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, uint(7), view.Items[0].ProductID)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.True(t, view.Total.Equal(price("30.00")))

	// 迁移结果已回写为结构化格式
	cart, err := carts.Get(ctx, "sess-legacy")
	require.NoError(t, err)
	entry, ok := cart.Entries[cartdomain.EntryKey(7, "", "")]
	require.True(t, ok)
	assert.Equal(t, 3, entry.Quantity)
	assert.False(t, cart.Healed())
}

func TestCartCommandService_Clear(t *testing.T) {
	ctx := context.Background()
	carts := newFakeCartRepo()
	svc := NewCartCommandService(carts, newFakeProductRepo(testProduct(1, "Shirt", "10.00")), metrics.New("cart_test"))

	_, err := svc.AddItem(ctx, "sess-1", 1, 1, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "sess-1"))

	cart, err := carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}
