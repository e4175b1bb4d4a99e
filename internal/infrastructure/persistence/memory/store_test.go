package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/mall/internal/domain/cart"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/internal/domain/product"
)

func seedProduct(t *testing.T, repo product.Repository, stock int) *product.Product {
	t.Helper()
	p, err := product.NewProduct("商品", decimal.RequireFromString("9.90"), stock)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestStore_TransactionRollsBack(t *testing.T) {
	store := NewStore()
	products := NewProductRepository(store)
	p := seedProduct(t, products, 5)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(ctx context.Context) error {
		ok, err := products.CompareAndSwapStock(ctx, p.ID, 1, 2)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stock, err := products.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Stock{ProductID: p.ID, Quantity: 5, Version: 1}, stock)
}

func TestStore_TransactionRollsBackOnPanic(t *testing.T) {
	store := NewStore()
	products := NewProductRepository(store)
	p := seedProduct(t, products, 5)

	assert.Panics(t, func() {
		_ = store.Transaction(context.Background(), func(ctx context.Context) error {
			_, _ = products.CompareAndSwapStock(ctx, p.ID, 1, 0)
			panic("oops")
		})
	})

	stock, err := products.GetStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stock.Quantity)
}

func TestStore_NestedTransactionActsAsSavepoint(t *testing.T) {
	store := NewStore()
	products := NewProductRepository(store)
	p := seedProduct(t, products, 5)

	err := store.Transaction(context.Background(), func(ctx context.Context) error {
		_, err := products.CompareAndSwapStock(ctx, p.ID, 1, 4)
		require.NoError(t, err)

		inner := store.Transaction(ctx, func(ctx context.Context) error {
			_, _ = products.CompareAndSwapStock(ctx, p.ID, 2, 0)
			return errors.New("inner failed")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	stock, err := products.GetStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stock.Quantity, "外层修改提交，内层修改回滚")
	assert.Equal(t, int64(2), stock.Version)
}

func TestStore_LockHonoursContext(t *testing.T) {
	store := NewStore()
	products := NewProductRepository(store)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = store.Transaction(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := products.GetStock(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProductRepository_CompareAndSwapStock(t *testing.T) {
	store := NewStore()
	products := NewProductRepository(store)
	p := seedProduct(t, products, 3)
	ctx := context.Background()

	ok, err := products.CompareAndSwapStock(ctx, p.ID, 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = products.CompareAndSwapStock(ctx, p.ID, 1, 0)
	require.NoError(t, err)
	assert.False(t, ok, "旧版本号不能写入")

	_, err = products.CompareAndSwapStock(ctx, p.ID, 2, -1)
	assert.ErrorIs(t, err, product.ErrInvalidStock)

	_, err = products.GetStock(ctx, 99)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestProductRepository_List(t *testing.T) {
	store := NewStore()
	products := NewProductRepository(store)
	ctx := context.Background()
	for _, item := range []struct {
		name  string
		price string
	}{{"Go语言", "59.00"}, {"Rust", "79.00"}, {"Go并发", "39.00"}} {
		p, err := product.NewProduct(item.name, decimal.RequireFromString(item.price), 1)
		require.NoError(t, err)
		require.NoError(t, products.Create(ctx, p))
	}

	list, total, err := products.List(ctx, product.ListParams{Page: 1, PageSize: 10, Keyword: "go", SortBy: "price_asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Go并发", list[0].Name)

	list, total, err = products.List(ctx, product.ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 1)
}

func TestCartRepository_SaveAndClear(t *testing.T) {
	store := NewStore()
	carts := NewCartRepository(store)
	ctx := context.Background()

	c := cart.NewCart(7)
	require.NoError(t, carts.Create(ctx, c))
	assert.Error(t, carts.Create(ctx, cart.NewCart(7)), "每个用户只有一个购物车")

	require.NoError(t, c.AddItem(2, 3))
	require.NoError(t, c.AddItem(1, 1))
	require.NoError(t, carts.Save(ctx, c))

	loaded, err := carts.FindByUserID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []cart.Item{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 3}}, loaded.Items())
	assert.Equal(t, 4, store.state.carts[c.ID].TotalItems)

	require.NoError(t, carts.Clear(ctx, c.ID))
	require.NoError(t, carts.Clear(ctx, c.ID))
	loaded, err = carts.FindByUserID(ctx, 7)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
	assert.Equal(t, 0, store.state.carts[c.ID].TotalItems)

	_, err = carts.FindByUserID(ctx, 8)
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}

func TestCartRepository_SaveKeepsLineCreatedAt(t *testing.T) {
	store := NewStore()
	clock := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	carts := NewCartRepository(store)
	ctx := context.Background()

	c := cart.NewCart(7)
	require.NoError(t, carts.Create(ctx, c))
	require.NoError(t, c.AddItem(1, 1))
	require.NoError(t, c.AddItem(2, 1))
	require.NoError(t, carts.Save(ctx, c))
	inserted := clock

	clock = clock.Add(time.Hour)
	require.NoError(t, c.SetQuantity(1, 5))
	require.NoError(t, c.RemoveItem(2))
	require.NoError(t, c.AddItem(3, 2))
	require.NoError(t, carts.Save(ctx, c))

	lines := store.state.carts[c.ID].Items
	require.Len(t, lines, 2)
	assert.Equal(t, 5, lines[1].Quantity)
	assert.Equal(t, inserted, lines[1].CreatedAt, "改数量不改created_at")
	assert.Equal(t, clock, lines[1].UpdatedAt)
	assert.Equal(t, clock, lines[3].CreatedAt)
	_, ok := lines[2]
	assert.False(t, ok)
}

func TestOrderRepository(t *testing.T) {
	store := NewStore()
	orders := NewOrderRepository(store)
	ctx := context.Background()

	newOrder := func(no string) *order.Order {
		return order.NewOrder(no, 1, 1, []order.OrderItem{{ProductID: 1, Quantity: 1,
			ProductPrice: decimal.NewFromInt(5), Amount: decimal.NewFromInt(5)}}, decimal.NewFromInt(5))
	}

	o := newOrder("ORD1")
	require.NoError(t, orders.Create(ctx, o))
	assert.NotZero(t, o.ID)
	assert.Equal(t, o.ID, o.Items[0].OrderID)
	assert.ErrorIs(t, orders.Create(ctx, newOrder("ORD1")), order.ErrDuplicateOrderNo)

	exists, err := orders.ExistsByOrderNo(ctx, "ORD1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, o.Pay())
	require.NoError(t, o.UpdateRemark("尽快发货"))
	require.NoError(t, orders.Update(ctx, o))

	loaded, err := orders.FindByOrderNo(ctx, "ORD1")
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPaid, loaded.Status)
	assert.Equal(t, "尽快发货", loaded.Remark)

	require.NoError(t, orders.Create(ctx, newOrder("ORD2")))
	list, total, err := orders.ListByUserID(ctx, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "ORD2", list[0].OrderNo)

	_, err = orders.FindByOrderNo(ctx, "nope")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
