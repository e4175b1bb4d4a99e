//go:build integration

package checkout

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcart "github.com/xiebiao/mall/internal/application/cart"
	"github.com/xiebiao/mall/internal/domain/address"
	"github.com/xiebiao/mall/internal/domain/cart"
	"github.com/xiebiao/mall/internal/domain/idempotency"
	"github.com/xiebiao/mall/internal/domain/inventory"
	"github.com/xiebiao/mall/internal/domain/product"
	"github.com/xiebiao/mall/internal/infrastructure/config"
	"github.com/xiebiao/mall/internal/infrastructure/persistence"
	"github.com/xiebiao/mall/pkg/mq"
)

// 对真实数据库运行：
//
//	MALL_DATABASE_DRIVER=mysql MALL_DATABASE_PASSWORD=... go test -tags integration ./internal/application/checkout/
func integrationBackend(t *testing.T) *persistence.Backend {
	t.Helper()
	cfg, err := config.LoadFrom(os.Getenv("MALL_TEST_CONFIG"))
	require.NoError(t, err)
	if cfg.Database.Driver == "memory" {
		t.Skip("database.driver=memory，跳过集成测试")
	}

	b, err := persistence.NewBackend(cfg.Database, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// 每次运行使用不同的用户ID段，避免和历史数据冲突
func userBase() uint {
	return uint(time.Now().UnixNano()%1_000_000) * 1000
}

func prepareBuyer(t *testing.T, b *persistence.Backend, userID, productID uint, qty int) uint {
	t.Helper()
	ctx := context.Background()

	c := cart.NewCart(userID)
	require.NoError(t, b.Carts.Create(ctx, c))
	require.NoError(t, c.AddItem(productID, qty))
	require.NoError(t, b.Carts.Save(ctx, c))

	a, err := address.NewAddress(userID, "压测用户", "13800138000", fmt.Sprintf("测试路%d号", userID))
	require.NoError(t, err)
	require.NoError(t, b.Addresses.Create(ctx, a))
	return a.ID
}

func TestIntegration_ConcurrentCheckoutNeverOversells(t *testing.T) {
	b := integrationBackend(t)
	ctx := context.Background()

	p, err := product.NewProduct("秒杀商品", decimal.RequireFromString("9.90"), 10)
	require.NoError(t, err)
	require.NoError(t, b.Products.Create(ctx, p))

	ledger := inventory.NewLedger(b.Products, inventory.WithMaxRetries(20))
	guard := idempotency.NewGuard(b.Idempotency, time.Hour, 10*time.Second)
	a := NewAssembler(b.Tx, b.Carts, b.Addresses, b.Products, b.Orders, ledger, guard, mq.NopPublisher{},
		Config{Timeout: 10 * time.Second}, zerolog.Nop())

	const buyers = 30
	base := userBase()
	addrs := make([]uint, buyers)
	for i := 0; i < buyers; i++ {
		addrs[i] = prepareBuyer(t, b, base+uint(i), p.ID, 1)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := a.Checkout(ctx, Request{UserID: base + uint(i), AddressID: addrs[i]})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, inventory.ErrOutOfStock)
			rejected++
		}(i)
	}
	wg.Wait()

	stock, err := b.Products.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, buyers-10, rejected)
	assert.Equal(t, 0, stock.Quantity)
}

func TestIntegration_SameTokenCreatesOneOrder(t *testing.T) {
	b := integrationBackend(t)
	ctx := context.Background()

	p, err := product.NewProduct("幂等测试商品", decimal.RequireFromString("10.00"), 100)
	require.NoError(t, err)
	require.NoError(t, b.Products.Create(ctx, p))

	ledger := inventory.NewLedger(b.Products)
	guard := idempotency.NewGuard(b.Idempotency, time.Hour, 10*time.Second)
	a := NewAssembler(b.Tx, b.Carts, b.Addresses, b.Products, b.Orders, ledger, guard, mq.NopPublisher{},
		Config{Timeout: 10 * time.Second}, zerolog.Nop())

	userID := userBase() + 999
	addrID := prepareBuyer(t, b, userID, p.ID, 2)
	token := fmt.Sprintf("it-%d", userID)

	const attempts = 5
	results := make([]*Result, attempts)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = a.Checkout(ctx, Request{UserID: userID, AddressID: addrID, Token: token})
		}(i)
	}
	wg.Wait()

	orderNos := map[string]bool{}
	for i := range results {
		if errs[i] != nil {
			// 首个请求尚未提交时，后来者得到InFlight
			assert.ErrorIs(t, errs[i], idempotency.ErrInFlight)
			continue
		}
		orderNos[results[i].OrderNo] = true
	}
	assert.Len(t, orderNos, 1)

	_, total, err := b.Orders.ListByUserID(ctx, userID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	stock, err := b.Products.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 98, stock.Quantity)
}

// 结账与加购并发：每一行要么进了订单，要么还留在购物车里
func TestIntegration_AddDuringCheckoutLosesNoLine(t *testing.T) {
	b := integrationBackend(t)
	ctx := context.Background()

	newProduct := func(name string) uint {
		p, err := product.NewProduct(name, decimal.RequireFromString("1.00"), 100)
		require.NoError(t, err)
		require.NoError(t, b.Products.Create(ctx, p))
		return p.ID
	}

	ledger := inventory.NewLedger(b.Products)
	guard := idempotency.NewGuard(b.Idempotency, time.Hour, 10*time.Second)
	a := NewAssembler(b.Tx, b.Carts, b.Addresses, b.Products, b.Orders, ledger, guard, mq.NopPublisher{},
		Config{Timeout: 10 * time.Second}, zerolog.Nop())
	carts := appcart.NewCartUseCase(b.Tx, b.Carts, b.Products)

	base := userBase() + 500
	for i := uint(0); i < 10; i++ {
		userID := base + i
		first, second := newProduct(fmt.Sprintf("先加-%d", userID)), newProduct(fmt.Sprintf("后加-%d", userID))
		addrID := prepareBuyer(t, b, userID, first, 1)

		var (
			wg     sync.WaitGroup
			res    *Result
			chkErr error
			addErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			res, chkErr = a.Checkout(ctx, Request{UserID: userID, AddressID: addrID})
		}()
		go func() {
			defer wg.Done()
			_, addErr = carts.AddItem(ctx, userID, second, 1)
		}()
		wg.Wait()
		require.NoError(t, chkErr)
		require.NoError(t, addErr)

		seen := map[uint]int{}
		for _, it := range res.Items {
			seen[it.ProductID] += it.Quantity
		}
		c, err := b.Carts.FindByUserID(ctx, userID)
		require.NoError(t, err)
		for _, it := range c.Items() {
			seen[it.ProductID] += it.Quantity
		}
		assert.Equal(t, map[uint]int{first: 1, second: 1}, seen, "user=%d", userID)
	}
}
