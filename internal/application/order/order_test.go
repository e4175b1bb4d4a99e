package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/mall/internal/domain/inventory"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/internal/domain/product"
	"github.com/xiebiao/mall/internal/infrastructure/persistence"
	"github.com/xiebiao/mall/pkg/mq/mocks"
)

type fixture struct {
	ctx       context.Context
	backend   *persistence.Backend
	ledger    *inventory.Ledger
	publisher *mocks.MockPublisher
	query     *QueryUseCase
	lifecycle *LifecycleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	b := persistence.NewMemoryBackend()
	ledger := inventory.NewLedger(b.Products)
	pub := mocks.NewMockPublisher(ctrl)
	return &fixture{
		ctx:       context.Background(),
		backend:   b,
		ledger:    ledger,
		publisher: pub,
		query:     NewQueryUseCase(b.Orders),
		lifecycle: NewLifecycleUseCase(b.Tx, b.Orders, ledger, pub, zerolog.Nop()),
	}
}

// placeOrder 直接落一张待支付订单并扣减库存
func (f *fixture) placeOrder(t *testing.T, userID uint, orderNo string, stock, quantity int) (*order.Order, uint) {
	t.Helper()
	p, err := product.NewProduct("机械键盘", decimal.RequireFromString("299.00"), stock)
	require.NoError(t, err)
	require.NoError(t, f.backend.Products.Create(f.ctx, p))
	require.NoError(t, f.ledger.Reserve(f.ctx, p.ID, quantity))

	totals, err := order.CalculateTotals([]order.LineDraft{
		{ProductID: p.ID, ProductName: p.Name, Price: p.Price, Quantity: quantity},
	})
	require.NoError(t, err)
	o := order.NewOrder(orderNo, userID, 1, totals.Items, totals.Total)
	require.NoError(t, f.backend.Orders.Create(f.ctx, o))
	return o, p.ID
}

func (f *fixture) stock(t *testing.T, productID uint) int {
	t.Helper()
	s, err := f.backend.Products.GetStock(f.ctx, productID)
	require.NoError(t, err)
	return s.Quantity
}

func TestLifecycle_HappyPath(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t, 1, "ORD0001", 5, 1)

	o, err := f.lifecycle.Pay(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPaid, o.Status)

	_, err = f.lifecycle.Ship(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	o, err = f.lifecycle.Complete(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCompleted, o.Status)

	stored, err := f.query.Get(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCompleted, stored.Status)
}

func TestLifecycle_IllegalTransition(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t, 1, "ORD0001", 5, 1)

	_, err := f.lifecycle.Ship(f.ctx, 1, "ORD0001")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	stored, err := f.query.Get(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPending, stored.Status)
}

func TestLifecycle_CancelRestoresStock(t *testing.T) {
	f := newFixture(t)
	_, pid := f.placeOrder(t, 1, "ORD0001", 5, 3)
	require.Equal(t, 2, f.stock(t, pid))

	var published order.CancelledEvent
	f.publisher.EXPECT().
		Publish(gomock.Any(), order.EventOrderCancelled, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg interface{}) error {
			published = msg.(order.CancelledEvent)
			return nil
		})

	o, err := f.lifecycle.Cancel(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, o.Status)
	assert.Equal(t, 5, f.stock(t, pid))
	assert.Equal(t, "ORD0001", published.OrderNo)

	// 已取消的订单不能再取消，库存不会重复归还
	_, err = f.lifecycle.Cancel(f.ctx, 1, "ORD0001")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	assert.Equal(t, 5, f.stock(t, pid))
}

func TestLifecycle_CancelShippedRejected(t *testing.T) {
	f := newFixture(t)
	_, pid := f.placeOrder(t, 1, "ORD0001", 5, 2)

	_, err := f.lifecycle.Pay(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	_, err = f.lifecycle.Ship(f.ctx, 1, "ORD0001")
	require.NoError(t, err)

	_, err = f.lifecycle.Cancel(f.ctx, 1, "ORD0001")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	assert.Equal(t, 3, f.stock(t, pid))
}

func TestLifecycle_CancelPublishFailureIgnored(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t, 1, "ORD0001", 5, 1)
	f.publisher.EXPECT().
		Publish(gomock.Any(), order.EventOrderCancelled, gomock.Any()).
		Return(errors.New("broker down"))

	o, err := f.lifecycle.Cancel(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, o.Status)
}

func TestLifecycle_OtherUsersOrderIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t, 1, "ORD0001", 5, 1)

	_, err := f.query.Get(f.ctx, 2, "ORD0001")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	_, err = f.lifecycle.Pay(f.ctx, 2, "ORD0001")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	_, err = f.lifecycle.Cancel(f.ctx, 2, "ORD0001")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestLifecycle_UpdateRemark(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t, 1, "ORD0001", 5, 1)

	o, err := f.lifecycle.UpdateRemark(f.ctx, 1, "ORD0001", "工作日送货")
	require.NoError(t, err)
	assert.Equal(t, "工作日送货", o.Remark)

	long := make([]rune, order.MaxRemarkLength+1)
	for i := range long {
		long[i] = '字'
	}
	_, err = f.lifecycle.UpdateRemark(f.ctx, 1, "ORD0001", string(long))
	assert.ErrorIs(t, err, order.ErrInvalidRemark)

	stored, err := f.query.Get(f.ctx, 1, "ORD0001")
	require.NoError(t, err)
	assert.Equal(t, "工作日送货", stored.Remark)
}

func TestQuery_ListPaging(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.placeOrder(t, 1, fmt.Sprintf("ORD%04d", i), 5, 1)
		time.Sleep(time.Millisecond)
	}
	f.placeOrder(t, 2, "ORD9999", 5, 1)

	resp, err := f.query.List(f.ctx, ListRequest{UserID: 1, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	require.Len(t, resp.List, 2)
	for _, o := range resp.List {
		assert.Equal(t, uint(1), o.UserID)
	}

	resp, err = f.query.List(f.ctx, ListRequest{UserID: 1, Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, maxPageSize, resp.PageSize)
	assert.Len(t, resp.List, 3)
}
