package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/mall/internal/domain/product"
)

// fakeStore 内存库存，可注入若干次CAS失败来模拟并发写入
type fakeStore struct {
	mu        sync.Mutex
	stock     map[uint]product.Stock
	conflicts int // 接下来多少次CAS强制失败
	casCalls  int
}

func newFakeStore(stock map[uint]int) *fakeStore {
	s := &fakeStore{stock: make(map[uint]product.Stock)}
	for id, qty := range stock {
		s.stock[id] = product.Stock{ProductID: id, Quantity: qty, Version: 1}
	}
	return s
}

func (s *fakeStore) GetStock(_ context.Context, id uint) (product.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stock[id]
	if !ok {
		return product.Stock{}, product.ErrProductNotFound
	}
	return st, nil
}

func (s *fakeStore) CompareAndSwapStock(_ context.Context, id uint, version int64, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.casCalls++

	st := s.stock[id]
	if s.conflicts > 0 {
		s.conflicts--
		// 模拟另一个事务抢先提交: 版本号前进，数量不变
		st.Version++
		s.stock[id] = st
		return false, nil
	}
	if st.Version != version {
		return false, nil
	}
	s.stock[id] = product.Stock{ProductID: id, Quantity: qty, Version: version + 1}
	return true, nil
}

func (s *fakeStore) quantity(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[id].Quantity
}

func fastLedger(store StockStore, opts ...Option) *Ledger {
	return NewLedger(store, append([]Option{WithBackoff(time.Microsecond, time.Microsecond)}, opts...)...)
}

func TestLedger_ReserveAndRelease(t *testing.T) {
	store := newFakeStore(map[uint]int{1: 5})
	l := fastLedger(store)

	require.NoError(t, l.Reserve(context.Background(), 1, 2))
	assert.Equal(t, 3, store.quantity(1))

	require.NoError(t, l.Release(context.Background(), 1, 2))
	assert.Equal(t, 5, store.quantity(1))
}

func TestLedger_ReserveOutOfStock(t *testing.T) {
	store := newFakeStore(map[uint]int{1: 1})
	l := fastLedger(store)

	err := l.Reserve(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 1, store.quantity(1))
	assert.Equal(t, 0, store.casCalls, "库存不足不应尝试写入")
}

func TestLedger_ReserveInvalidQuantity(t *testing.T) {
	l := fastLedger(newFakeStore(nil))
	assert.ErrorIs(t, l.Reserve(context.Background(), 1, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, l.Release(context.Background(), 1, -1), ErrInvalidQuantity)
}

func TestLedger_ReserveUnknownProduct(t *testing.T) {
	l := fastLedger(newFakeStore(nil))
	err := l.Reserve(context.Background(), 42, 1)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestLedger_RetriesOnConflict(t *testing.T) {
	store := newFakeStore(map[uint]int{1: 5})
	store.conflicts = 3

	var hooked []uint
	l := fastLedger(store, WithConflictHook(func(id uint) { hooked = append(hooked, id) }))

	require.NoError(t, l.Reserve(context.Background(), 1, 1))
	assert.Equal(t, 4, store.quantity(1))
	assert.Equal(t, 4, store.casCalls)
	assert.Equal(t, []uint{1, 1, 1}, hooked)
}

func TestLedger_ConflictRetriesExhausted(t *testing.T) {
	store := newFakeStore(map[uint]int{1: 5})
	store.conflicts = 100

	l := fastLedger(store, WithMaxRetries(5))

	err := l.Reserve(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrStockConflict)
	assert.Equal(t, 6, store.casCalls, "首次尝试 + 5次重试")
	assert.Equal(t, 5, store.quantity(1))
}

func TestLedger_StopsOnCancelledContext(t *testing.T) {
	store := newFakeStore(map[uint]int{1: 5})
	store.conflicts = 100

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLedger(store, WithBackoff(time.Second, time.Second)).Reserve(ctx, 1, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestLedger_ConcurrentReservationsNeverOversell(t *testing.T) {
	store := newFakeStore(map[uint]int{1: 10})
	l := fastLedger(store, WithMaxRetries(50))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Reserve(context.Background(), 1, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, store.quantity(1))
}
