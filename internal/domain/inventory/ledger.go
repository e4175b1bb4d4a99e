package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/internal/domain/product"
)

// StockStore 库存的读取与比较交换
// 由商品仓储实现，CompareAndSwapStock只有在版本号仍为expectedVersion时才写入，
// 写入同时把版本号加一
type StockStore interface {
	GetStock(ctx context.Context, productID uint) (product.Stock, error)
	CompareAndSwapStock(ctx context.Context, productID uint, expectedVersion int64, quantity int) (bool, error)
}

// errVersionConflict 版本号已变化，需要重新读取后重试
var errVersionConflict = errors.New("stock version conflict")

// Ledger 库存账本
// 每个商品的(stock, version)是唯一被并发修改的共享状态，
// 所有修改都走乐观并发: 读 → 计算 → 按版本号比较写入 → 冲突则退避重试
type Ledger struct {
	store          StockStore
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	onConflict     func(productID uint)
	logger         zerolog.Logger
}

// Option 账本配置项
type Option func(*Ledger)

// WithMaxRetries 冲突后的最大重试次数(不含首次尝试)
func WithMaxRetries(n int) Option {
	return func(l *Ledger) {
		if n >= 0 {
			l.maxRetries = n
		}
	}
}

// WithBackoff 重试的初始间隔和最大间隔
func WithBackoff(initial, max time.Duration) Option {
	return func(l *Ledger) {
		if initial > 0 {
			l.initialBackoff = initial
		}
		if max >= initial {
			l.maxBackoff = max
		}
	}
}

// WithConflictHook 每次版本冲突时回调(用于指标统计)
func WithConflictHook(fn func(productID uint)) Option {
	return func(l *Ledger) {
		l.onConflict = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedger 默认重试5次，退避从5ms开始，最长100ms
func NewLedger(store StockStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:          store,
		maxRetries:     5,
		initialBackoff: 5 * time.Millisecond,
		maxBackoff:     100 * time.Millisecond,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reserve 预占库存
// 只有stock >= quantity时才扣减，任何时刻库存都不会为负
// 库存不足返回ErrOutOfStock(不重试)，重试耗尽返回ErrStockConflict
func (l *Ledger) Reserve(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	return l.apply(ctx, productID, func(s product.Stock) (int, error) {
		if s.Quantity < quantity {
			return 0, ErrOutOfStock.WithMessage("商品%d库存不足(剩余%d，需要%d)", productID, s.Quantity, quantity)
		}
		return s.Quantity - quantity, nil
	})
}

// Release 归还库存
// 只用于补偿本次结账中已经成功的Reserve，或取消订单时恢复库存；
// 调用方保证每次预占只归还一次
func (l *Ledger) Release(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	return l.apply(ctx, productID, func(s product.Stock) (int, error) {
		return s.Quantity + quantity, nil
	})
}

// apply 读取库存 → compute计算新值 → 按版本号写入，冲突时退避重试
func (l *Ledger) apply(ctx context.Context, productID uint, compute func(product.Stock) (int, error)) error {
	attempt := 0
	operation := func() error {
		attempt++

		stock, err := l.store.GetStock(ctx, productID)
		if err != nil {
			return backoff.Permanent(err)
		}

		next, err := compute(stock)
		if err != nil {
			return backoff.Permanent(err)
		}

		ok, err := l.store.CompareAndSwapStock(ctx, productID, stock.Version, next)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			if l.onConflict != nil {
				l.onConflict(productID)
			}
			l.logger.Debug().
				Uint("product_id", productID).
				Int64("version", stock.Version).
				Int("attempt", attempt).
				Msg("库存版本冲突，准备重试")
			return errVersionConflict
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.initialBackoff
	b.MaxInterval = l.maxBackoff
	b.MaxElapsedTime = 0 // 只按次数限制

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(l.maxRetries)), ctx))
	if errors.Is(err, errVersionConflict) {
		l.logger.Warn().
			Uint("product_id", productID).
			Int("attempts", attempt).
			Msg("库存并发冲突，重试次数已耗尽")
		return ErrStockConflict.WithMessage("商品%d库存并发冲突，请稍后重试", productID)
	}
	return err
}
