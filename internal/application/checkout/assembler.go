// Package checkout 把购物车转换为订单
//
// 一次结账在一个数据库事务内完成：占用幂等键 → 校验地址和商品 →
// 按商品ID升序预占库存 → 快照价格计算金额 → 写订单、清空购物车。
// 任一步失败整个事务回滚，已预占的库存逆序归还。
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/internal/domain"
	"github.com/xiebiao/mall/internal/domain/address"
	"github.com/xiebiao/mall/internal/domain/cart"
	"github.com/xiebiao/mall/internal/domain/idempotency"
	"github.com/xiebiao/mall/internal/domain/inventory"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/internal/domain/product"
	apperrors "github.com/xiebiao/mall/pkg/errors"
	"github.com/xiebiao/mall/pkg/metrics"
	"github.com/xiebiao/mall/pkg/mq"
	"github.com/xiebiao/mall/pkg/saga"
	"github.com/xiebiao/mall/pkg/tracing"
)

// Config 结账参数
type Config struct {
	Timeout         time.Duration // 单次结账总超时，<=0不限制
	OrderNoAttempts int           // 订单号冲突时最多生成几次
}

// Assembler 结账编排
type Assembler struct {
	tx        domain.Transactor
	carts     cart.Repository
	addresses address.Repository
	products  product.Repository
	orders    order.Repository
	ledger    *inventory.Ledger
	guard     *idempotency.Guard
	publisher mq.Publisher

	cfg     Config
	nextNo  order.NoGenerator
	now     func() time.Time
	onState func(State)
	logger  zerolog.Logger
}

// Option Assembler配置项
type Option func(*Assembler)

// WithOrderNoGenerator 替换订单号生成器
func WithOrderNoGenerator(gen order.NoGenerator) Option {
	return func(a *Assembler) {
		a.nextNo = gen
	}
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithStateHook 每次状态变化时回调
func WithStateHook(fn func(State)) Option {
	return func(a *Assembler) {
		a.onState = fn
	}
}

// NewAssembler 创建结账编排器
func NewAssembler(
	tx domain.Transactor,
	carts cart.Repository,
	addresses address.Repository,
	products product.Repository,
	orders order.Repository,
	ledger *inventory.Ledger,
	guard *idempotency.Guard,
	publisher mq.Publisher,
	cfg Config,
	logger zerolog.Logger,
	opts ...Option,
) *Assembler {
	if cfg.OrderNoAttempts <= 0 {
		cfg.OrderNoAttempts = 5
	}
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	a := &Assembler{
		tx:        tx,
		carts:     carts,
		addresses: addresses,
		products:  products,
		orders:    orders,
		ledger:    ledger,
		guard:     guard,
		publisher: publisher,
		cfg:       cfg,
		nextNo:    order.GenerateOrderNo,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// errReplay 事务内发现已完成的幂等记录，需要回放
type errReplay struct {
	orderNo string
}

func (e *errReplay) Error() string {
	return "replay order " + e.orderNo
}

// Checkout 结账
//
// 成功返回新订单；相同幂等键的重复请求返回原订单(Replayed=true)，
// 不再预占库存，也不修改购物车。
func (a *Assembler) Checkout(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	defer metrics.TrackCheckout()()

	ctx, span := tracing.StartSpan(ctx, "checkout")
	defer func() {
		tracing.EndSpan(span, err)
		metrics.ObserveCheckout(resultLabel(res, err), time.Since(start))
	}()

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	logger := a.logger.With().Uint("user_id", req.UserID).Uint("address_id", req.AddressID).Logger()
	m := newMachine(logger, a.onState)

	res, err = a.checkout(ctx, m, req)
	if err != nil {
		err = normalize(ctx, err)
		m.fail(err)

		appErr := apperrors.GetAppError(err)
		ev := logger.Warn()
		if appErr.Code < apperrors.ErrCodeInternal {
			ev = logger.Info()
		}
		ev.Err(err).Str("kind", appErr.Kind()).Msg("结账失败")
		return nil, err
	}

	m.complete()
	if res.Replayed {
		metrics.IncCheckoutReplay()
		logger.Info().Str("order_no", res.OrderNo).Msg("结账请求重复，返回已有订单")
	} else {
		logger.Info().Str("order_no", res.OrderNo).Str("total", res.Total.StringFixed(2)).Msg("结账成功")
	}
	return res, nil
}

func (a *Assembler) checkout(ctx context.Context, m *machine, req Request) (*Result, error) {
	if req.UserID == 0 {
		return nil, apperrors.ErrInvalidParams.WithMessage("用户ID不能为空")
	}
	if req.AddressID == 0 {
		return nil, apperrors.ErrInvalidParams.WithMessage("收货地址不能为空")
	}

	// 带令牌的请求先查幂等记录：第一次成功后购物车已被清空，
	// 重试必须在读购物车之前命中
	var key string
	if req.Token != "" {
		if err := idempotency.ValidateToken(req.Token); err != nil {
			return nil, err
		}
		key = idempotency.TokenKey(req.UserID, req.Token)
		if res, ok, err := a.replay(ctx, req.UserID, key); err != nil || ok {
			return res, err
		}
	}

	var created *order.Order
	err := a.tx.Transaction(ctx, func(ctx context.Context) error {
		// Draft: 锁住购物车，结账期间同一用户的加购、改数量都要等待，
		// 避免清空时删掉结账后才加入的行
		c, err := a.carts.FindByUserIDForUpdate(ctx, req.UserID)
		if errors.Is(err, cart.ErrCartNotFound) {
			return cart.ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return cart.ErrEmptyCart
		}
		items := c.Items()

		if key == "" {
			if key, err = a.guard.Key(req.UserID, "", items); err != nil {
				return err
			}
			orderNo, ok, err := a.guard.Lookup(ctx, key)
			if err != nil {
				return err
			}
			if ok {
				return &errReplay{orderNo: orderNo}
			}
		}
		if err := a.guard.Claim(ctx, key, req.UserID); err != nil {
			return err
		}

		// Validating
		ctx = m.enter(ctx, StateValidating)
		products, err := a.validate(ctx, req, items)
		if err != nil {
			return err
		}

		// Reserving
		ctx = m.enter(ctx, StateReserving)
		if err := a.reserve(ctx, m.logger, items); err != nil {
			return err
		}

		// Pricing
		ctx = m.enter(ctx, StatePricing)
		totals, err := price(items, products)
		if err != nil {
			return err
		}

		// Committing
		ctx = m.enter(ctx, StateCommitting)
		created, err = a.persist(ctx, req, totals)
		if err != nil {
			return err
		}
		if err := a.carts.Clear(ctx, c.ID); err != nil {
			return err
		}
		return a.guard.Complete(ctx, key, created.OrderNo)
	})

	var rp *errReplay
	switch {
	case errors.As(err, &rp):
		return a.load(ctx, req.UserID, rp.orderNo)
	case errors.Is(err, idempotency.ErrKeyTaken):
		// 相同的键已被另一个请求占用：它已提交则回放，仍在处理则让客户端稍后重试
		res, ok, lerr := a.replay(ctx, req.UserID, key)
		if lerr != nil {
			return nil, lerr
		}
		if !ok {
			return nil, idempotency.ErrInFlight
		}
		return res, nil
	case err != nil:
		return nil, err
	}

	a.publishCreated(ctx, m.logger, created)
	return newResult(created, false), nil
}

// replay 查找已完成的幂等记录并加载原订单
func (a *Assembler) replay(ctx context.Context, userID uint, key string) (*Result, bool, error) {
	orderNo, ok, err := a.guard.Lookup(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	res, err := a.load(ctx, userID, orderNo)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (a *Assembler) load(ctx context.Context, userID uint, orderNo string) (*Result, error) {
	o, err := a.orders.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, order.ErrOrderNotFound
	}
	return newResult(o, true), nil
}

// validate 地址必须属于当前用户，购物车中的商品必须都存在
func (a *Assembler) validate(ctx context.Context, req Request, items []cart.Item) (map[uint]*product.Product, error) {
	addr, err := a.addresses.FindByID(ctx, req.AddressID)
	if err != nil {
		return nil, err
	}
	if !addr.BelongsTo(req.UserID) {
		return nil, address.ErrAddressNotFound
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := a.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, product.ErrProductNotFound.WithMessage("商品%d不存在", id)
		}
	}
	return products, nil
}

// reserve 按商品ID升序逐个预占，失败时逆序归还已预占的商品
func (a *Assembler) reserve(ctx context.Context, logger zerolog.Logger, items []cart.Item) error {
	s := saga.NewSaga(0, saga.WithLogger(logger))
	for _, it := range items {
		s.AddStep(fmt.Sprintf("reserve:%d", it.ProductID),
			func(ctx context.Context) error {
				return a.ledger.Reserve(ctx, it.ProductID, it.Quantity)
			},
			func(ctx context.Context) error {
				return a.ledger.Release(ctx, it.ProductID, it.Quantity)
			},
		)
	}
	return s.Execute(ctx)
}

// price 用预占时读到的商品名称和价格做快照
func price(items []cart.Item, products map[uint]*product.Product) (order.Totals, error) {
	lines := make([]order.LineDraft, 0, len(items))
	for _, it := range items {
		p := products[it.ProductID]
		lines = append(lines, order.LineDraft{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    it.Quantity,
		})
	}
	return order.CalculateTotals(lines)
}

// persist 写订单；订单号冲突时重新生成，超过次数返回ErrOrderNoExhausted
// 每次写入在嵌套事务(保存点)中进行，冲突不会破坏外层事务
func (a *Assembler) persist(ctx context.Context, req Request, totals order.Totals) (*order.Order, error) {
	for attempt := 1; attempt <= a.cfg.OrderNoAttempts; attempt++ {
		o := order.NewOrder(a.nextNo(), req.UserID, req.AddressID, cloneItems(totals.Items), totals.Total)
		now := a.now()
		o.CreatedAt, o.UpdatedAt = now, now

		if err := verifyTotal(o); err != nil {
			return nil, err
		}

		err := a.tx.Transaction(ctx, func(ctx context.Context) error {
			return a.orders.Create(ctx, o)
		})
		if errors.Is(err, order.ErrDuplicateOrderNo) {
			a.logger.Debug().Str("order_no", o.OrderNo).Int("attempt", attempt).Msg("订单号冲突，重新生成")
			continue
		}
		if err != nil {
			return nil, err
		}
		return o, nil
	}
	return nil, order.ErrOrderNoExhausted
}

// verifyTotal 写入前校验订单总额等于明细金额之和
// 两者目前来自同一次CalculateTotals，校验防的是NewOrder或明细复制逻辑以后被改坏
func verifyTotal(o *order.Order) error {
	if sum := o.CalculateTotal(); !sum.Equal(o.Total) {
		return order.ErrTotalMismatch.WithMessage("订单总额%s与明细之和%s不一致",
			o.Total.StringFixed(2), sum.StringFixed(2))
	}
	return nil
}

func cloneItems(items []order.OrderItem) []order.OrderItem {
	out := make([]order.OrderItem, len(items))
	copy(out, items)
	return out
}

// publishCreated 事务提交后发布事件，失败只记日志
func (a *Assembler) publishCreated(ctx context.Context, logger zerolog.Logger, o *order.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := a.publisher.Publish(ctx, order.EventOrderCreated, order.NewCreatedEvent(o)); err != nil {
		logger.Warn().Err(err).Str("order_no", o.OrderNo).Msg("发布下单事件失败")
	}
}

// normalize 统一错误：超时 → TimeoutError，其余非AppError → PersistenceError
func normalize(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.ErrTimeout.WithCause(err)
	case errors.Is(err, context.Canceled):
		return apperrors.ErrTimeout.WithMessage("请求已取消").WithCause(err)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	// 驱动返回的错误不一定包装ctx错误
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.ErrTimeout.WithCause(err)
	}
	return apperrors.ErrDatabaseError.WithCause(err)
}

func resultLabel(res *Result, err error) string {
	switch {
	case err != nil:
		return apperrors.GetAppError(err).Kind()
	case res != nil && res.Replayed:
		return "replay"
	default:
		return "success"
	}
}
