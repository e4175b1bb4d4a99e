package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/internal/domain/idempotency"
	"github.com/xiebiao/mall/pkg/circuitbreaker"
	"github.com/xiebiao/mall/pkg/metrics"
)

// IdempotencyCache 在幂等存储前加一层Redis读缓存
//
// 只缓存已完成的记录(占位中的记录可能随事务回滚消失)，Key为 idem:{key}。
// Redis故障由熔断器隔离，任何缓存错误都退回底层存储，不影响下单。
type IdempotencyCache struct {
	next    idempotency.Store
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

type cachedRecord struct {
	UserID    uint      `json:"user_id"`
	OrderNo   string    `json:"order_no"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIdempotencyCache 包装next
func NewIdempotencyCache(next idempotency.Store, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *IdempotencyCache {
	cfg := circuitbreaker.DefaultConfig()
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, redis.Nil)
	}
	breaker := circuitbreaker.NewCircuitBreaker("redis-idempotency", cfg)
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.SetCircuitBreakerState(name, int(to))
		logger.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("熔断器状态变化")
	})

	return &IdempotencyCache{
		next:    next,
		client:  client,
		breaker: breaker,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

func cacheKey(key string) string {
	return "idem:" + key
}

// Find 先查缓存，未命中查底层存储，已完成的记录回填缓存
func (c *IdempotencyCache) Find(ctx context.Context, key string) (*idempotency.Record, error) {
	if rec, ok := c.get(ctx, key); ok {
		return rec, nil
	}

	rec, err := c.next.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Completed() {
		c.set(ctx, rec)
	}
	return rec, nil
}

// Claim 直接落到底层存储
func (c *IdempotencyCache) Claim(ctx context.Context, record *idempotency.Record) error {
	return c.next.Claim(ctx, record)
}

// Complete 直接落到底层存储；此时事务尚未提交，不写缓存
func (c *IdempotencyCache) Complete(ctx context.Context, key, orderNo string) error {
	return c.next.Complete(ctx, key, orderNo)
}

func (c *IdempotencyCache) get(ctx context.Context, key string) (*idempotency.Record, bool) {
	var raw []byte
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		raw, err = c.client.Get(ctx, cacheKey(key)).Bytes()
		return err
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug().Err(err).Str("key", key).Msg("读取幂等缓存失败，回退数据库")
		}
		return nil, false
	}

	var cr cachedRecord
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, false
	}
	return &idempotency.Record{
		Key:       key,
		UserID:    cr.UserID,
		OrderNo:   cr.OrderNo,
		ExpiresAt: cr.ExpiresAt,
		CreatedAt: cr.CreatedAt,
		UpdatedAt: cr.CreatedAt,
	}, true
}

func (c *IdempotencyCache) set(ctx context.Context, rec *idempotency.Record) {
	ttl := c.ttl
	if remain := rec.ExpiresAt.Sub(c.now()); remain < ttl {
		ttl = remain
	}
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(cachedRecord{
		UserID:    rec.UserID,
		OrderNo:   rec.OrderNo,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	})
	if err != nil {
		return
	}

	err = c.call(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, cacheKey(rec.Key), raw, ttl).Err()
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("key", rec.Key).Msg("写入幂等缓存失败")
	}
}

func (c *IdempotencyCache) call(ctx context.Context, fn func(ctx context.Context) error) error {
	err := c.breaker.ExecuteContext(ctx, fn)
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.IncCircuitBreakerRequest(c.breaker.Name(), "rejected")
	case err == nil || errors.Is(err, redis.Nil):
		metrics.IncCircuitBreakerRequest(c.breaker.Name(), "success")
	default:
		metrics.IncCircuitBreakerRequest(c.breaker.Name(), "failure")
	}
	return err
}
