package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/mall/internal/domain/cart"
)

// Guard 结账去重
type Guard struct {
	store  Store
	ttl    time.Duration
	bucket time.Duration
	now    func() time.Time
}

// NewGuard ttl是记录有效期，bucket是派生键的时间桶宽度
func NewGuard(store Store, ttl, bucket time.Duration) *Guard {
	return &Guard{
		store:  store,
		ttl:    ttl,
		bucket: bucket,
		now:    time.Now,
	}
}

// WithClock 替换时钟(测试用)
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Key 计算去重键
// token非空时必须合法，否则用购物车内容和时间桶派生
func (g *Guard) Key(userID uint, token string, items []cart.Item) (string, error) {
	if token != "" {
		if err := ValidateToken(token); err != nil {
			return "", err
		}
		return TokenKey(userID, token), nil
	}
	return CartKey(userID, items, g.now(), g.bucket), nil
}

// Lookup 查找有效期内已完成的订单号
func (g *Guard) Lookup(ctx context.Context, key string) (string, bool, error) {
	rec, err := g.store.Find(ctx, key)
	if errors.Is(err, ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !rec.Completed() || rec.Expired(g.now()) {
		return "", false, nil
	}
	return rec.OrderNo, true, nil
}

// Claim 在结账事务中占位
func (g *Guard) Claim(ctx context.Context, key string, userID uint) error {
	now := g.now()
	return g.store.Claim(ctx, &Record{
		Key:       key,
		UserID:    userID,
		ExpiresAt: now.Add(g.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Complete 记录关联的订单号
func (g *Guard) Complete(ctx context.Context, key, orderNo string) error {
	return g.store.Complete(ctx, key, orderNo)
}
