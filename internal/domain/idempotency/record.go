package idempotency

import (
	"context"
	"time"
)

// Record 幂等记录
// 在结账事务中先占位(OrderNo为空)，订单写入后补上订单号，二者同一事务提交
type Record struct {
	Key       string
	UserID    uint
	OrderNo   string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Completed 是否已关联订单
func (r *Record) Completed() bool {
	return r.OrderNo != ""
}

// Expired 是否已超过有效期
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store 幂等记录存储
type Store interface {
	// Find 不存在时返回ErrRecordNotFound
	Find(ctx context.Context, key string) (*Record, error)

	// Claim 占位；键已存在且未过期时返回ErrKeyTaken，已过期的旧记录被替换
	Claim(ctx context.Context, record *Record) error

	// Complete 给已占位的记录补上订单号
	Complete(ctx context.Context, key, orderNo string) error
}
