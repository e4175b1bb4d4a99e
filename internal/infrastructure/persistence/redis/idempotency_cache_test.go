package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/mall/internal/domain/idempotency"
	"github.com/xiebiao/mall/internal/infrastructure/config"
	"github.com/xiebiao/mall/pkg/circuitbreaker"
)

type stubStore struct {
	records map[string]*idempotency.Record
	finds   int
}

func (s *stubStore) Find(ctx context.Context, key string) (*idempotency.Record, error) {
	s.finds++
	rec, ok := s.records[key]
	if !ok {
		return nil, idempotency.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *stubStore) Claim(ctx context.Context, record *idempotency.Record) error {
	if _, ok := s.records[record.Key]; ok {
		return idempotency.ErrKeyTaken
	}
	s.records[record.Key] = record
	return nil
}

func (s *stubStore) Complete(ctx context.Context, key, orderNo string) error {
	s.records[key].OrderNo = orderNo
	return nil
}

// unreachable 指向一个没有监听的端口
func unreachable() config.RedisConfig {
	return config.RedisConfig{
		Host:         "127.0.0.1",
		Port:         1,
		PoolSize:     1,
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(context.Background(), unreachable(), zerolog.Nop())
	assert.Error(t, err)
}

func TestIdempotencyCache_FallsBackWhenRedisDown(t *testing.T) {
	store := &stubStore{records: map[string]*idempotency.Record{
		"tok:1:abc": {Key: "tok:1:abc", UserID: 1, OrderNo: "ORD1", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	client := newClient(unreachable())
	defer client.Close()

	cache := NewIdempotencyCache(store, client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	rec, err := cache.Find(ctx, "tok:1:abc")
	require.NoError(t, err)
	assert.Equal(t, "ORD1", rec.OrderNo)

	_, err = cache.Find(ctx, "tok:1:missing")
	assert.ErrorIs(t, err, idempotency.ErrRecordNotFound)

	require.NoError(t, cache.Claim(ctx, &idempotency.Record{Key: "tok:1:new", UserID: 1}))
	require.NoError(t, cache.Complete(ctx, "tok:1:new", "ORD2"))
	assert.Equal(t, "ORD2", store.records["tok:1:new"].OrderNo)
}

func TestIdempotencyCache_BreakerOpensAfterFailures(t *testing.T) {
	store := &stubStore{records: map[string]*idempotency.Record{}}
	client := newClient(unreachable())
	defer client.Close()

	cache := NewIdempotencyCache(store, client, time.Minute, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, _ = cache.Find(context.Background(), "tok:1:x")
	}

	assert.Equal(t, circuitbreaker.StateOpen, cache.breaker.State())
	assert.Equal(t, 5, store.finds, "每次都回退到底层存储")
}
