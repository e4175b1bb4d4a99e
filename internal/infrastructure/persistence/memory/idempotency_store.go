package memory

import (
	"context"

	"github.com/xiebiao/mall/internal/domain/idempotency"
)

type idempotencyStore struct {
	store *Store
}

// NewIdempotencyStore 创建幂等记录存储
func NewIdempotencyStore(store *Store) idempotency.Store {
	return &idempotencyStore{store: store}
}

func (s *idempotencyStore) Find(ctx context.Context, key string) (*idempotency.Record, error) {
	var found *idempotency.Record
	err := s.store.run(ctx, func(st *state) error {
		rec, ok := st.idempotency[key]
		if !ok {
			return idempotency.ErrRecordNotFound
		}
		found = &rec
		return nil
	})
	return found, err
}

func (s *idempotencyStore) Claim(ctx context.Context, rec *idempotency.Record) error {
	return s.store.run(ctx, func(st *state) error {
		now := s.store.now()
		if old, ok := st.idempotency[rec.Key]; ok && !old.Expired(now) {
			return idempotency.ErrKeyTaken
		}
		rec.CreatedAt, rec.UpdatedAt = now, now
		st.idempotency[rec.Key] = *rec
		return nil
	})
}

func (s *idempotencyStore) Complete(ctx context.Context, key, orderNo string) error {
	return s.store.run(ctx, func(st *state) error {
		rec, ok := st.idempotency[key]
		if !ok {
			return idempotency.ErrRecordNotFound
		}
		rec.OrderNo = orderNo
		rec.UpdatedAt = s.store.now()
		st.idempotency[key] = rec
		return nil
	})
}
