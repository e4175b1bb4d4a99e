package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/mall/internal/domain/idempotency"
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

// idempotencyStore 去重记录(GORM)
// 并发的相同请求在idem_key唯一索引上排队，先提交者胜出
type idempotencyStore struct {
	db *gorm.DB
}

// NewIdempotencyStore 创建去重记录存储
func NewIdempotencyStore(db *gorm.DB) idempotency.Store {
	return &idempotencyStore{db: db}
}

func (s *idempotencyStore) Find(ctx context.Context, key string) (*idempotency.Record, error) {
	var model IdempotencyKeyModel
	if err := dbFrom(ctx, s.db).Where("idem_key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, idempotency.ErrRecordNotFound
		}
		return nil, apperrors.WrapDatabase(err, "查询幂等记录失败")
	}
	return &idempotency.Record{
		Key:       model.Key,
		UserID:    model.UserID,
		OrderNo:   model.OrderNo,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Claim 先删除同键的过期记录，再插入占位记录
func (s *idempotencyStore) Claim(ctx context.Context, rec *idempotency.Record) error {
	db := dbFrom(ctx, s.db)
	now := time.Now()

	if err := db.Where("idem_key = ? AND expires_at <= ?", rec.Key, now).Delete(&IdempotencyKeyModel{}).Error; err != nil {
		return apperrors.WrapDatabase(err, "清理过期幂等记录失败")
	}

	model := &IdempotencyKeyModel{
		Key:       rec.Key,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return idempotency.ErrKeyTaken
		}
		return apperrors.WrapDatabase(err, "写入幂等记录失败")
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	return nil
}

func (s *idempotencyStore) Complete(ctx context.Context, key, orderNo string) error {
	result := dbFrom(ctx, s.db).Model(&IdempotencyKeyModel{}).Where("idem_key = ?", key).Updates(map[string]interface{}{
		"order_no":   orderNo,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return apperrors.WrapDatabase(result.Error, "更新幂等记录失败")
	}
	if result.RowsAffected == 0 {
		return idempotency.ErrRecordNotFound
	}
	return nil
}
