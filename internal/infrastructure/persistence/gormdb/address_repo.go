package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/mall/internal/domain/address"
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(ctx context.Context, a *address.Address) error {
	now := time.Now()
	model := &AddressModel{
		UserID:    a.UserID,
		Receiver:  a.Receiver,
		Phone:     a.Phone,
		Detail:    a.Detail,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDatabase(err, "创建收货地址失败")
	}
	a.ID = model.ID
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (r *addressRepository) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	var model AddressModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, address.ErrAddressNotFound
		}
		return nil, apperrors.WrapDatabase(err, "查询收货地址失败")
	}
	return toAddressEntity(&model), nil
}

func (r *addressRepository) ListByUserID(ctx context.Context, userID uint) ([]*address.Address, error) {
	var models []AddressModel
	if err := dbFrom(ctx, r.db).Where("user_id = ?", userID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapDatabase(err, "查询收货地址失败")
	}
	list := make([]*address.Address, len(models))
	for i := range models {
		list[i] = toAddressEntity(&models[i])
	}
	return list, nil
}

func toAddressEntity(model *AddressModel) *address.Address {
	return &address.Address{
		ID:        model.ID,
		UserID:    model.UserID,
		Receiver:  model.Receiver,
		Phone:     model.Phone,
		Detail:    model.Detail,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
