// Package address 收货地址用例
package address

import (
	"context"

	"github.com/xiebiao/mall/internal/domain/address"
)

// AddressUseCase 收货地址用例
type AddressUseCase struct {
	addresses address.Repository
}

// NewAddressUseCase 创建收货地址用例
func NewAddressUseCase(addresses address.Repository) *AddressUseCase {
	return &AddressUseCase{addresses: addresses}
}

// CreateRequest 新增地址请求
type CreateRequest struct {
	UserID   uint
	Receiver string
	Phone    string
	Detail   string
}

// Create 新增收货地址
func (uc *AddressUseCase) Create(ctx context.Context, req CreateRequest) (*address.Address, error) {
	a, err := address.NewAddress(req.UserID, req.Receiver, req.Phone, req.Detail)
	if err != nil {
		return nil, err
	}
	if err := uc.addresses.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List 当前用户的全部地址
func (uc *AddressUseCase) List(ctx context.Context, userID uint) ([]*address.Address, error) {
	return uc.addresses.ListByUserID(ctx, userID)
}
