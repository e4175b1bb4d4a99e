package address

import "context"

// Repository 收货地址仓储接口
type Repository interface {
	Create(ctx context.Context, address *Address) error

	// FindByID 不存在时返回ErrAddressNotFound
	FindByID(ctx context.Context, id uint) (*Address, error)

	ListByUserID(ctx context.Context, userID uint) ([]*Address, error)
}
