package order

import (
	"context"
)

// Repository 订单仓储接口
type Repository interface {
	// Create 创建订单及全部明细，二者要么都写入要么都不写入
	// 订单号冲突时返回ErrDuplicateOrderNo
	Create(ctx context.Context, order *Order) error

	// FindByOrderNo 不存在时返回ErrOrderNotFound
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	ExistsByOrderNo(ctx context.Context, orderNo string) (bool, error)

	// Update 只更新状态、备注和updated_at，明细不可变
	Update(ctx context.Context, order *Order) error

	// ListByUserID 按创建时间倒序分页
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
