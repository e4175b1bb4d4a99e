package cart

import (
	"context"
)

// Repository 购物车仓储接口
type Repository interface {
	// Create 创建购物车（每个用户只能有一个）
	Create(ctx context.Context, cart *Cart) error

	// FindByUserID 不存在时返回ErrCartNotFound
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)

	// FindByUserIDForUpdate 同FindByUserID，并锁住购物车行直到事务结束
	// 必须在事务中调用；读-改-写购物车以及结账都走这里，同一用户的修改因此串行
	FindByUserIDForUpdate(ctx context.Context, userID uint) (*Cart, error)

	// Save 用聚合的当前行集合覆盖持久化的行，并刷新total_items
	Save(ctx context.Context, cart *Cart) error

	// Clear 删除购物车的所有行，购物车本身保留；重复调用无副作用
	Clear(ctx context.Context, cartID uint) error
}
