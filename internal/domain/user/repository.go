package user

import (
	"context"
)

// Repository 用户仓储接口
// 实现方需要把唯一索引冲突转换为errors.ErrEmailDuplicate，
// 把记录不存在转换为errors.ErrUserNotFound
type Repository interface {
	Create(ctx context.Context, user *User) error

	FindByID(ctx context.Context, id uint) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error
}
