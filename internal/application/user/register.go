package user

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/internal/domain"
	"github.com/xiebiao/mall/internal/domain/cart"
	"github.com/xiebiao/mall/internal/domain/user"
)

// RegisterUseCase 用户注册
// 用户和他的购物车在同一个事务里创建，不存在没有购物车的用户
type RegisterUseCase struct {
	tx          domain.Transactor
	users       user.Repository
	carts       cart.Repository
	userService user.Service
	logger      zerolog.Logger
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(
	tx domain.Transactor,
	users user.Repository,
	carts cart.Repository,
	userService user.Service,
	logger zerolog.Logger,
) *RegisterUseCase {
	return &RegisterUseCase{
		tx:          tx,
		users:       users,
		carts:       carts,
		userService: userService,
		logger:      logger,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.NewAccount(req.Email, req.Password, req.Nickname)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := uc.users.Create(ctx, u); err != nil {
			return err
		}
		return uc.carts.Create(ctx, cart.NewCart(u.ID))
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().Uint("user_id", u.ID).Msg("新用户注册")
	return toUserInfo(u), nil
}

// UserInfo 用户信息(不含密码)
type UserInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{ID: u.ID, Email: u.Email, Nickname: u.Nickname}
}
