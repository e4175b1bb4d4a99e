package memory

import (
	"context"

	"github.com/xiebiao/mall/internal/domain/user"
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

type userRepository struct {
	store *Store
}

// NewUserRepository 创建用户仓储
func NewUserRepository(store *Store) user.Repository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	return r.store.run(ctx, func(st *state) error {
		if _, ok := st.usersByEmail[u.Email]; ok {
			return apperrors.ErrEmailDuplicate
		}
		st.nextUserID++
		now := r.store.now()
		u.ID = st.nextUserID
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = *u
		st.usersByEmail[u.Email] = u.ID
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var found *user.User
	err := r.store.run(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		found = &u
		return nil
	})
	return found, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var found *user.User
	err := r.store.run(ctx, func(st *state) error {
		id, ok := st.usersByEmail[email]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		u := st.users[id]
		found = &u
		return nil
	})
	return found, err
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	return r.store.run(ctx, func(st *state) error {
		old, ok := st.users[u.ID]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		old.Nickname = u.Nickname
		old.Password = u.Password
		old.UpdatedAt = r.store.now()
		st.users[u.ID] = old
		u.UpdatedAt = old.UpdatedAt
		return nil
	})
}
