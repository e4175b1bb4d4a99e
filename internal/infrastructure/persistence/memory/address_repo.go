package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/mall/internal/domain/address"
)

type addressRepository struct {
	store *Store
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(store *Store) address.Repository {
	return &addressRepository{store: store}
}

func (r *addressRepository) Create(ctx context.Context, a *address.Address) error {
	return r.store.run(ctx, func(st *state) error {
		st.nextAddressID++
		now := r.store.now()
		a.ID = st.nextAddressID
		a.CreatedAt, a.UpdatedAt = now, now
		st.addresses[a.ID] = *a
		return nil
	})
}

func (r *addressRepository) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	var found *address.Address
	err := r.store.run(ctx, func(st *state) error {
		a, ok := st.addresses[id]
		if !ok {
			return address.ErrAddressNotFound
		}
		found = &a
		return nil
	})
	return found, err
}

func (r *addressRepository) ListByUserID(ctx context.Context, userID uint) ([]*address.Address, error) {
	var list []*address.Address
	err := r.store.run(ctx, func(st *state) error {
		for _, a := range st.addresses {
			if a.UserID == userID {
				list = append(list, &a)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		return nil
	})
	return list, err
}
