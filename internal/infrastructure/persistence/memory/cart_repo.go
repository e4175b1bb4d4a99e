package memory

import (
	"context"

	"github.com/xiebiao/mall/internal/domain/cart"
)

type cartRepository struct {
	store *Store
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(store *Store) cart.Repository {
	return &cartRepository{store: store}
}

func (r *cartRepository) Create(ctx context.Context, c *cart.Cart) error {
	return r.store.run(ctx, func(st *state) error {
		if _, ok := st.cartByUser[c.UserID]; ok {
			return cart.ErrCartExists
		}
		st.nextCartID++
		now := r.store.now()
		c.ID = st.nextCartID
		c.CreatedAt, c.UpdatedAt = now, now

		row := &cartRow{ID: c.ID, UserID: c.UserID, Items: map[uint]cartLine{}, CreatedAt: now, UpdatedAt: now}
		for _, it := range c.Items() {
			row.Items[it.ProductID] = cartLine{Quantity: it.Quantity, CreatedAt: now, UpdatedAt: now}
		}
		row.TotalItems = c.TotalItems()
		st.carts[c.ID] = row
		st.cartByUser[c.UserID] = c.ID
		return nil
	})
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	var found *cart.Cart
	err := r.store.run(ctx, func(st *state) error {
		id, ok := st.cartByUser[userID]
		if !ok {
			return cart.ErrCartNotFound
		}
		row := st.carts[id]
		items := make([]cart.Item, 0, len(row.Items))
		for pid, line := range row.Items {
			items = append(items, cart.Item{ProductID: pid, Quantity: line.Quantity})
		}
		found = cart.Restore(row.ID, row.UserID, items, row.CreatedAt, row.UpdatedAt)
		return nil
	})
	return found, err
}

// FindByUserIDForUpdate 内存实现的事务本身是串行的，不需要额外加锁
func (r *cartRepository) FindByUserIDForUpdate(ctx context.Context, userID uint) (*cart.Cart, error) {
	return r.FindByUserID(ctx, userID)
}

func (r *cartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.store.run(ctx, func(st *state) error {
		row, ok := st.carts[c.ID]
		if !ok {
			return cart.ErrCartNotFound
		}
		now := r.store.now()
		lines := make(map[uint]cartLine, len(c.Items()))
		for _, it := range c.Items() {
			line, ok := row.Items[it.ProductID]
			switch {
			case !ok:
				line = cartLine{Quantity: it.Quantity, CreatedAt: now, UpdatedAt: now}
			case line.Quantity != it.Quantity:
				line.Quantity = it.Quantity
				line.UpdatedAt = now
			}
			lines[it.ProductID] = line
		}
		row.Items = lines
		row.TotalItems = c.TotalItems()
		row.UpdatedAt = now
		c.UpdatedAt = now
		return nil
	})
}

func (r *cartRepository) Clear(ctx context.Context, cartID uint) error {
	return r.store.run(ctx, func(st *state) error {
		row, ok := st.carts[cartID]
		if !ok {
			return cart.ErrCartNotFound
		}
		if len(row.Items) == 0 {
			return nil
		}
		row.Items = make(map[uint]cartLine)
		row.TotalItems = 0
		row.UpdatedAt = r.store.now()
		return nil
	})
}
