package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/mall/internal/domain/order"
)

type orderRepository struct {
	store *Store
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(store *Store) order.Repository {
	return &orderRepository{store: store}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.store.run(ctx, func(st *state) error {
		if _, ok := st.orders[o.OrderNo]; ok {
			return order.ErrDuplicateOrderNo
		}
		st.nextOrderID++
		now := r.store.now()
		o.ID = st.nextOrderID
		o.CreatedAt, o.UpdatedAt = now, now
		for i := range o.Items {
			st.nextOrderItemID++
			o.Items[i].ID = st.nextOrderItemID
			o.Items[i].OrderID = o.ID
		}
		st.orders[o.OrderNo] = copyOrder(o)
		return nil
	})
}

func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var found *order.Order
	err := r.store.run(ctx, func(st *state) error {
		o, ok := st.orders[orderNo]
		if !ok {
			return order.ErrOrderNotFound
		}
		found = copyOrder(o)
		return nil
	})
	return found, err
}

func (r *orderRepository) ExistsByOrderNo(ctx context.Context, orderNo string) (bool, error) {
	exists := false
	err := r.store.run(ctx, func(st *state) error {
		_, exists = st.orders[orderNo]
		return nil
	})
	return exists, err
}

func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	return r.store.run(ctx, func(st *state) error {
		stored, ok := st.orders[o.OrderNo]
		if !ok {
			return order.ErrOrderNotFound
		}
		stored.Status = o.Status
		stored.Remark = o.Remark
		stored.UpdatedAt = r.store.now()
		o.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var (
		list  []*order.Order
		total int64
	)
	err := r.store.run(ctx, func(st *state) error {
		var owned []*order.Order
		for _, o := range st.orders {
			if o.UserID == userID {
				owned = append(owned, o)
			}
		}
		sort.Slice(owned, func(i, j int) bool {
			if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
				return owned[i].CreatedAt.After(owned[j].CreatedAt)
			}
			return owned[i].ID > owned[j].ID
		})
		total = int64(len(owned))

		start, end := pageBounds(len(owned), page, pageSize)
		for _, o := range owned[start:end] {
			list = append(list, copyOrder(o))
		}
		return nil
	})
	return list, total, err
}
