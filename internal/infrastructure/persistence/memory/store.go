// Package memory 进程内存储实现
// 所有读写串行执行，事务通过快照回滚，隔离级别等价于SERIALIZABLE。
// 用于 database.driver=memory 以及应用层测试。
package memory

import (
	"context"
	"time"

	"github.com/xiebiao/mall/internal/domain/address"
	"github.com/xiebiao/mall/internal/domain/idempotency"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/internal/domain/product"
	"github.com/xiebiao/mall/internal/domain/user"
)

type txKey struct{}

// Store 内存数据库
type Store struct {
	sem   chan struct{} // 容量为1的信号量，可随ctx取消
	state *state
	now   func() time.Time
}

type cartRow struct {
	ID         uint
	UserID     uint
	TotalItems int
	Items      map[uint]cartLine // productID → 行
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type cartLine struct {
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type state struct {
	users        map[uint]user.User
	usersByEmail map[string]uint
	products     map[uint]product.Product
	carts        map[uint]*cartRow
	cartByUser   map[uint]uint
	addresses    map[uint]address.Address
	orders       map[string]*order.Order
	idempotency  map[string]idempotency.Record

	nextUserID, nextProductID, nextCartID, nextAddressID uint
	nextOrderID, nextOrderItemID                          uint
}

// NewStore 创建空的内存数据库
func NewStore() *Store {
	return &Store{
		sem: make(chan struct{}, 1),
		state: &state{
			users:        make(map[uint]user.User),
			usersByEmail: make(map[string]uint),
			products:     make(map[uint]product.Product),
			carts:        make(map[uint]*cartRow),
			cartByUser:   make(map[uint]uint),
			addresses:    make(map[uint]address.Address),
			orders:       make(map[string]*order.Order),
			idempotency:  make(map[string]idempotency.Record),
		},
		now: time.Now,
	}
}

// Transaction 在事务中执行fn
// fn返回错误(或panic)时，数据恢复到事务开始前；
// 嵌套调用复用外层事务，失败时只回滚内层的修改(等价于SAVEPOINT)
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !inTx(ctx) {
		if err := s.lock(ctx); err != nil {
			return err
		}
		defer s.unlock()
		ctx = context.WithValue(ctx, txKey{}, true)
	}

	snapshot := s.state.clone()
	committed := false
	defer func() {
		if !committed {
			s.state = snapshot
		}
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// run 在锁内访问数据；已在事务中时直接执行
func (s *Store) run(ctx context.Context, fn func(st *state) error) error {
	if inTx(ctx) {
		return fn(s.state)
	}
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()
	return fn(s.state)
}

func (s *Store) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlock() {
	<-s.sem
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// clone 深拷贝，作为事务回滚点
func (st *state) clone() *state {
	cp := *st

	cp.users = make(map[uint]user.User, len(st.users))
	for k, v := range st.users {
		cp.users[k] = v
	}
	cp.usersByEmail = make(map[string]uint, len(st.usersByEmail))
	for k, v := range st.usersByEmail {
		cp.usersByEmail[k] = v
	}
	cp.products = make(map[uint]product.Product, len(st.products))
	for k, v := range st.products {
		cp.products[k] = v
	}
	cp.carts = make(map[uint]*cartRow, len(st.carts))
	for k, v := range st.carts {
		row := *v
		row.Items = make(map[uint]cartLine, len(v.Items))
		for pid, line := range v.Items {
			row.Items[pid] = line
		}
		cp.carts[k] = &row
	}
	cp.cartByUser = make(map[uint]uint, len(st.cartByUser))
	for k, v := range st.cartByUser {
		cp.cartByUser[k] = v
	}
	cp.addresses = make(map[uint]address.Address, len(st.addresses))
	for k, v := range st.addresses {
		cp.addresses[k] = v
	}
	cp.orders = make(map[string]*order.Order, len(st.orders))
	for k, v := range st.orders {
		cp.orders[k] = copyOrder(v)
	}
	cp.idempotency = make(map[string]idempotency.Record, len(st.idempotency))
	for k, v := range st.idempotency {
		cp.idempotency[k] = v
	}
	return &cp
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.OrderItem(nil), o.Items...)
	return &cp
}
