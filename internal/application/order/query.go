package order

import (
	"context"

	"github.com/xiebiao/mall/internal/domain/order"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// QueryUseCase 订单查询用例
// 只能看到自己的订单，别人的订单一律按不存在处理
type QueryUseCase struct {
	orders order.Repository
}

// NewQueryUseCase 创建订单查询用例
func NewQueryUseCase(orders order.Repository) *QueryUseCase {
	return &QueryUseCase{orders: orders}
}

// ListRequest 订单列表查询参数
type ListRequest struct {
	UserID   uint
	Page     int
	PageSize int
}

// ListResponse 订单列表
type ListResponse struct {
	List     []*order.Order
	Total    int64
	Page     int
	PageSize int
}

// Get 按订单号查询
func (uc *QueryUseCase) Get(ctx context.Context, userID uint, orderNo string) (*order.Order, error) {
	return findOwned(ctx, uc.orders, userID, orderNo)
}

// List 按创建时间倒序分页查询
func (uc *QueryUseCase) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	orders, total, err := uc.orders.ListByUserID(ctx, req.UserID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &ListResponse{
		List:     orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func findOwned(ctx context.Context, orders order.Repository, userID uint, orderNo string) (*order.Order, error) {
	if orderNo == "" {
		return nil, order.ErrOrderNotFound
	}
	o, err := orders.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
