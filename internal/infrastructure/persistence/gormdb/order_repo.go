package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/mall/internal/domain/order"
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

// orderRepository 订单仓储(GORM)
// 订单和明细一起保存(同一条Create语句链，在调用方事务内)，查询时Preload明细
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	now := time.Now()
	model := toOrderModel(o)
	model.CreatedAt = now
	model.UpdatedAt = now

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return order.ErrDuplicateOrderNo
		}
		return apperrors.WrapDatabase(err, "创建订单失败")
	}

	o.ID = model.ID
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	return nil
}

func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := dbFrom(ctx, r.db).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Where("order_no = ?", orderNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.WrapDatabase(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) ExistsByOrderNo(ctx context.Context, orderNo string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&OrderModel{}).Where("order_no = ?", orderNo).Count(&count).Error; err != nil {
		return false, apperrors.WrapDatabase(err, "查询订单号失败")
	}
	return count > 0, nil
}

// Update 只更新状态和备注，明细不可变
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	now := time.Now()
	result := dbFrom(ctx, r.db).Model(&OrderModel{}).Where("order_no = ?", o.OrderNo).Updates(map[string]interface{}{
		"status":     int(o.Status),
		"remark":     o.Remark,
		"updated_at": now,
	})
	if result.Error != nil {
		return apperrors.WrapDatabase(result.Error, "更新订单失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	o.UpdatedAt = now
	return nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	query := dbFrom(ctx, r.db).Model(&OrderModel{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDatabase(err, "查询订单总数失败")
	}

	var models []OrderModel
	err := query.Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapDatabase(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
			Amount:       item.Amount,
		}
	}
	return &OrderModel{
		OrderNo:   o.OrderNo,
		UserID:    o.UserID,
		AddressID: o.AddressID,
		Total:     o.Total,
		Status:    int(o.Status),
		Remark:    o.Remark,
		Items:     items,
	}
}

func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:           item.ID,
			OrderID:      item.OrderID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
			Amount:       item.Amount,
		}
	}
	return &order.Order{
		ID:        model.ID,
		OrderNo:   model.OrderNo,
		UserID:    model.UserID,
		AddressID: model.AddressID,
		Total:     model.Total,
		Status:    order.OrderStatus(model.Status),
		Remark:    model.Remark,
		Items:     items,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
