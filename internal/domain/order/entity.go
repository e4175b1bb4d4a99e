package order

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
// 使用int存储，值按流转方向递增
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 1 // 待支付
	OrderStatusPaid      OrderStatus = 2 // 已支付
	OrderStatusShipped   OrderStatus = 3 // 已发货
	OrderStatusCompleted OrderStatus = 4 // 已完成
	OrderStatusCancelled OrderStatus = 5 // 已取消
)

// MaxRemarkLength 备注最大字符数
const MaxRemarkLength = 255

// String 中文描述(日志、展示用)
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "待支付"
	case OrderStatusPaid:
		return "已支付"
	case OrderStatusShipped:
		return "已发货"
	case OrderStatusCompleted:
		return "已完成"
	case OrderStatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// Code 稳定的英文状态名(接口、事件用)
func (s OrderStatus) Code() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusPaid:
		return "paid"
	case OrderStatusShipped:
		return "shipped"
	case OrderStatusCompleted:
		return "completed"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// transitions 合法的状态流转
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusCompleted},
}

// Order 订单(聚合根)
// 1. OrderNo是业务主键，分配后不再变化
// 2. Items是有序的明细序列，与订单一起创建、一起删除
// 3. 创建后只允许修改Status和Remark
type Order struct {
	ID        uint
	OrderNo   string
	UserID    uint
	AddressID uint
	Total     decimal.Decimal
	Status    OrderStatus
	Remark    string
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem 订单明细
// ProductName/ProductPrice是下单时的快照，之后商品改名改价不影响历史订单
type OrderItem struct {
	ID           uint
	OrderID      uint
	ProductID    uint
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
	Amount       decimal.Decimal
}

// NewOrder 创建待支付订单
func NewOrder(orderNo string, userID, addressID uint, items []OrderItem, total decimal.Decimal) *Order {
	now := time.Now()
	return &Order{
		OrderNo:   orderNo,
		UserID:    userID,
		AddressID: addressID,
		Total:     total,
		Status:    OrderStatusPending,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransitionTo 检查是否可以流转到目标状态
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态流转
func (o *Order) TransitionTo(target OrderStatus) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.WithMessage("订单状态[%s]不能变更为[%s]", o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) Pay() error      { return o.TransitionTo(OrderStatusPaid) }
func (o *Order) Ship() error     { return o.TransitionTo(OrderStatusShipped) }
func (o *Order) Complete() error { return o.TransitionTo(OrderStatusCompleted) }
func (o *Order) Cancel() error   { return o.TransitionTo(OrderStatusCancelled) }

// UpdateRemark 修改备注
func (o *Order) UpdateRemark(remark string) error {
	if utf8.RuneCountInString(remark) > MaxRemarkLength {
		return ErrInvalidRemark
	}
	o.Remark = remark
	o.UpdatedAt = time.Now()
	return nil
}

// CalculateTotal Σ明细金额
// 持久化之前与Order.Total比对，不一致说明有缺陷，必须中止
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// IsOwnedBy 订单是否属于该用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
