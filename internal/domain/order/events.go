package order

import "time"

// 事件路由键
const (
	EventOrderCreated   = "order.created"
	EventOrderCancelled = "order.cancelled"
)

// CreatedEvent 下单成功后发布
type CreatedEvent struct {
	OrderNo   string      `json:"order_no"`
	UserID    uint        `json:"user_id"`
	Total     string      `json:"total"`
	Items     []EventItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

// EventItem 事件中的订单明细
type EventItem struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Amount    string `json:"amount"`
}

// CancelledEvent 取消订单后发布
type CancelledEvent struct {
	OrderNo     string      `json:"order_no"`
	UserID      uint        `json:"user_id"`
	Items       []EventItem `json:"items"`
	CancelledAt time.Time   `json:"cancelled_at"`
}

// NewCreatedEvent 由已持久化的订单构造事件
func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderNo:   o.OrderNo,
		UserID:    o.UserID,
		Total:     o.Total.StringFixed(2),
		Items:     eventItems(o),
		CreatedAt: o.CreatedAt,
	}
}

// NewCancelledEvent 由已取消的订单构造事件
func NewCancelledEvent(o *Order) CancelledEvent {
	return CancelledEvent{
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		Items:       eventItems(o),
		CancelledAt: o.UpdatedAt,
	}
}

func eventItems(o *Order) []EventItem {
	items := make([]EventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, EventItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.ProductPrice.StringFixed(2),
			Amount:    it.Amount.StringFixed(2),
		})
	}
	return items
}
