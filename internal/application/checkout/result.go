package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/mall/internal/domain/order"
)

// Request 结账请求
type Request struct {
	UserID    uint
	AddressID uint
	Token     string // 可选的幂等令牌
}

// Result 结账结果
// Replayed为true表示命中幂等记录，返回的是之前创建的订单
type Result struct {
	OrderNo   string
	UserID    uint
	AddressID uint
	Total     decimal.Decimal
	Status    order.OrderStatus
	Items     []LineItem
	CreatedAt time.Time
	Replayed  bool
}

// LineItem 订单明细(价格和名称为下单时的快照)
type LineItem struct {
	ProductID   uint
	ProductName string
	Price       decimal.Decimal
	Quantity    int
	Amount      decimal.Decimal
}

func newResult(o *order.Order, replayed bool) *Result {
	items := make([]LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, LineItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.ProductPrice,
			Quantity:    it.Quantity,
			Amount:      it.Amount,
		})
	}
	return &Result{
		OrderNo:   o.OrderNo,
		UserID:    o.UserID,
		AddressID: o.AddressID,
		Total:     o.Total,
		Status:    o.Status,
		Items:     items,
		CreatedAt: o.CreatedAt,
		Replayed:  replayed,
	}
}
