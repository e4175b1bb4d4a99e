package dto

import (
	"github.com/xiebiao/mall/internal/application/checkout"
	"github.com/xiebiao/mall/internal/domain/order"
)

// CheckoutRequest 结账
// 幂等令牌优先取Idempotency-Key请求头，其次取body中的token
type CheckoutRequest struct {
	AddressID uint   `json:"address_id" binding:"required" example:"1"`
	Token     string `json:"token" binding:"max=64" example:"8a6e0804-2bd0-4672-b79d-d97027f9071a"`
}

// UpdateRemarkRequest 修改订单备注
type UpdateRemarkRequest struct {
	Remark string `json:"remark" example:"工作日送货"`
}

// ListOrdersQuery 订单列表查询参数
type ListOrdersQuery struct {
	Page     int `form:"page" example:"1"`
	PageSize int `form:"page_size" example:"20"`
}

// OrderResponse 订单
type OrderResponse struct {
	OrderNo    string              `json:"order_no" example:"20240115103000123456"`
	AddressID  uint                `json:"address_id" example:"1"`
	Total      string              `json:"total" example:"20.00"`
	Status     string              `json:"status" example:"pending"`
	StatusText string              `json:"status_text" example:"待支付"`
	Remark     string              `json:"remark,omitempty"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  string              `json:"created_at" example:"2024-01-15 10:30:00"`
	Replayed   bool                `json:"replayed,omitempty"`
}

// OrderItemResponse 订单明细（价格为下单时快照）
type OrderItemResponse struct {
	ProductID   uint   `json:"product_id" example:"1"`
	ProductName string `json:"product_name" example:"保温杯"`
	Price       string `json:"price" example:"10.00"`
	Quantity    int    `json:"quantity" example:"2"`
	Amount      string `json:"amount" example:"20.00"`
}

// FromCheckoutResult 结账结果 → 响应
func FromCheckoutResult(r *checkout.Result) *OrderResponse {
	resp := &OrderResponse{
		OrderNo:    r.OrderNo,
		AddressID:  r.AddressID,
		Total:      Money(r.Total),
		Status:     r.Status.Code(),
		StatusText: r.Status.String(),
		Items:      make([]OrderItemResponse, 0, len(r.Items)),
		CreatedAt:  FormatTime(r.CreatedAt),
		Replayed:   r.Replayed,
	}
	for _, it := range r.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       Money(it.Price),
			Quantity:    it.Quantity,
			Amount:      Money(it.Amount),
		})
	}
	return resp
}

// ToOrderResponse 实体 → 响应
func ToOrderResponse(o *order.Order) *OrderResponse {
	resp := &OrderResponse{
		OrderNo:    o.OrderNo,
		AddressID:  o.AddressID,
		Total:      Money(o.Total),
		Status:     o.Status.Code(),
		StatusText: o.Status.String(),
		Remark:     o.Remark,
		Items:      make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:  FormatTime(o.CreatedAt),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       Money(it.ProductPrice),
			Quantity:    it.Quantity,
			Amount:      Money(it.Amount),
		})
	}
	return resp
}
