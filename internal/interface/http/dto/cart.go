package dto

import (
	appcart "github.com/xiebiao/mall/internal/application/cart"
)

// AddCartItemRequest 加购
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required" example:"1"`
	Quantity  int  `json:"quantity" example:"2"`
}

// SetCartItemRequest 修改数量
// quantity不做binding校验，非正数由领域层返回InvalidQuantityError
type SetCartItemRequest struct {
	Quantity int `json:"quantity" example:"3"`
}

// CartResponse 购物车视图
type CartResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items" example:"3"`
	Total      string             `json:"total" example:"59.90"`
}

// CartLineResponse 购物车中的一行
// available=false表示商品已不存在，不计入合计
type CartLineResponse struct {
	ProductID   uint   `json:"product_id" example:"1"`
	ProductName string `json:"product_name" example:"保温杯"`
	Price       string `json:"price" example:"59.90"`
	Quantity    int    `json:"quantity" example:"1"`
	Amount      string `json:"amount" example:"59.90"`
	Available   bool   `json:"available" example:"true"`
}

func ToCartResponse(v *appcart.CartView) *CartResponse {
	resp := &CartResponse{
		Lines:      make([]CartLineResponse, 0, len(v.Lines)),
		TotalItems: v.TotalItems,
		Total:      Money(v.Total),
	}
	for _, l := range v.Lines {
		resp.Lines = append(resp.Lines, CartLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Price:       Money(l.Price),
			Quantity:    l.Quantity,
			Amount:      Money(l.Amount),
			Available:   l.Available,
		})
	}
	return resp
}
