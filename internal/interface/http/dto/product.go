package dto

import (
	"github.com/xiebiao/mall/internal/domain/product"
)

// CreateProductRequest 上架商品
// price用字符串传递，服务端按decimal解析
type CreateProductRequest struct {
	Name  string `json:"name" binding:"required,max=200" example:"保温杯"`
	Price string `json:"price" binding:"required" example:"59.90"`
	Stock int    `json:"stock" binding:"min=0" example:"100"`
}

// ChangePriceRequest 调价
type ChangePriceRequest struct {
	Price string `json:"price" binding:"required" example:"49.90"`
}

// ListProductsQuery 商品列表查询参数
type ListProductsQuery struct {
	Page     int    `form:"page" example:"1"`
	PageSize int    `form:"page_size" example:"20"`
	Keyword  string `form:"keyword" example:"杯"`
	SortBy   string `form:"sort_by" example:"price_asc"`
}

// ProductResponse 商品
type ProductResponse struct {
	ID        uint   `json:"id" example:"1"`
	Name      string `json:"name" example:"保温杯"`
	Price     string `json:"price" example:"59.90"`
	Stock     int    `json:"stock" example:"100"`
	CreatedAt string `json:"created_at" example:"2024-01-15 10:30:00"`
	UpdatedAt string `json:"updated_at" example:"2024-01-15 10:30:00"`
}

// ToProductResponse 实体 → 响应
func ToProductResponse(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     Money(p.Price),
		Stock:     p.Stock,
		CreatedAt: FormatTime(p.CreatedAt),
		UpdatedAt: FormatTime(p.UpdatedAt),
	}
}

// ToProductList 列表转换
func ToProductList(list []*product.Product) []*ProductResponse {
	out := make([]*ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToProductResponse(p))
	}
	return out
}
