package dto

import (
	"github.com/xiebiao/mall/internal/domain/address"
)

// CreateAddressRequest 新增收货地址
type CreateAddressRequest struct {
	Receiver string `json:"receiver" binding:"required,max=50" example:"张三"`
	Phone    string `json:"phone" binding:"required" example:"13800138000"`
	Detail   string `json:"detail" binding:"required,max=255" example:"上海市浦东新区世纪大道100号"`
}

// AddressResponse 收货地址
type AddressResponse struct {
	ID        uint   `json:"id" example:"1"`
	Receiver  string `json:"receiver" example:"张三"`
	Phone     string `json:"phone" example:"13800138000"`
	Detail    string `json:"detail" example:"上海市浦东新区世纪大道100号"`
	CreatedAt string `json:"created_at"`
}

func ToAddressResponse(a *address.Address) *AddressResponse {
	return &AddressResponse{
		ID:        a.ID,
		Receiver:  a.Receiver,
		Phone:     a.Phone,
		Detail:    a.Detail,
		CreatedAt: FormatTime(a.CreatedAt),
	}
}
