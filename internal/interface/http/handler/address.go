package handler

import (
	"github.com/gin-gonic/gin"

	appaddress "github.com/xiebiao/mall/internal/application/address"
	"github.com/xiebiao/mall/internal/interface/http/dto"
	"github.com/xiebiao/mall/internal/interface/http/middleware"
	"github.com/xiebiao/mall/pkg/response"
)

// AddressHandler 收货地址HTTP处理器
type AddressHandler struct {
	addresses *appaddress.AddressUseCase
}

func NewAddressHandler(addresses *appaddress.AddressUseCase) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// Create 新增收货地址
// @Summary      新增收货地址
// @Tags         收货地址
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateAddressRequest true "地址信息"
// @Success      200 {object} response.Response{data=dto.AddressResponse}
// @Router       /api/v1/addresses [post]
func (h *AddressHandler) Create(c *gin.Context) {
	var req dto.CreateAddressRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.addresses.Create(c.Request.Context(), appaddress.CreateRequest{
		UserID:   middleware.MustGetUserID(c),
		Receiver: req.Receiver,
		Phone:    req.Phone,
		Detail:   req.Detail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToAddressResponse(a))
}

// List 我的收货地址
// @Summary      我的收货地址
// @Tags         收货地址
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.AddressResponse}
// @Router       /api/v1/addresses [get]
func (h *AddressHandler) List(c *gin.Context) {
	list, err := h.addresses.List(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]*dto.AddressResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.ToAddressResponse(a))
	}
	response.Success(c, out)
}
