package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/mall/internal/application/cart"
	"github.com/xiebiao/mall/internal/interface/http/dto"
	"github.com/xiebiao/mall/internal/interface/http/middleware"
	"github.com/xiebiao/mall/pkg/response"
)

// CartHandler 购物车HTTP处理器
// 所有接口都返回修改后的完整购物车视图
type CartHandler struct {
	carts *appcart.CartUseCase
}

func NewCartHandler(carts *appcart.CartUseCase) *CartHandler {
	return &CartHandler{carts: carts}
}

// View 查看购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Router       /api/v1/cart [get]
func (h *CartHandler) View(c *gin.Context) {
	view, err := h.carts.View(c.Request.Context(), middleware.MustGetUserID(c))
	h.respond(c, view, err)
}

// AddItem 加入购物车
// @Summary      加入购物车
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "商品和数量"
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.carts.AddItem(c.Request.Context(), middleware.MustGetUserID(c), req.ProductID, req.Quantity)
	h.respond(c, view, err)
}

// SetQuantity 修改数量
// @Summary      修改购物车商品数量
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Param        request body dto.SetCartItemRequest true "数量"
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Router       /api/v1/cart/items/{product_id} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	productID, ok := uintParam(c, "product_id")
	if !ok {
		return
	}
	var req dto.SetCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.carts.SetQuantity(c.Request.Context(), middleware.MustGetUserID(c), productID, req.Quantity)
	h.respond(c, view, err)
}

// RemoveItem 移出购物车
// @Summary      移出购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Router       /api/v1/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := uintParam(c, "product_id")
	if !ok {
		return
	}
	view, err := h.carts.RemoveItem(c.Request.Context(), middleware.MustGetUserID(c), productID)
	h.respond(c, view, err)
}

func (h *CartHandler) respond(c *gin.Context, view *appcart.CartView, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCartResponse(view))
}
