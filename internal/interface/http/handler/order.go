package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/mall/internal/application/checkout"
	apporder "github.com/xiebiao/mall/internal/application/order"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/internal/interface/http/dto"
	"github.com/xiebiao/mall/internal/interface/http/middleware"
	"github.com/xiebiao/mall/pkg/response"
)

// IdempotencyKeyHeader 结账幂等令牌请求头
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	assembler *checkout.Assembler
	query     *apporder.QueryUseCase
	lifecycle *apporder.LifecycleUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	assembler *checkout.Assembler,
	query *apporder.QueryUseCase,
	lifecycle *apporder.LifecycleUseCase,
) *OrderHandler {
	return &OrderHandler{
		assembler: assembler,
		query:     query,
		lifecycle: lifecycle,
	}
}

// Checkout 购物车结账
// @Summary      购物车结账
// @Description  把当前购物车转换为待支付订单：校验地址和商品、按商品ID升序预占库存、计价、落库并清空购物车。
// @Description  同一幂等令牌(Idempotency-Key请求头或body中的token)重复提交时返回原订单，replayed=true。
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key header string false "幂等令牌(1-64位 [A-Za-z0-9_.:-])"
// @Param        request body dto.CheckoutRequest true "收货地址"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "下单成功或幂等重放"
// @Failure      200 {object} response.Response "EmptyCartError/OutOfStockError/AddressNotFoundError/ProductNotFoundError/ConflictError/TimeoutError"
// @Router       /api/v1/orders/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	token := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if token == "" {
		token = req.Token
	}

	result, err := h.assembler.Checkout(c.Request.Context(), checkout.Request{
		UserID:    middleware.MustGetUserID(c),
		AddressID: req.AddressID,
		Token:     token,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromCheckoutResult(result))
}

// List 我的订单
// @Summary      我的订单
// @Description  按创建时间倒序分页
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.ListOrdersQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.query.List(c.Request.Context(), apporder.ListRequest{
		UserID:   middleware.MustGetUserID(c),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.OrderResponse, 0, len(result.List))
	for _, o := range result.List {
		list = append(list, dto.ToOrderResponse(o))
	}
	response.SuccessWithPage(c, list, result.Total, result.Page, result.PageSize)
}

// Get 订单详情
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{order_no} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.query.Get(c.Request.Context(), middleware.MustGetUserID(c), c.Param("order_no"))
	h.respond(c, o, err)
}

// Pay 支付
// @Summary      支付订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{order_no}/pay [post]
func (h *OrderHandler) Pay(c *gin.Context) {
	o, err := h.lifecycle.Pay(c.Request.Context(), middleware.MustGetUserID(c), c.Param("order_no"))
	h.respond(c, o, err)
}

// Ship 发货
// @Summary      订单发货
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{order_no}/ship [post]
func (h *OrderHandler) Ship(c *gin.Context) {
	o, err := h.lifecycle.Ship(c.Request.Context(), middleware.MustGetUserID(c), c.Param("order_no"))
	h.respond(c, o, err)
}

// Complete 确认收货
// @Summary      确认收货
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{order_no}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	o, err := h.lifecycle.Complete(c.Request.Context(), middleware.MustGetUserID(c), c.Param("order_no"))
	h.respond(c, o, err)
}

// Cancel 取消订单
// @Summary      取消订单
// @Description  待支付和已支付的订单可以取消，库存随之归还
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{order_no}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	o, err := h.lifecycle.Cancel(c.Request.Context(), middleware.MustGetUserID(c), c.Param("order_no"))
	h.respond(c, o, err)
}

// UpdateRemark 修改备注
// @Summary      修改订单备注
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Param        request body dto.UpdateRemarkRequest true "备注"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{order_no}/remark [put]
func (h *OrderHandler) UpdateRemark(c *gin.Context) {
	var req dto.UpdateRemarkRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.lifecycle.UpdateRemark(c.Request.Context(), middleware.MustGetUserID(c), c.Param("order_no"), req.Remark)
	h.respond(c, o, err)
}

func (h *OrderHandler) respond(c *gin.Context, o *order.Order, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(o))
}
