package handler

import (
	"github.com/gin-gonic/gin"

	appproduct "github.com/xiebiao/mall/internal/application/product"
	"github.com/xiebiao/mall/internal/interface/http/dto"
	"github.com/xiebiao/mall/pkg/response"
)

// ProductHandler 商品HTTP处理器
type ProductHandler struct {
	catalog *appproduct.CatalogUseCase
}

// NewProductHandler 创建商品处理器
func NewProductHandler(catalog *appproduct.CatalogUseCase) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// Create 上架商品
// @Summary      上架商品
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Router       /api/v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	price, ok := parseMoney(c, req.Price)
	if !ok {
		return
	}

	p, err := h.catalog.Create(c.Request.Context(), appproduct.CreateRequest{
		Name:  req.Name,
		Price: price,
		Stock: req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToProductResponse(p))
}

// Get 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Router       /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToProductResponse(p))
}

// List 商品列表
// @Summary      商品列表
// @Description  分页、关键词搜索、排序(price_asc, price_desc, created_at_desc)
// @Tags         商品
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "名称关键词"
// @Param        sort_by query string false "排序方式"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.ProductResponse}}
// @Router       /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ListProductsQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.catalog.List(c.Request.Context(), appproduct.ListRequest{
		Page:     q.Page,
		PageSize: q.PageSize,
		Keyword:  q.Keyword,
		SortBy:   q.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.ToProductList(result.List), result.Total, result.Page, result.PageSize)
}

// ChangePrice 调价
// @Summary      调价
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.ChangePriceRequest true "新价格"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Router       /api/v1/products/{id}/price [put]
func (h *ProductHandler) ChangePrice(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.ChangePriceRequest
	if !bindJSON(c, &req) {
		return
	}
	price, ok := parseMoney(c, req.Price)
	if !ok {
		return
	}

	p, err := h.catalog.ChangePrice(c.Request.Context(), id, price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToProductResponse(p))
}
