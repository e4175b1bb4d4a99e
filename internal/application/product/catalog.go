// Package product 商品目录用例
package product

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/mall/internal/domain"
	"github.com/xiebiao/mall/internal/domain/product"
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var validSorts = map[string]bool{
	"":                true,
	"price_asc":       true,
	"price_desc":      true,
	"created_at_desc": true,
}

// CatalogUseCase 商品目录用例
type CatalogUseCase struct {
	tx       domain.Transactor
	products product.Repository
	logger   zerolog.Logger
}

// NewCatalogUseCase 创建商品目录用例
func NewCatalogUseCase(tx domain.Transactor, products product.Repository, logger zerolog.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		tx:       tx,
		products: products,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// CreateRequest 上架商品请求
type CreateRequest struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// ListRequest 商品列表查询参数
type ListRequest struct {
	Page     int
	PageSize int
	Keyword  string
	SortBy   string
}

// ListResponse 商品列表
type ListResponse struct {
	List     []*product.Product
	Total    int64
	Page     int
	PageSize int
}

// Create 上架商品
func (uc *CatalogUseCase) Create(ctx context.Context, req CreateRequest) (*product.Product, error) {
	p, err := product.NewProduct(req.Name, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Uint("product_id", p.ID).
		Str("name", p.Name).
		Str("price", p.Price.StringFixed(2)).
		Int("stock", p.Stock).
		Msg("商品已上架")
	return p, nil
}

// Get 商品详情
func (uc *CatalogUseCase) Get(ctx context.Context, id uint) (*product.Product, error) {
	if id == 0 {
		return nil, product.ErrProductNotFound
	}
	return uc.products.FindByID(ctx, id)
}

// List 分页查询
// page默认1，pageSize默认20、最大100
func (uc *CatalogUseCase) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	if !validSorts[req.SortBy] {
		return nil, apperrors.ErrInvalidParams.WithMessage("不支持的排序方式: %s", req.SortBy)
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	list, total, err := uc.products.List(ctx, product.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  strings.TrimSpace(req.Keyword),
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}
	return &ListResponse{List: list, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

// ChangePrice 调价
func (uc *CatalogUseCase) ChangePrice(ctx context.Context, id uint, price decimal.Decimal) (*product.Product, error) {
	var p *product.Product
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if p, err = uc.products.FindByID(ctx, id); err != nil {
			return err
		}
		if err := p.ChangePrice(price); err != nil {
			return err
		}
		return uc.products.UpdatePrice(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
