package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/mall/internal/domain/product"
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

// productRepository 商品仓储(GORM)
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	now := time.Now()
	model := &ProductModel{
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDatabase(err, "创建商品失败")
	}

	p.ID = model.ID
	p.Version = model.Version
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.WrapDatabase(err, "查询商品失败")
	}
	return toProductEntity(&model), nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	result := make(map[uint]*product.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []ProductModel
	if err := dbFrom(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.WrapDatabase(err, "批量查询商品失败")
	}
	for i := range models {
		result[models[i].ID] = toProductEntity(&models[i])
	}
	return result, nil
}

func (r *productRepository) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	query := dbFrom(ctx, r.db).Model(&ProductModel{})
	if params.Keyword != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+params.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDatabase(err, "查询商品总数失败")
	}

	switch params.SortBy {
	case "price_asc":
		query = query.Order("price ASC").Order("id DESC")
	case "price_desc":
		query = query.Order("price DESC").Order("id DESC")
	default:
		query = query.Order("id DESC")
	}

	var models []ProductModel
	err := query.Limit(params.PageSize).Offset(offset(params.Page, params.PageSize)).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapDatabase(err, "查询商品列表失败")
	}

	list := make([]*product.Product, len(models))
	for i := range models {
		list[i] = toProductEntity(&models[i])
	}
	return list, total, nil
}

func (r *productRepository) UpdatePrice(ctx context.Context, p *product.Product) error {
	now := time.Now()
	result := dbFrom(ctx, r.db).Model(&ProductModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"price":      p.Price,
		"updated_at": now,
	})
	if result.Error != nil {
		return apperrors.WrapDatabase(result.Error, "更新商品价格失败")
	}
	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (r *productRepository) GetStock(ctx context.Context, id uint) (product.Stock, error) {
	var model ProductModel
	err := dbFrom(ctx, r.db).Select("id", "stock", "version").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return product.Stock{}, product.ErrProductNotFound
		}
		return product.Stock{}, apperrors.WrapDatabase(err, "查询库存失败")
	}
	return product.Stock{ProductID: model.ID, Quantity: model.Stock, Version: model.Version}, nil
}

// CompareAndSwapStock 乐观锁写库存
//
//	UPDATE products SET stock=?, version=version+1, updated_at=? WHERE id=? AND version=?
//
// 影响行数为0说明版本号已被其他事务推进(或商品已不存在，由下一次GetStock识别)
func (r *productRepository) CompareAndSwapStock(ctx context.Context, id uint, expectedVersion int64, quantity int) (bool, error) {
	if quantity < 0 {
		return false, product.ErrInvalidStock
	}

	result := dbFrom(ctx, r.db).Model(&ProductModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"stock":      quantity,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, apperrors.WrapDatabase(result.Error, "更新库存失败")
	}
	return result.RowsAffected == 1, nil
}

func toProductEntity(model *ProductModel) *product.Product {
	return &product.Product{
		ID:        model.ID,
		Name:      model.Name,
		Price:     model.Price,
		Stock:     model.Stock,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
