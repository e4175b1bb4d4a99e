package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/mall/internal/domain/cart"
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

// cartRepository 购物车仓储(GORM)
// carts一行 + cart_items多行，Save整体覆盖行集合
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, c *cart.Cart) error {
	now := time.Now()
	model := &CartModel{
		UserID:     c.UserID,
		TotalItems: c.TotalItems(),
		Items:      toCartItemModels(c, now),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return cart.ErrCartExists
		}
		return apperrors.WrapDatabase(err, "创建购物车失败")
	}

	c.ID = model.ID
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	return r.find(ctx, userID, false)
}

// FindByUserIDForUpdate SELECT ... FOR UPDATE锁住carts行
// 行锁只加在carts上，cart_items的读写都发生在持锁之后
func (r *cartRepository) FindByUserIDForUpdate(ctx context.Context, userID uint) (*cart.Cart, error) {
	return r.find(ctx, userID, true)
}

func (r *cartRepository) find(ctx context.Context, userID uint, lock bool) (*cart.Cart, error) {
	db := dbFrom(ctx, r.db)

	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model CartModel
	if err := query.Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.WrapDatabase(err, "查询购物车失败")
	}

	var rows []CartItemModel
	if err := db.Where("cart_id = ?", model.ID).Order("product_id ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.WrapDatabase(err, "查询购物车失败")
	}

	items := make([]cart.Item, len(rows))
	for i, it := range rows {
		items[i] = cart.Item{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return cart.Restore(model.ID, model.UserID, items, model.CreatedAt, model.UpdatedAt), nil
}

// Save 把聚合的行集合同步到cart_items，并刷新total_items
// 已有的行只更新quantity和updated_at(created_at保持插入时的值)，新行插入，消失的行删除
// 调用方不在事务中时，这里自己开一个事务
func (r *cartRepository) Save(ctx context.Context, c *cart.Cart) error {
	now := time.Now()
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&CartModel{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
			"total_items": c.TotalItems(),
			"updated_at":  now,
		})
		if result.Error != nil {
			return apperrors.WrapDatabase(result.Error, "更新购物车失败")
		}
		if result.RowsAffected == 0 {
			return cart.ErrCartNotFound
		}

		var existing []CartItemModel
		if err := tx.Where("cart_id = ?", c.ID).Find(&existing).Error; err != nil {
			return apperrors.WrapDatabase(err, "更新购物车失败")
		}

		want := make(map[uint]int, len(existing))
		for _, it := range c.Items() {
			want[it.ProductID] = it.Quantity
		}

		var removed []uint
		for _, row := range existing {
			qty, ok := want[row.ProductID]
			delete(want, row.ProductID)
			switch {
			case !ok:
				removed = append(removed, row.ProductID)
			case qty != row.Quantity:
				err := tx.Model(&CartItemModel{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
					"quantity":   qty,
					"updated_at": now,
				}).Error
				if err != nil {
					return apperrors.WrapDatabase(err, "更新购物车失败")
				}
			}
		}

		if len(removed) > 0 {
			err := tx.Where("cart_id = ? AND product_id IN ?", c.ID, removed).Delete(&CartItemModel{}).Error
			if err != nil {
				return apperrors.WrapDatabase(err, "更新购物车失败")
			}
		}

		if len(want) > 0 {
			added := make([]CartItemModel, 0, len(want))
			for _, it := range c.Items() {
				if qty, ok := want[it.ProductID]; ok {
					added = append(added, CartItemModel{
						CartID:    c.ID,
						ProductID: it.ProductID,
						Quantity:  qty,
						CreatedAt: now,
						UpdatedAt: now,
					})
				}
			}
			if err := tx.Create(&added).Error; err != nil {
				return apperrors.WrapDatabase(err, "更新购物车失败")
			}
		}

		c.UpdatedAt = now
		return nil
	})
}

// Clear 删除所有行；没有行可删时不修改购物车
func (r *cartRepository) Clear(ctx context.Context, cartID uint) error {
	db := dbFrom(ctx, r.db)
	result := db.Where("cart_id = ?", cartID).Delete(&CartItemModel{})
	if result.Error != nil {
		return apperrors.WrapDatabase(result.Error, "清空购物车失败")
	}
	if result.RowsAffected == 0 {
		return nil
	}

	err := db.Model(&CartModel{}).Where("id = ?", cartID).Updates(map[string]interface{}{
		"total_items": 0,
		"updated_at":  time.Now(),
	}).Error
	if err != nil {
		return apperrors.WrapDatabase(err, "清空购物车失败")
	}
	return nil
}

func toCartItemModels(c *cart.Cart, now time.Time) []CartItemModel {
	items := c.Items()
	models := make([]CartItemModel, len(items))
	for i, it := range items {
		models[i] = CartItemModel{
			CartID:    c.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return models
}
