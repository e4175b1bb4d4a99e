// Package cart 购物车用例
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/mall/internal/domain"
	"github.com/xiebiao/mall/internal/domain/cart"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/internal/domain/product"
)

// CartUseCase 查看和修改当前用户的购物车
// 购物车在注册时创建；历史用户没有购物车时第一次访问会补建
type CartUseCase struct {
	tx       domain.Transactor
	carts    cart.Repository
	products product.Repository
}

// NewCartUseCase 创建购物车用例
func NewCartUseCase(tx domain.Transactor, carts cart.Repository, products product.Repository) *CartUseCase {
	return &CartUseCase{tx: tx, carts: carts, products: products}
}

// CartView 购物车视图(按当前价格计价)
type CartView struct {
	Lines      []CartLine
	TotalItems int
	Total      decimal.Decimal
}

// CartLine 购物车中的一行
// 商品已下架时Available=false，不参与合计
type CartLine struct {
	ProductID   uint
	ProductName string
	Price       decimal.Decimal
	Quantity    int
	Amount      decimal.Decimal
	Available   bool
}

// View 查看购物车
func (uc *CartUseCase) View(ctx context.Context, userID uint) (*CartView, error) {
	c, err := uc.carts.FindByUserID(ctx, userID)
	if errors.Is(err, cart.ErrCartNotFound) {
		err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
			var err error
			c, err = uc.getOrCreate(ctx, userID)
			return err
		})
	}
	if err != nil {
		return nil, err
	}
	return uc.render(ctx, c)
}

// AddItem 加入购物车，已有的商品累加数量
func (uc *CartUseCase) AddItem(ctx context.Context, userID, productID uint, quantity int) (*CartView, error) {
	if _, err := uc.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, userID, func(c *cart.Cart) error {
		return c.AddItem(productID, quantity)
	})
}

// SetQuantity 修改某个商品的数量
func (uc *CartUseCase) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*CartView, error) {
	return uc.mutate(ctx, userID, func(c *cart.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
}

// RemoveItem 移除某个商品
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, productID uint) (*CartView, error) {
	return uc.mutate(ctx, userID, func(c *cart.Cart) error {
		return c.RemoveItem(productID)
	})
}

// Clear 清空购物车
func (uc *CartUseCase) Clear(ctx context.Context, userID uint) error {
	return uc.tx.Transaction(ctx, func(ctx context.Context) error {
		c, err := uc.getOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		return uc.carts.Clear(ctx, c.ID)
	})
}

func (uc *CartUseCase) mutate(ctx context.Context, userID uint, fn func(c *cart.Cart) error) (*CartView, error) {
	var c *cart.Cart
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if c, err = uc.getOrCreate(ctx, userID); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		return uc.carts.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return uc.render(ctx, c)
}

// getOrCreate 在事务中加锁读取购物车，不存在时创建
// 并发创建时唯一索引冲突的一方回头再加锁读一次
func (uc *CartUseCase) getOrCreate(ctx context.Context, userID uint) (*cart.Cart, error) {
	c, err := uc.carts.FindByUserIDForUpdate(ctx, userID)
	if !errors.Is(err, cart.ErrCartNotFound) {
		return c, err
	}

	c = cart.NewCart(userID)
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		return uc.carts.Create(ctx, c)
	})
	if errors.Is(err, cart.ErrCartExists) {
		return uc.carts.FindByUserIDForUpdate(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *CartUseCase) render(ctx context.Context, c *cart.Cart) (*CartView, error) {
	items := c.Items()
	view := &CartView{TotalItems: c.TotalItems(), Total: decimal.Zero}
	if len(items) == 0 {
		return view, nil
	}

	products, err := uc.products.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}

	drafts := make([]order.LineDraft, 0, len(items))
	for _, it := range items {
		if p, ok := products[it.ProductID]; ok {
			drafts = append(drafts, order.LineDraft{ProductID: p.ID, ProductName: p.Name, Price: p.Price, Quantity: it.Quantity})
		}
	}
	totals, err := order.CalculateTotals(drafts)
	if err != nil {
		return nil, err
	}
	priced := make(map[uint]order.OrderItem, len(totals.Items))
	for _, it := range totals.Items {
		priced[it.ProductID] = it
	}

	for _, it := range items {
		line := CartLine{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := priced[it.ProductID]; ok {
			line.ProductName = p.ProductName
			line.Price = p.ProductPrice
			line.Amount = p.Amount
			line.Available = true
		}
		view.Lines = append(view.Lines, line)
	}
	view.Total = totals.Total
	return view, nil
}
