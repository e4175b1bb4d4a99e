package cart

import (
	"sort"
	"time"
)

// Item 购物车行
type Item struct {
	ProductID uint
	Quantity  int
}

// Cart 购物车(聚合根)
// 1. 每个用户一个购物车，清空只删除行，不删除购物车本身
// 2. 行按商品ID索引，同一商品只有一行（重复加购累加数量）
// 3. 行不持有指向购物车的引用，一切经由聚合根访问
type Cart struct {
	ID        uint
	UserID    uint
	lines     map[uint]int // productID → quantity
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart 为用户创建空购物车
func NewCart(userID uint) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		lines:     make(map[uint]int),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Restore 由仓储重建聚合
// 数量非正的行被丢弃，重复的商品行合并
func Restore(id, userID uint, items []Item, createdAt, updatedAt time.Time) *Cart {
	c := &Cart{
		ID:        id,
		UserID:    userID,
		lines:     make(map[uint]int, len(items)),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	for _, it := range items {
		if it.Quantity > 0 {
			c.lines[it.ProductID] += it.Quantity
		}
	}
	return c
}

// AddItem 加购
// 已有该商品则累加数量
func (c *Cart) AddItem(productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if productID == 0 {
		return ErrInvalidProduct
	}
	c.ensure()
	c.lines[productID] += quantity
	c.touch()
	return nil
}

// SetQuantity 修改某行的数量（行必须已存在）
func (c *Cart) SetQuantity(productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if _, ok := c.lines[productID]; !ok {
		return ErrItemNotFound
	}
	c.lines[productID] = quantity
	c.touch()
	return nil
}

// RemoveItem 删除某行
func (c *Cart) RemoveItem(productID uint) error {
	if _, ok := c.lines[productID]; !ok {
		return ErrItemNotFound
	}
	delete(c.lines, productID)
	c.touch()
	return nil
}

// Items 按商品ID升序返回所有行
// 下单时按此顺序预占库存，并发下单不会交叉加锁
func (c *Cart) Items() []Item {
	items := make([]Item, 0, len(c.lines))
	for pid, qty := range c.lines {
		items = append(items, Item{ProductID: pid, Quantity: qty})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID < items[j].ProductID
	})
	return items
}

// ProductIDs 升序商品ID
func (c *Cart) ProductIDs() []uint {
	items := c.Items()
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	return ids
}

// Quantity 某商品的数量（不存在为0）
func (c *Cart) Quantity(productID uint) int {
	return c.lines[productID]
}

// TotalItems Σ数量
func (c *Cart) TotalItems() int {
	total := 0
	for _, qty := range c.lines {
		total += qty
	}
	return total
}

// IsEmpty 是否没有任何行
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Clear 清空所有行，对空购物车是no-op
func (c *Cart) Clear() {
	if len(c.lines) == 0 {
		return
	}
	c.lines = make(map[uint]int)
	c.touch()
}

func (c *Cart) ensure() {
	if c.lines == nil {
		c.lines = make(map[uint]int)
	}
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
