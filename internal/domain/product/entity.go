package product

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// 价格最多保留两位小数（与数据库decimal(12,2)一致）
const priceScale = 2

// Product 商品实体(聚合根)
// 1. Price使用decimal，杜绝浮点误差
// 2. Stock/Version只由库存台账(inventory.Ledger)通过CAS修改
// 3. Version是乐观锁版本号，每次库存变化+1
type Product struct {
	ID        uint
	Name      string
	Price     decimal.Decimal
	Stock     int
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProduct 创建商品(校验型构造函数)
// 名称、价格、库存任一不合法都不会产生实体
func NewProduct(name string, price decimal.Decimal, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	now := time.Now()
	return &Product{
		Name:      name,
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ChangePrice 调价
// 已下单的订单明细保存的是价格快照，调价不影响历史订单
func (p *Product) ChangePrice(price decimal.Decimal) error {
	if err := ValidatePrice(price); err != nil {
		return err
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// InStock 库存是否满足数量
func (p *Product) InStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// ValidatePrice 价格必须非负，且不超过两位小数
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	if !price.Equal(price.Truncate(priceScale)) {
		return ErrInvalidPrice.WithMessage("价格最多保留%d位小数", priceScale)
	}
	return nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > 200 {
		return ErrInvalidName
	}
	return nil
}

// Stock 库存快照：数量 + 读取时的版本号
type Stock struct {
	ProductID uint
	Quantity  int
	Version   int64
}
