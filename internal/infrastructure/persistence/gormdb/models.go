package gormdb

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 数据模型(带GORM tag)与领域实体分离，由各仓储负责转换
// 金额统一使用decimal(12,2)，库存使用整数，都不经过浮点数

// UserModel 用户表
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码(bcrypt)"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (UserModel) TableName() string { return "users" }

// ProductModel 商品表
// stock和version只由库存台账按版本号条件更新
type ProductModel struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"index;size:200;not null;comment:商品名称"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:单价"`
	Stock     int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0;comment:库存"`
	Version   int64           `gorm:"not null;default:1;comment:乐观锁版本号"`
	CreatedAt time.Time       `gorm:"index;autoCreateTime:false"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime:false"`
}

func (ProductModel) TableName() string { return "products" }

// CartModel 购物车表，每个用户一行
type CartModel struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"uniqueIndex;not null;comment:用户ID"`
	TotalItems int             `gorm:"not null;default:0;comment:商品总件数"`
	Items      []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"autoCreateTime:false"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime:false"`
}

func (CartModel) TableName() string { return "carts" }

// CartItemModel 购物车行，(cart_id, product_id)唯一
type CartItemModel struct {
	ID        uint      `gorm:"primaryKey"`
	CartID    uint      `gorm:"uniqueIndex:uk_cart_product;not null"`
	ProductID uint      `gorm:"uniqueIndex:uk_cart_product;not null"`
	Quantity  int       `gorm:"not null;check:chk_cart_items_quantity,quantity > 0"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (CartItemModel) TableName() string { return "cart_items" }

// AddressModel 收货地址表
type AddressModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Receiver  string    `gorm:"size:50;not null"`
	Phone     string    `gorm:"size:20;not null"`
	Detail    string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (AddressModel) TableName() string { return "addresses" }

// OrderModel 订单表
type OrderModel struct {
	ID        uint             `gorm:"primaryKey"`
	OrderNo   string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID    uint             `gorm:"index:idx_orders_user_created;not null"`
	AddressID uint             `gorm:"not null"`
	Total     decimal.Decimal  `gorm:"type:decimal(12,2);not null;comment:订单总额"`
	Status    int              `gorm:"index;not null;default:1;comment:1待支付2已支付3已发货4已完成5已取消"`
	Remark    string           `gorm:"size:255;not null;default:''"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"index:idx_orders_user_created;autoCreateTime:false"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime:false"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单明细表，商品名称和单价是下单时的快照
type OrderItemModel struct {
	ID           uint            `gorm:"primaryKey"`
	OrderID      uint            `gorm:"index;not null"`
	ProductID    uint            `gorm:"index;not null"`
	ProductName  string          `gorm:"size:200;not null"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity     int             `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// IdempotencyKeyModel 下单去重记录
type IdempotencyKeyModel struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"column:idem_key;uniqueIndex;size:128;not null"`
	UserID    uint      `gorm:"index;not null"`
	OrderNo   string    `gorm:"size:32;not null;default:''"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (IdempotencyKeyModel) TableName() string { return "idempotency_keys" }
