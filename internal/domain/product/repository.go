package product

import (
	"context"
)

// Repository 商品仓储接口
// 所有方法都通过ctx参与调用方的事务（见domain.Transactor）
type Repository interface {
	// Create 创建商品，回填ID与时间戳
	Create(ctx context.Context, product *Product) error

	// FindByID 不存在时返回ErrProductNotFound
	FindByID(ctx context.Context, id uint) (*Product, error)

	// FindByIDs 批量查询，结果按ID索引；不存在的ID不会出现在结果中
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)

	// UpdatePrice 持久化product.Price（刷新updated_at）
	UpdatePrice(ctx context.Context, product *Product) error

	// GetStock 读取库存数量和版本号（非锁定读）
	GetStock(ctx context.Context, id uint) (Stock, error)

	// CompareAndSwapStock 乐观锁写库存
	// 仅当当前版本号等于expectedVersion时写入quantity并将版本号+1
	// 返回false表示版本已变化，调用方应重新读取后重试
	CompareAndSwapStock(ctx context.Context, id uint, expectedVersion int64, quantity int) (bool, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 名称关键词
	SortBy   string // price_asc, price_desc, created_at_desc
}
