package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/xiebiao/mall/internal/domain/product"
)

type productRepository struct {
	store *Store
}

// NewProductRepository 创建商品仓储
func NewProductRepository(store *Store) product.Repository {
	return &productRepository{store: store}
}

func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	if p.Stock < 0 {
		return product.ErrInvalidStock
	}
	return r.store.run(ctx, func(st *state) error {
		st.nextProductID++
		now := r.store.now()
		p.ID = st.nextProductID
		p.Version = 1
		p.CreatedAt, p.UpdatedAt = now, now
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var found *product.Product
	err := r.store.run(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return product.ErrProductNotFound
		}
		found = &p
		return nil
	})
	return found, err
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	result := make(map[uint]*product.Product, len(ids))
	err := r.store.run(ctx, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				result[id] = &p
			}
		}
		return nil
	})
	return result, err
}

func (r *productRepository) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	var (
		list  []*product.Product
		total int64
	)
	err := r.store.run(ctx, func(st *state) error {
		keyword := strings.ToLower(params.Keyword)
		matched := make([]product.Product, 0, len(st.products))
		for _, p := range st.products {
			if keyword == "" || strings.Contains(strings.ToLower(p.Name), keyword) {
				matched = append(matched, p)
			}
		}
		sortProducts(matched, params.SortBy)
		total = int64(len(matched))

		start, end := pageBounds(len(matched), params.Page, params.PageSize)
		for i := start; i < end; i++ {
			p := matched[i]
			list = append(list, &p)
		}
		return nil
	})
	return list, total, err
}

func sortProducts(items []product.Product, sortBy string) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch sortBy {
		case "price_asc":
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case "price_desc":
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		}
		return a.ID > b.ID // 默认按创建顺序倒序
	})
}

func (r *productRepository) UpdatePrice(ctx context.Context, p *product.Product) error {
	return r.store.run(ctx, func(st *state) error {
		old, ok := st.products[p.ID]
		if !ok {
			return product.ErrProductNotFound
		}
		old.Price = p.Price
		old.UpdatedAt = r.store.now()
		st.products[p.ID] = old
		p.UpdatedAt = old.UpdatedAt
		return nil
	})
}

func (r *productRepository) GetStock(ctx context.Context, id uint) (product.Stock, error) {
	var stock product.Stock
	err := r.store.run(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return product.ErrProductNotFound
		}
		stock = product.Stock{ProductID: id, Quantity: p.Stock, Version: p.Version}
		return nil
	})
	return stock, err
}

func (r *productRepository) CompareAndSwapStock(ctx context.Context, id uint, expectedVersion int64, quantity int) (bool, error) {
	if quantity < 0 {
		return false, product.ErrInvalidStock
	}
	swapped := false
	err := r.store.run(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return product.ErrProductNotFound
		}
		if p.Version != expectedVersion {
			return nil
		}
		p.Stock = quantity
		p.Version++
		p.UpdatedAt = r.store.now()
		st.products[id] = p
		swapped = true
		return nil
	})
	return swapped, err
}

// pageBounds 计算分页区间[start, end)
func pageBounds(n, page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return 0, 0
	}
	start := (page - 1) * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}
