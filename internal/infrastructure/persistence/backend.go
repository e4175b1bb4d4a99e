// Package persistence 按配置组装存储后端
package persistence

import (
	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/internal/domain"
	"github.com/xiebiao/mall/internal/domain/address"
	"github.com/xiebiao/mall/internal/domain/cart"
	"github.com/xiebiao/mall/internal/domain/idempotency"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/internal/domain/product"
	"github.com/xiebiao/mall/internal/domain/user"
	"github.com/xiebiao/mall/internal/infrastructure/config"
	"github.com/xiebiao/mall/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/mall/internal/infrastructure/persistence/memory"
)

// Backend 一组共享同一事务边界的仓储
type Backend struct {
	Tx          domain.Transactor
	Users       user.Repository
	Products    product.Repository
	Carts       cart.Repository
	Addresses   address.Repository
	Orders      order.Repository
	Idempotency idempotency.Store

	close func() error
}

// NewBackend driver=memory时使用进程内存储，否则连接MySQL/PostgreSQL
func NewBackend(cfg config.DatabaseConfig, logger zerolog.Logger) (*Backend, error) {
	if cfg.Driver == "memory" {
		logger.Warn().Msg("使用内存存储，数据不会持久化")
		return NewMemoryBackend(), nil
	}

	db, err := gormdb.NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	return &Backend{
		Tx:          gormdb.NewTxManager(db),
		Users:       gormdb.NewUserRepository(db),
		Products:    gormdb.NewProductRepository(db),
		Carts:       gormdb.NewCartRepository(db),
		Addresses:   gormdb.NewAddressRepository(db),
		Orders:      gormdb.NewOrderRepository(db),
		Idempotency: gormdb.NewIdempotencyStore(db),
		close:       sqlDB.Close,
	}, nil
}

// NewMemoryBackend 进程内存储，测试和本地演示使用
func NewMemoryBackend() *Backend {
	store := memory.NewStore()
	return &Backend{
		Tx:          store,
		Users:       memory.NewUserRepository(store),
		Products:    memory.NewProductRepository(store),
		Carts:       memory.NewCartRepository(store),
		Addresses:   memory.NewAddressRepository(store),
		Orders:      memory.NewOrderRepository(store),
		Idempotency: memory.NewIdempotencyStore(store),
		close:       func() error { return nil },
	}
}

// Close 释放连接
func (b *Backend) Close() error {
	return b.close()
}
