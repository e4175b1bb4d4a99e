package gormdb

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
// 事务DB放在context里传递，仓储通过dbFrom取出，
// fn返回error时ROLLBACK，返回nil时COMMIT
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// 最外层事务使用READ COMMITTED: 库存版本冲突后重新读取，能看到其他事务已提交的版本号。
// 已在事务中时开启SAVEPOINT，内层失败只回滚内层
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    if err := ledger.Reserve(ctx, productID, qty); err != nil {
//	        return err // 回滚
//	    }
//	    return orderRepo.Create(ctx, o) // nil则提交
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.Transaction(func(inner *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, inner))
		})
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// dbFrom 从context取事务DB，没有则使用默认DB
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
