// Package domain 放置各聚合共享的端口定义
package domain

import "context"

// Transactor 事务边界
// fn内通过ctx调用的仓储操作都在同一事务中执行：fn返回error时回滚，返回nil时提交
// 实现方：gormdb.TxManager（MySQL/PostgreSQL）、memory.Store（内存）
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
