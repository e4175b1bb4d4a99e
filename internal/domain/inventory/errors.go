package inventory

import (
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

var (
	// ErrOutOfStock 库存不足
	ErrOutOfStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrStockConflict 乐观锁重试次数耗尽
	ErrStockConflict = apperrors.New(apperrors.ErrCodeStockConflict, "库存并发冲突，请稍后重试")

	// ErrInvalidQuantity 预占/归还数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidQuantity, "库存数量必须大于0")
)
