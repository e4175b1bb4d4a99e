package product

import (
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

// 商品领域错误
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")

	// ErrInvalidName 商品名称不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "商品名称长度应为1-200个字符")

	// ErrInvalidPrice 价格不合法
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")

	// ErrInvalidStock 库存不合法
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")
)
