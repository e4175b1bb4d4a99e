package cart

import (
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

// 购物车领域错误
var (
	// ErrCartNotFound 购物车不存在
	ErrCartNotFound = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车不存在")

	// ErrCartExists 用户已有购物车(每个用户只能有一个)
	ErrCartExists = apperrors.New(apperrors.ErrCodeDuplicateEntry, "用户购物车已存在")

	// ErrItemNotFound 购物车中没有该商品
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeCartItemNotFound, "购物车中没有该商品")

	// ErrInvalidQuantity 数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidQuantity, "商品数量必须大于0")

	// ErrInvalidProduct 商品ID不合法
	ErrInvalidProduct = apperrors.New(apperrors.ErrCodeInvalidParams, "商品ID不合法")

	// ErrEmptyCart 购物车为空，无法下单
	ErrEmptyCart = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空")
)
