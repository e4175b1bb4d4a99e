package address

import (
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

var (
	// ErrAddressNotFound 地址不存在，或不属于当前用户
	ErrAddressNotFound = apperrors.New(apperrors.ErrCodeAddressNotFound, "收货地址不存在")

	ErrInvalidAddress = apperrors.New(apperrors.ErrCodeInvalidParams, "收货地址不合法")
)
