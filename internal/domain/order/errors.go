package order

import (
	apperrors "github.com/xiebiao/mall/pkg/errors"
)

// 订单领域错误
var (
	// ErrOrderNotFound 订单不存在(或不属于当前用户)
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 非法的状态流转
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrDuplicateOrderNo 订单号已存在(由仓储在唯一索引冲突时返回)
	ErrDuplicateOrderNo = apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号重复")

	// ErrOrderNoExhausted 多次生成的订单号都已被占用
	ErrOrderNoExhausted = apperrors.New(apperrors.ErrCodeDatabaseError, "订单号生成失败")

	// ErrTotalMismatch 订单总额与明细之和不一致
	ErrTotalMismatch = apperrors.New(apperrors.ErrCodeDatabaseError, "订单金额校验失败")

	// ErrInvalidAmount 单价为负或数量非正
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidAmount, "订单金额不合法")

	// ErrInvalidRemark 备注超长
	ErrInvalidRemark = apperrors.New(apperrors.ErrCodeInvalidParams, "备注不能超过255个字符")
)
