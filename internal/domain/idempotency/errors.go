package idempotency

import (
	"errors"

	apperrors "github.com/xiebiao/mall/pkg/errors"
)

var (
	// ErrRecordNotFound 幂等记录不存在
	ErrRecordNotFound = errors.New("idempotency record not found")

	// ErrKeyTaken 去重键已被占用(另一个请求已经或正在使用)
	ErrKeyTaken = errors.New("idempotency key taken")

	// ErrInvalidToken 幂等令牌格式错误
	ErrInvalidToken = apperrors.New(apperrors.ErrCodeInvalidParams, "幂等令牌格式错误(1-64位字母、数字或_.:-)")

	// ErrInFlight 相同请求正在处理
	ErrInFlight = apperrors.New(apperrors.ErrCodeDuplicateEntry, "相同的下单请求正在处理，请稍后重试")
)
