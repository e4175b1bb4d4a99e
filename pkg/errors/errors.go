package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误
// 1. Code 给客户端判断错误类型（不是HTTP状态码）
// 2. Message 是可以直接展示给用户的描述
// 3. Err 是内部原因，只进日志，不进响应
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码判等
// 由预定义错误派生出的带详细描述的错误，仍然能被errors.Is(err, ErrXxx)识别
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage 派生一个同错误码、描述更具体的错误
//
//	return ErrOutOfStock.WithMessage("商品%d库存不足", productID)
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Err:     e.Err,
	}
}

// WithCause 派生一个同错误码、附带内部原因的错误
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Kind 返回稳定的错误类别名
func (e *AppError) Kind() string {
	return KindOf(e.Code)
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapDatabase 包装存储层错误（对外表现为PersistenceError）
func WrapDatabase(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码
// =========================================
// - 4xxxx: 客户端错误（参数、业务规则）
// - 5xxxx: 服务端错误（存储、外部依赖）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 存储错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeTimeout       = 50003 // 处理超时

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound         = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound     = 40401 // 用户不存在
	ErrCodeProductNotFound  = 40402 // 商品不存在
	ErrCodeOrderNotFound    = 40403 // 订单不存在
	ErrCodeAddressNotFound  = 40404 // 收货地址不存在
	ErrCodeCartNotFound     = 40405 // 购物车不存在
	ErrCodeCartItemNotFound = 40406 // 购物车中没有该商品

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError      = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock  = 40001 // 库存不足
	ErrCodeInvalidOrderStatus = 40002 // 订单状态非法
	ErrCodeEmailDuplicate     = 40003 // 邮箱已存在
	ErrCodeWeakPassword       = 40005 // 密码强度不足
	ErrCodeEmptyCart          = 40006 // 购物车为空
	ErrCodeStockConflict      = 40007 // 库存并发冲突，重试耗尽
	ErrCodeInvalidAmount      = 40008 // 金额非法
	ErrCodeDuplicateEntry     = 40009 // 重复记录(通用)
	ErrCodeInvalidQuantity    = 40010 // 数量非法

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// KindOf 错误码 → 稳定的错误类别
// 客户端按类别分支处理，类别名一旦发布不再修改
func KindOf(code int) string {
	switch code {
	case ErrCodeInvalidParams, ErrCodeBindError, ErrCodeWeakPassword:
		return "ValidationError"
	case ErrCodeInvalidQuantity:
		return "InvalidQuantityError"
	case ErrCodeInvalidAmount:
		return "InvalidAmountError"
	case ErrCodeEmptyCart:
		return "EmptyCartError"
	case ErrCodeAddressNotFound:
		return "AddressNotFoundError"
	case ErrCodeProductNotFound:
		return "ProductNotFoundError"
	case ErrCodeInsufficientStock:
		return "OutOfStockError"
	case ErrCodeStockConflict, ErrCodeDuplicateEntry, ErrCodeEmailDuplicate:
		return "ConflictError"
	case ErrCodeDatabaseError:
		return "PersistenceError"
	case ErrCodeTimeout:
		return "TimeoutError"
	}

	switch {
	case code >= 40100 && code < 40200:
		return "UnauthorizedError"
	case code >= 40400 && code < 40500:
		return "NotFoundError"
	case code >= 40000 && code < 50000:
		return "BusinessError"
	default:
		return "InternalError"
	}
}

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据存储失败")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")
	ErrTimeout       = New(ErrCodeTimeout, "请求处理超时")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 业务规则
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrWeakPassword   = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取最外层的AppError（不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
