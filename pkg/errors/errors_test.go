package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := New(ErrCodeInsufficientStock, "库存不足")
	detailed := sentinel.WithMessage("商品%d库存不足", 7)

	assert.True(t, errors.Is(detailed, sentinel), "派生错误应能匹配原错误")
	assert.Equal(t, "商品7库存不足", detailed.Message)

	wrapped := fmt.Errorf("步骤[0:reserve]执行失败: %w", detailed)
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, ErrInvalidParams))
}

func TestAppError_WithCauseKeepsCode(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrDatabaseError.WithCause(cause)

	assert.Equal(t, ErrCodeDatabaseError, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetAppError(t *testing.T) {
	t.Run("提取最外层AppError", func(t *testing.T) {
		inner := New(ErrCodeEmptyCart, "购物车为空")
		err := fmt.Errorf("checkout: %w", inner.WithMessage("购物车里没有商品"))

		appErr := GetAppError(err)
		assert.Equal(t, ErrCodeEmptyCart, appErr.Code)
		assert.Equal(t, "购物车里没有商品", appErr.Message)
	})

	t.Run("普通错误包装为Internal", func(t *testing.T) {
		appErr := GetAppError(errors.New("boom"))
		assert.Equal(t, ErrCodeInternal, appErr.Code)
		assert.Equal(t, "InternalError", appErr.Kind())
	})
}

func TestKindOf(t *testing.T) {
	cases := map[int]string{
		ErrCodeInvalidParams:      "ValidationError",
		ErrCodeInvalidQuantity:    "InvalidQuantityError",
		ErrCodeInvalidAmount:      "InvalidAmountError",
		ErrCodeEmptyCart:          "EmptyCartError",
		ErrCodeAddressNotFound:    "AddressNotFoundError",
		ErrCodeProductNotFound:    "ProductNotFoundError",
		ErrCodeInsufficientStock:  "OutOfStockError",
		ErrCodeStockConflict:      "ConflictError",
		ErrCodeDatabaseError:      "PersistenceError",
		ErrCodeTimeout:            "TimeoutError",
		ErrCodeOrderNotFound:      "NotFoundError",
		ErrCodeTokenExpired:       "UnauthorizedError",
		ErrCodeInvalidOrderStatus: "BusinessError",
		ErrCodeRedisError:         "InternalError",
	}
	for code, kind := range cases {
		assert.Equal(t, kind, KindOf(code), "code=%d", code)
	}
}
