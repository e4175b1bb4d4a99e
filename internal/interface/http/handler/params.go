package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/mall/pkg/errors"
	"github.com/xiebiao/mall/pkg/response"
)

// bindJSON 绑定失败时直接写错误响应，返回false
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperrors.ErrBindError.WithMessage("参数错误: %s", err.Error()))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.Error(c, apperrors.ErrBindError.WithMessage("参数错误: %s", err.Error()))
		return false
	}
	return true
}

// uintParam 解析路径参数中的正整数ID
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		response.Error(c, apperrors.ErrInvalidParams.WithMessage("%s不合法", name))
		return 0, false
	}
	return uint(v), true
}

// parseMoney 金额字符串 → decimal
func parseMoney(c *gin.Context, s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		response.Error(c, apperrors.ErrInvalidParams.WithMessage("金额格式错误: %s", s))
		return decimal.Zero, false
	}
	return d, true
}
