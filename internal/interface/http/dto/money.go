package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"

// Money 金额统一以两位小数的字符串输出，避免JSON数字的浮点误差
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatTime 统一时间格式
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
