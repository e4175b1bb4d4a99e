package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xiebiao/mall/internal/domain/cart"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_.:\-]{1,64}$`)

// ValidateToken 客户端提供的幂等令牌: 1-64位字母、数字或 _ . : -
func ValidateToken(token string) error {
	if !tokenPattern.MatchString(token) {
		return ErrInvalidToken
	}
	return nil
}

// TokenKey 由用户和客户端令牌得到去重键
func TokenKey(userID uint, token string) string {
	return fmt.Sprintf("tok:%d:%s", userID, token)
}

// CartKey 没有令牌时，由用户、购物车内容和时间桶得到去重键
// 同一购物车在同一个时间桶内的重复提交得到相同的键
func CartKey(userID uint, items []cart.Item, now time.Time, bucket time.Duration) string {
	var sb strings.Builder
	for _, it := range items { // Items()已按商品ID排序
		fmt.Fprintf(&sb, "%d:%d;", it.ProductID, it.Quantity)
	}
	sum := sha256.Sum256([]byte(sb.String()))

	var slot int64
	if bucket > 0 {
		slot = now.UnixNano() / int64(bucket)
	}
	return fmt.Sprintf("cart:%d:%s:%d", userID, hex.EncodeToString(sum[:16]), slot)
}
