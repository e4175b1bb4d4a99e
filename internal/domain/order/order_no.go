package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NoGenerator 订单号生成器
// 测试中替换为固定序列来模拟订单号冲突
type NoGenerator func() string

// GenerateOrderNo 生成订单号
// 格式: ORD + 秒级时间戳 + 6位随机数，例如 ORD1699248000123456
// 同一秒内有百万分之一的冲突概率，由调用方检测冲突后重新生成
func GenerateOrderNo() string {
	return fmt.Sprintf("ORD%d%06d", time.Now().Unix(), rand.IntN(1000000))
}
