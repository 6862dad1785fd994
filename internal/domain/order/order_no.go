package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// GenerateOrderNo 生成订单号
// 格式：BW + yyyyMMddHHmmss + 6位随机数，例如 BW20240501103000123456
func GenerateOrderNo(now time.Time) string {
	return fmt.Sprintf("BW%s%06d", now.Format("20060102150405"), rand.IntN(1000000))
}
