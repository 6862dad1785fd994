// Package money 金额换算
// 金额在系统内部一律使用int64最小货币单位（1元=100分），
// 只在边界（请求解析、展示、快递接口）与十进制字符串互转。
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale 最小单位的小数位数
const Scale = 2

var hundred = decimal.NewFromInt(100)

// FromMajor 整数主单位 → 最小单位，如 180 → 18000
func FromMajor(major int64) int64 {
	return major * 100
}

// Parse 解析十进制金额字符串，如 "59.90" → 5990
// 超过两位小数直接报错，不做舍入
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("金额格式错误: %w", err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("金额不能为负数: %s", s)
	}
	if d.Exponent() < -Scale && !d.Equal(d.Round(Scale)) {
		return 0, fmt.Errorf("金额最多两位小数: %s", s)
	}
	return d.Mul(hundred).IntPart(), nil
}

// Format 最小单位 → 两位小数字符串，如 5990 → "59.90"
func Format(minor int64) string {
	return decimal.New(minor, -Scale).StringFixed(Scale)
}

// RoundMajor 最小单位四舍五入到主单位（快递代收金额只接受整数）
func RoundMajor(minor int64) int64 {
	return decimal.New(minor, -Scale).Round(0).IntPart()
}
