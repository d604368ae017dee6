package tradecalc

import "math"

// Side 交易方向
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// IsValid 检查交易方向是否合法
func (s Side) IsValid() bool {
	return s == SideLong || s == SideShort
}

// ComputeRMultiple 计算已实现的盈亏R倍数（以入场价到止损价的距离为1R）
// 任一价格缺失或入场价与止损价重合时返回 0，结果保留两位小数
func ComputeRMultiple(entry, exit, stop float64, side Side) float64 {
	if entry == 0 || exit == 0 || stop == 0 {
		return 0
	}

	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0
	}

	reward := math.Abs(exit - entry)

	profitable := (side == SideLong && exit >= entry) || (side == SideShort && exit <= entry)
	sign := 1.0
	if !profitable {
		sign = -1.0
	}

	return Round2(reward / risk * sign)
}

// Round2 保留两位小数
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
