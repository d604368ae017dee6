package tradecalc

import "time"

// DefaultToleranceR 提前离场判定的默认容差（R）
const DefaultToleranceR = 0.1

// ComplianceInput 计划执行判定的输入
// PlanStop/PlanTarget 为开仓时计划的止损/止盈价，StopMoves 为事件日志中
// MOVE_SL 事件携带的新止损价（按日志顺序）
type ComplianceInput struct {
	Side       Side
	EntryPrice float64
	ExitPrice  float64

	PlanStop   float64
	PlanTarget float64

	MaxDurationMin int

	StopMoves []float64

	EntryTime *time.Time
	ExitTime  *time.Time

	// 为 0 时使用 DefaultToleranceR
	ToleranceR float64
}

// FollowedPlan 判定一笔已平仓交易是否按计划执行
// 任一违规即失败：逆势移动止损、未达目标提前离场、超出最长持仓时间
func FollowedPlan(in ComplianceInput) bool {
	if in.EntryPrice == 0 || in.ExitPrice == 0 {
		return false
	}

	tolerance := in.ToleranceR
	if tolerance == 0 {
		tolerance = DefaultToleranceR
	}

	// 止损向不利方向移动：多头上移、空头下移
	for _, newStop := range in.StopMoves {
		if in.Side == SideLong && newStop > in.PlanStop {
			return false
		}
		if in.Side == SideShort && newStop < in.PlanStop {
			return false
		}
	}

	realized := ComputeRMultiple(in.EntryPrice, in.ExitPrice, in.PlanStop, in.Side)
	target := ComputeRMultiple(in.EntryPrice, in.PlanTarget, in.PlanStop, in.Side)
	if target > 0 && realized < target-tolerance {
		return false
	}

	if in.MaxDurationMin > 0 && in.EntryTime != nil && in.ExitTime != nil {
		elapsed := ElapsedMinutes(*in.EntryTime, *in.ExitTime)
		if elapsed > float64(in.MaxDurationMin) {
			return false
		}
	}

	return true
}

// ElapsedMinutes 计算两个时间点之间的分钟数（取绝对值）
func ElapsedMinutes(from, to time.Time) float64 {
	minutes := to.Sub(from).Minutes()
	if minutes < 0 {
		return -minutes
	}
	return minutes
}
