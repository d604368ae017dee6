package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams    = orz.NewError(10400, "参数无效")
	ErrUnauthorized     = orz.NewError(10401, "缺少用户标识")
	ErrPermissionDenied = orz.NewError(10403, "您没有权限查看/修改/删除此数据")

	// 计划校验
	ErrPlanOrdering     = orz.NewError(10001, "多头需满足 止损<入场<止盈，空头需满足 止盈<入场<止损")
	ErrRiskRewardTooLow = orz.NewError(10002, "盈亏比不能低于 0.5")
	ErrInvalidSide      = orz.NewError(10003, "交易方向无效")

	// 状态机
	ErrTradeNotPlanned  = orz.NewError(10010, "仅计划状态的交易可以执行该操作")
	ErrTradeAlreadyOpen = orz.NewError(10011, "交易已开仓，不能重复开仓")
	ErrTradeNotOpen     = orz.NewError(10012, "交易尚未开仓")
	ErrTradeFinished    = orz.NewError(10013, "交易已结束，不再接受该事件")

	// 事件
	ErrInvalidEventType  = orz.NewError(10020, "事件类型无效")
	ErrExitPriceRequired = orz.NewError(10021, "平仓事件必须携带价格")
)
