package service

import (
	"context"
	"testing"
	"time"

	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/dushixiang/tradelog/internal/xe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTradeService(t *testing.T) *TradeService {
	t.Helper()
	return NewTradeService(newTestDB(t), newTestConfig(), newNopLogger())
}

func TestCreateTrade(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol:     "BTCUSDT",
		Side:       models.TradeSideLong,
		Entry:      100,
		StopLoss:   95,
		TakeProfit: 110,
		Tags:       []string{"breakout"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, models.TradeStatusPlanned, trade.Status)
	assert.Equal(t, 2.0, trade.Plan.RiskReward)
	assert.Empty(t, trade.Events)

	found, err := svc.GetTrade(ctx, "u1", trade.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.ID, found.ID)

	// 其他用户不可见
	_, err = svc.GetTrade(ctx, "u2", trade.ID)
	assert.Error(t, err)
}

func TestCreateTradeValidation(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateTradeRequest
		wantErr error
	}{
		{
			name: "long stop above entry",
			req: CreateTradeRequest{
				Symbol: "BTCUSDT", Side: models.TradeSideLong,
				Entry: 100, StopLoss: 105, TakeProfit: 110,
			},
			wantErr: xe.ErrPlanOrdering,
		},
		{
			name: "long target below entry",
			req: CreateTradeRequest{
				Symbol: "BTCUSDT", Side: models.TradeSideLong,
				Entry: 100, StopLoss: 95, TakeProfit: 99,
			},
			wantErr: xe.ErrPlanOrdering,
		},
		{
			name: "short stop below entry",
			req: CreateTradeRequest{
				Symbol: "BTCUSDT", Side: models.TradeSideShort,
				Entry: 100, StopLoss: 95, TakeProfit: 90,
			},
			wantErr: xe.ErrPlanOrdering,
		},
		{
			name: "risk reward below floor",
			req: CreateTradeRequest{
				Symbol: "BTCUSDT", Side: models.TradeSideLong,
				Entry: 100, StopLoss: 90, TakeProfit: 102,
			},
			wantErr: xe.ErrRiskRewardTooLow,
		},
		{
			name: "invalid side",
			req: CreateTradeRequest{
				Symbol: "BTCUSDT", Side: "BOTH",
				Entry: 100, StopLoss: 95, TakeProfit: 110,
			},
			wantErr: xe.ErrInvalidSide,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTrade(ctx, "u1", tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// 校验失败不产生任何数据
	trades, err := svc.FindTrades(ctx, "u1", repo.TradeQuery{})
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestLifecycleEntryExit(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()
	entryAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "BTCUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)

	// PLANNED 状态不接受 EXIT
	_, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type: models.EventExit, Price: floatPtr(110),
	})
	assert.ErrorIs(t, err, xe.ErrTradeNotOpen)

	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type:       models.EventEntry,
		OccurredAt: timePtr(entryAt),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusOpen, trade.Status)
	assert.Len(t, trade.Events, 1)
	require.NotNil(t, trade.Execution.EntryPrice)
	assert.Equal(t, 100.0, *trade.Execution.EntryPrice)
	assert.Equal(t, 95.0, trade.Execution.PlannedStop)
	assert.Equal(t, 110.0, trade.Execution.PlannedTarget)

	// 已开仓不接受重复 ENTRY
	_, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{Type: models.EventEntry})
	assert.ErrorIs(t, err, xe.ErrTradeAlreadyOpen)

	// EXIT 必须携带价格
	_, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{Type: models.EventExit})
	assert.ErrorIs(t, err, xe.ErrExitPriceRequired)

	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type:       models.EventExit,
		Price:      floatPtr(110),
		OccurredAt: timePtr(entryAt.Add(30 * time.Minute)),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusClosed, trade.Status)
	assert.Len(t, trade.Events, 2)

	require.NotNil(t, trade.Analytics.RMultiple)
	assert.Equal(t, 2.0, *trade.Analytics.RMultiple)
	require.NotNil(t, trade.Analytics.FollowedPlan)
	assert.True(t, *trade.Analytics.FollowedPlan)
	require.NotNil(t, trade.Analytics.TimeElapsedMin)
	assert.Equal(t, 30.0, *trade.Analytics.TimeElapsedMin)

	// 已平仓不再接受事件
	_, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type: models.EventExit, Price: floatPtr(120),
	})
	assert.ErrorIs(t, err, xe.ErrTradeFinished)

	// 被拒绝的事件不会写入日志
	found, err := svc.GetTrade(ctx, "u1", trade.ID)
	require.NoError(t, err)
	assert.Len(t, found.Events, 2)
}

func TestEntryEventPriceOverridesPlan(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "ETHUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)

	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type:  models.EventEntry,
		Price: floatPtr(100.5),
	})
	require.NoError(t, err)
	require.NotNil(t, trade.Execution.EntryPrice)
	assert.Equal(t, 100.5, *trade.Execution.EntryPrice)
}

func TestMoveStopAgainstBreaksPlan(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "BTCUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)

	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{Type: models.EventEntry})
	require.NoError(t, err)

	// 多头把止损上移到计划价之上
	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type:        models.EventMoveSL,
		NewStopLoss: floatPtr(98),
	})
	require.NoError(t, err)
	assert.Equal(t, 98.0, trade.Plan.StopLoss)
	// 开仓时固化的计划止损不变
	assert.Equal(t, 95.0, trade.Execution.PlannedStop)

	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type:  models.EventExit,
		Price: floatPtr(110),
	})
	require.NoError(t, err)

	require.NotNil(t, trade.Analytics.FollowedPlan)
	assert.False(t, *trade.Analytics.FollowedPlan)
	// R倍数仍以初始风险距离计算
	require.NotNil(t, trade.Analytics.RMultiple)
	assert.Equal(t, 2.0, *trade.Analytics.RMultiple)
}

func TestMoveTargetAndPositionEvents(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "BTCUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)

	// 持仓事件要求已开仓
	for _, eventType := range []models.TradeEventType{
		models.EventMoveTP, models.EventAdd, models.EventReduce,
	} {
		_, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{Type: eventType})
		assert.ErrorIs(t, err, xe.ErrTradeNotOpen)
	}

	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{Type: models.EventEntry})
	require.NoError(t, err)

	// MOVE_TP 修改工作计划，开仓时固化的目标价不变
	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type:          models.EventMoveTP,
		NewTakeProfit: floatPtr(105),
	})
	require.NoError(t, err)
	assert.Equal(t, 105.0, trade.Plan.TakeProfit)
	assert.Equal(t, 110.0, trade.Execution.PlannedTarget)

	// ADD/REDUCE 仅记录，不改动执行快照
	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type: models.EventAdd, Price: floatPtr(101), Quantity: floatPtr(0.5),
	})
	require.NoError(t, err)
	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type: models.EventReduce, Price: floatPtr(103), Quantity: floatPtr(0.5),
	})
	require.NoError(t, err)
	assert.Len(t, trade.Events, 4)
	require.NotNil(t, trade.Execution.EntryPrice)
	assert.Equal(t, 100.0, *trade.Execution.EntryPrice)
	assert.Nil(t, trade.Execution.ExitPrice)

	// 分析以开仓时固化的目标价为基准：止盈被下移后在 105 离场仍算提前离场
	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type: models.EventExit, Price: floatPtr(105),
	})
	require.NoError(t, err)
	require.NotNil(t, trade.Analytics.RMultiple)
	assert.Equal(t, 1.0, *trade.Analytics.RMultiple)
	require.NotNil(t, trade.Analytics.FollowedPlan)
	assert.False(t, *trade.Analytics.FollowedPlan)
}

func TestNoteEventAllowedAnytime(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "BTCUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)

	trade, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{
		Type: models.EventNote, Note: "等待回踩确认",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusPlanned, trade.Status)
	assert.Len(t, trade.Events, 1)
}

func TestUpdatePlan(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "BTCUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)

	// 合并后的完整计划需重新满足排序与盈亏比约束
	_, err = svc.UpdatePlan(ctx, "u1", trade.ID, UpdatePlanRequest{
		StopLoss: floatPtr(120),
	})
	assert.ErrorIs(t, err, xe.ErrPlanOrdering)

	updated, err := svc.UpdatePlan(ctx, "u1", trade.ID, UpdatePlanRequest{
		TakeProfit: floatPtr(115),
	})
	require.NoError(t, err)
	assert.Equal(t, 115.0, updated.Plan.TakeProfit)
	assert.Equal(t, 3.0, updated.Plan.RiskReward)

	// 开仓后禁止修改计划
	_, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{Type: models.EventEntry})
	require.NoError(t, err)
	_, err = svc.UpdatePlan(ctx, "u1", trade.ID, UpdatePlanRequest{
		TakeProfit: floatPtr(120),
	})
	assert.ErrorIs(t, err, xe.ErrTradeNotPlanned)
}

func TestCancelTrade(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "BTCUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelTrade(ctx, "u1", trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusCancelled, cancelled.Status)

	// 已取消的交易不接受任何状态事件
	_, err = svc.ApplyEvent(ctx, "u1", trade.ID, AddEventRequest{Type: models.EventEntry})
	assert.ErrorIs(t, err, xe.ErrTradeFinished)

	// 非 PLANNED 状态不可取消
	open, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "ETHUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)
	_, err = svc.ApplyEvent(ctx, "u1", open.ID, AddEventRequest{Type: models.EventEntry})
	require.NoError(t, err)
	_, err = svc.CancelTrade(ctx, "u1", open.ID)
	assert.ErrorIs(t, err, xe.ErrTradeNotPlanned)
}

func TestAddAttachment(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
		Symbol: "BTCUSDT", Side: models.TradeSideLong,
		Entry: 100, StopLoss: 95, TakeProfit: 110,
	})
	require.NoError(t, err)

	updated, err := svc.AddAttachment(ctx, "u1", trade.ID, AddAttachmentRequest{
		URL:  "https://example.com/chart.png",
		Type: "image",
	})
	require.NoError(t, err)
	require.Len(t, updated.Attachments, 1)
	assert.Equal(t, "https://example.com/chart.png", updated.Attachments[0].URL)
}

func TestFindTradesDefaultPageSize(t *testing.T) {
	db := newTestDB(t)
	conf := newTestConfig()
	conf.Journal.DefaultPageSize = 2
	svc := NewTradeService(db, conf, newNopLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
			Symbol: "BTCUSDT", Side: models.TradeSideLong,
			Entry: 100, StopLoss: 95, TakeProfit: 110,
		})
		require.NoError(t, err)
	}

	// 未指定分页大小时使用配置默认值
	trades, err := svc.FindTrades(ctx, "u1", repo.TradeQuery{})
	require.NoError(t, err)
	assert.Len(t, trades, 2)

	// 显式分页大小优先
	trades, err = svc.FindTrades(ctx, "u1", repo.TradeQuery{Size: 3})
	require.NoError(t, err)
	assert.Len(t, trades, 3)
}

func TestListTags(t *testing.T) {
	svc := newTradeService(t)
	ctx := context.Background()

	for _, tags := range [][]string{
		{"breakout", "trend"},
		{"trend", "reversal"},
	} {
		_, err := svc.CreateTrade(ctx, "u1", CreateTradeRequest{
			Symbol: "BTCUSDT", Side: models.TradeSideLong,
			Entry: 100, StopLoss: 95, TakeProfit: 110,
			Tags: tags,
		})
		require.NoError(t, err)
	}

	tags, err := svc.ListTags(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"breakout", "reversal", "trend"}, tags)

	other, err := svc.ListTags(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
