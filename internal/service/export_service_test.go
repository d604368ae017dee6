package service

import (
	"context"
	"testing"
	"time"

	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportTrades(t *testing.T) {
	db := newTestDB(t)
	tradeSvc := NewTradeService(db, newTestConfig(), newNopLogger())
	svc := NewExportService(db, newNopLogger())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	closed := closeLongTrade(t, tradeSvc, "u1", "BTCUSDT", 110, base, base.Add(30*time.Minute))

	rows, err := svc.ExportTrades(ctx, "u1", repo.TradeQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, closed.ID, row.ID)
	assert.Equal(t, "BTCUSDT", row.Symbol)
	assert.Equal(t, "LONG", row.Side)
	assert.Equal(t, "CLOSED", row.Status)
	assert.Equal(t, 100.0, row.PlanEntry)
	assert.Equal(t, 95.0, row.PlanStopLoss)
	assert.Equal(t, 110.0, row.PlanTakeProfit)
	require.NotNil(t, row.ExitPrice)
	assert.Equal(t, 110.0, *row.ExitPrice)
	require.NotNil(t, row.RMultiple)
	assert.Equal(t, 2.0, *row.RMultiple)
	require.NotNil(t, row.FollowedPlan)
	assert.True(t, *row.FollowedPlan)

	// 其他用户无数据
	empty, err := svc.ExportTrades(ctx, "u2", repo.TradeQuery{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExportTradesNotPaginated(t *testing.T) {
	db := newTestDB(t)
	tradeSvc := NewTradeService(db, newTestConfig(), newNopLogger())
	svc := NewExportService(db, newNopLogger())
	ctx := context.Background()

	// 超出列表默认分页大小，导出仍返回全量
	for i := 0; i < 25; i++ {
		_, err := tradeSvc.CreateTrade(ctx, "u1", CreateTradeRequest{
			Symbol: "BTCUSDT", Side: models.TradeSideLong,
			Entry: 100, StopLoss: 95, TakeProfit: 110,
		})
		require.NoError(t, err)
	}

	rows, err := svc.ExportTrades(ctx, "u1", repo.TradeQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 25)
}
