package service

import (
	"context"
	"testing"
	"time"

	"github.com/dushixiang/tradelog/internal/config"
	"github.com/dushixiang/tradelog/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(models.Trade{}, models.RiskPolicy{}, models.Setup{})
	require.NoError(t, err)

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Journal: config.JournalConf{ToleranceR: 0.1},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}

// closeLongTrade 走完整生命周期制造一笔已平仓的多头交易
func closeLongTrade(t *testing.T, svc *TradeService, userID, symbol string, exit float64, entryAt, exitAt time.Time) *models.Trade {
	t.Helper()
	ctx := context.Background()

	trade, err := svc.CreateTrade(ctx, userID, CreateTradeRequest{
		Symbol:     symbol,
		Side:       models.TradeSideLong,
		Entry:      100,
		StopLoss:   95,
		TakeProfit: 110,
	})
	require.NoError(t, err)

	trade, err = svc.ApplyEvent(ctx, userID, trade.ID, AddEventRequest{
		Type:       models.EventEntry,
		OccurredAt: timePtr(entryAt),
	})
	require.NoError(t, err)

	trade, err = svc.ApplyEvent(ctx, userID, trade.ID, AddEventRequest{
		Type:       models.EventExit,
		Price:      floatPtr(exit),
		OccurredAt: timePtr(exitAt),
	})
	require.NoError(t, err)
	require.Equal(t, models.TradeStatusClosed, trade.Status)

	return trade
}

func newNopLogger() *zap.Logger {
	return zap.NewNop()
}
