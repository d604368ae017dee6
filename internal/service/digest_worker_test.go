package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDigestRunOnce(t *testing.T) {
	db := newTestDB(t)
	tradeSvc := NewTradeService(db, newTestConfig(), newNopLogger())
	worker := NewDigestWorker(newTestConfig(), db, nil, newNopLogger())
	ctx := context.Background()

	// 没有平仓记录时直接跳过
	require.NoError(t, worker.RunOnce(ctx))

	now := time.Now()
	closeLongTrade(t, tradeSvc, "u1", "BTCUSDT", 95, now.Add(-3*time.Hour), now.Add(-2*time.Hour))
	closeLongTrade(t, tradeSvc, "u1", "BTCUSDT", 95, now.Add(-2*time.Hour), now.Add(-time.Hour))

	// 未配置通知渠道时只记录日志，不报错
	require.NoError(t, worker.RunOnce(ctx))
}
