package service

import (
	"context"
	"time"

	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExportService 导出服务：把交易聚合拍平成逐行记录
type ExportService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo
}

func NewExportService(db *gorm.DB, logger *zap.Logger) *ExportService {
	return &ExportService{
		logger:    logger,
		Service:   orz.NewService(db),
		TradeRepo: repo.NewTradeRepo(db),
	}
}

// ExportRow 导出的单行记录
type ExportRow struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Timeframe string `json:"timeframe"`
	Status    string `json:"status"`

	PlanEntry      float64 `json:"planEntry"`
	PlanStopLoss   float64 `json:"planStopLoss"`
	PlanTakeProfit float64 `json:"planTakeProfit"`
	RiskReward     float64 `json:"riskReward"`

	EntryPrice *float64   `json:"entryPrice"`
	ExitPrice  *float64   `json:"exitPrice"`
	EntryTime  *time.Time `json:"entryTime"`
	ExitTime   *time.Time `json:"exitTime"`

	RMultiple      *float64 `json:"rMultiple"`
	FollowedPlan   *bool    `json:"followedPlan"`
	TimeElapsedMin *float64 `json:"timeElapsedMin"`

	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportTrades 导出用户的全部交易（按创建时间倒序，不分页）
func (s *ExportService) ExportTrades(ctx context.Context, userID string, query repo.TradeQuery) ([]ExportRow, error) {
	trades, err := s.TradeRepo.FindAllByUser(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	rows := make([]ExportRow, 0, len(trades))
	for _, trade := range trades {
		rows = append(rows, ExportRow{
			ID:             trade.ID,
			Symbol:         trade.Symbol,
			Side:           string(trade.Side),
			Timeframe:      trade.Timeframe,
			Status:         string(trade.Status),
			PlanEntry:      trade.Plan.Entry,
			PlanStopLoss:   trade.Plan.StopLoss,
			PlanTakeProfit: trade.Plan.TakeProfit,
			RiskReward:     trade.Plan.RiskReward,
			EntryPrice:     trade.Execution.EntryPrice,
			ExitPrice:      trade.Execution.ExitPrice,
			EntryTime:      trade.Execution.EntryTime,
			ExitTime:       trade.Execution.ExitTime,
			RMultiple:      trade.Analytics.RMultiple,
			FollowedPlan:   trade.Analytics.FollowedPlan,
			TimeElapsedMin: trade.Analytics.TimeElapsedMin,
			Tags:           trade.Plan.Tags,
			CreatedAt:      trade.CreatedAt,
		})
	}

	s.logger.Info("trades exported", zap.String("user_id", userID), zap.Int("count", len(rows)))
	return rows, nil
}
