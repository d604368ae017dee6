package service

import (
	"context"
	"sort"
	"time"

	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/dushixiang/tradelog/pkg/tradecalc"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportService 绩效统计服务，只读取已平仓的交易
type ReportService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo
}

func NewReportService(db *gorm.DB, logger *zap.Logger) *ReportService {
	return &ReportService{
		logger:    logger,
		Service:   orz.NewService(db),
		TradeRepo: repo.NewTradeRepo(db),
	}
}

// ReportQuery 统计过滤条件
type ReportQuery struct {
	AccountID string
	From      *time.Time
	To        *time.Time
}

// SymbolStat 按标的聚合的统计
type SymbolStat struct {
	Symbol   string  `json:"symbol"`
	Count    int     `json:"count"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"winRate"`
	AverageR float64 `json:"averageR"`
	TotalR   float64 `json:"totalR"`
}

// EquityPoint 权益曲线上的一个点（累计R）
type EquityPoint struct {
	TradeID     string     `json:"tradeId"`
	ClosedAt    *time.Time `json:"closedAt"`
	RMultiple   float64    `json:"rMultiple"`
	CumulativeR float64    `json:"cumulativeR"`
}

// Overview 绩效总览
type Overview struct {
	TotalTrades    int     `json:"totalTrades"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"winRate"`
	AverageR       float64 `json:"averageR"`
	TotalR         float64 `json:"totalR"`
	Expectancy     float64 `json:"expectancy"`
	AverageWinR    float64 `json:"averageWinR"`
	AverageLossR   float64 `json:"averageLossR"`
	FollowedRate   float64 `json:"followedRate"`
	DrawdownApprox float64 `json:"drawdownApprox"`

	BySymbol    []SymbolStat  `json:"bySymbol"`
	EquityCurve []EquityPoint `json:"equityCurve"`
}

// ErrorReport 交易纪律错误统计
type ErrorReport struct {
	TotalClosed     int `json:"totalClosed"`
	MovedStop       int `json:"movedStop"`
	EarlyExit       int `json:"earlyExit"`
	OverMaxDuration int `json:"overMaxDuration"`
	BrokePlanTotal  int `json:"brokePlanTotal"`
}

// GetOverview 统计总览：胜率、平均R、期望值、按标的分布与权益曲线
// 空集合返回全零与空切片，不报错
func (s *ReportService) GetOverview(ctx context.Context, userID string, query ReportQuery) (*Overview, error) {
	trades, err := s.TradeRepo.FindClosedByUser(ctx, userID, query.AccountID, query.From, query.To)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		BySymbol:    []SymbolStat{},
		EquityCurve: []EquityPoint{},
	}

	var totalR, winR, lossR float64
	var followed, withFollowed int
	bySymbol := make(map[string]*SymbolStat)

	var cumulative, peak, trough float64
	for _, trade := range trades {
		if trade.Analytics.RMultiple == nil {
			continue
		}
		r := *trade.Analytics.RMultiple

		overview.TotalTrades++
		totalR += r
		if r > 0 {
			overview.Wins++
			winR += r
		} else {
			overview.Losses++
			lossR += r
		}

		if trade.Analytics.FollowedPlan != nil {
			withFollowed++
			if *trade.Analytics.FollowedPlan {
				followed++
			}
		}

		stat, ok := bySymbol[trade.Symbol]
		if !ok {
			stat = &SymbolStat{Symbol: trade.Symbol}
			bySymbol[trade.Symbol] = stat
		}
		stat.Count++
		stat.TotalR += r
		if r > 0 {
			stat.Wins++
		}

		cumulative += r
		if cumulative > peak {
			peak = cumulative
		}
		if cumulative < trough {
			trough = cumulative
		}
		overview.EquityCurve = append(overview.EquityCurve, EquityPoint{
			TradeID:     trade.ID,
			ClosedAt:    trade.Execution.ExitTime,
			RMultiple:   r,
			CumulativeR: tradecalc.Round2(cumulative),
		})
	}

	if overview.TotalTrades > 0 {
		winRate := float64(overview.Wins) / float64(overview.TotalTrades)
		averageR := totalR / float64(overview.TotalTrades)
		overview.WinRate = tradecalc.Round2(winRate)
		overview.AverageR = tradecalc.Round2(averageR)
		overview.TotalR = tradecalc.Round2(totalR)
		overview.Expectancy = tradecalc.Round2(averageR * winRate)
	}
	if overview.Wins > 0 {
		overview.AverageWinR = tradecalc.Round2(winR / float64(overview.Wins))
	}
	if overview.Losses > 0 {
		overview.AverageLossR = tradecalc.Round2(lossR / float64(overview.Losses))
	}
	if withFollowed > 0 {
		overview.FollowedRate = tradecalc.Round2(float64(followed) / float64(withFollowed))
	}
	overview.DrawdownApprox = tradecalc.Round2(peak - trough)

	for _, stat := range bySymbol {
		stat.WinRate = tradecalc.Round2(float64(stat.Wins) / float64(stat.Count))
		stat.AverageR = tradecalc.Round2(stat.TotalR / float64(stat.Count))
		stat.TotalR = tradecalc.Round2(stat.TotalR)
		overview.BySymbol = append(overview.BySymbol, *stat)
	}
	sort.Slice(overview.BySymbol, func(i, j int) bool {
		if overview.BySymbol[i].Count != overview.BySymbol[j].Count {
			return overview.BySymbol[i].Count > overview.BySymbol[j].Count
		}
		return overview.BySymbol[i].Symbol < overview.BySymbol[j].Symbol
	})

	return overview, nil
}

// GetErrors 纪律错误统计：逆势移动止损、提前离场、超时持仓等
func (s *ReportService) GetErrors(ctx context.Context, userID string, query ReportQuery) (*ErrorReport, error) {
	trades, err := s.TradeRepo.FindClosedByUser(ctx, userID, query.AccountID, query.From, query.To)
	if err != nil {
		return nil, err
	}

	report := &ErrorReport{}
	for _, trade := range trades {
		report.TotalClosed++

		if trade.HasMoveStopEvent() {
			report.MovedStop++
		}

		exec := trade.Execution
		if exec.EntryPrice != nil && exec.ExitPrice != nil && exec.PlannedStop != 0 && exec.PlannedTarget > 0 {
			side := tradecalc.Side(trade.Side)
			targetR := tradecalc.ComputeRMultiple(*exec.EntryPrice, exec.PlannedTarget, exec.PlannedStop, side)
			realizedR := tradecalc.ComputeRMultiple(*exec.EntryPrice, *exec.ExitPrice, exec.PlannedStop, side)
			if targetR > 0 && realizedR < targetR-tradecalc.DefaultToleranceR {
				report.EarlyExit++
			}
		}

		if trade.Plan.MaxDurationMin > 0 && exec.EntryTime != nil && exec.ExitTime != nil {
			if tradecalc.ElapsedMinutes(*exec.EntryTime, *exec.ExitTime) > float64(trade.Plan.MaxDurationMin) {
				report.OverMaxDuration++
			}
		}

		if trade.Analytics.FollowedPlan != nil && !*trade.Analytics.FollowedPlan {
			report.BrokePlanTotal++
		}
	}
	return report, nil
}
