package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RiskService 风控策略服务：每个用户一份策略，校验结果仅作提示不做拦截
type RiskService struct {
	logger *zap.Logger

	*orz.Service
	RiskPolicyRepo *repo.RiskPolicyRepo
	TradeRepo      *repo.TradeRepo
}

func NewRiskService(db *gorm.DB, logger *zap.Logger) *RiskService {
	return &RiskService{
		logger:         logger,
		Service:        orz.NewService(db),
		RiskPolicyRepo: repo.NewRiskPolicyRepo(db),
		TradeRepo:      repo.NewTradeRepo(db),
	}
}

// Violation 一条风控提示
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UpdatePolicyRequest 更新风控策略请求
type UpdatePolicyRequest struct {
	MaxRiskPerTradePercent float64 `json:"max_risk_per_trade_percent" validate:"gte=0,lte=100"`
	MaxDailyLossPercent    float64 `json:"max_daily_loss_percent" validate:"gte=0,lte=100"`
	MaxConsecutiveLosses   int     `json:"max_consecutive_losses" validate:"gte=0"`
	MaxTradeDurationMin    int     `json:"max_trade_duration_min" validate:"gte=0"`
	Notes                  string  `json:"notes" validate:"max=2000"`
}

// ValidatePlanRequest 计划风控校验请求
type ValidatePlanRequest struct {
	RiskPercent    float64 `json:"risk_percent" validate:"gte=0"`
	MaxDurationMin int     `json:"max_duration_min" validate:"gte=0"`
}

// GetPolicy 获取用户的风控策略，不存在时用默认值创建
func (s *RiskService) GetPolicy(ctx context.Context, userID string) (*models.RiskPolicy, error) {
	policy, err := s.RiskPolicyRepo.FindByUserId(ctx, userID)
	if err == nil {
		return &policy, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.DefaultRiskPolicy(userID)
	created.ID = ulid.Make().String()
	if err := s.RiskPolicyRepo.Create(ctx, &created); err != nil {
		return nil, err
	}
	s.logger.Info("risk policy initialized", zap.String("user_id", userID))
	return &created, nil
}

// UpdatePolicy 更新风控策略（不存在则先按默认值创建）
func (s *RiskService) UpdatePolicy(ctx context.Context, userID string, req UpdatePolicyRequest) (*models.RiskPolicy, error) {
	var result models.RiskPolicy

	err := s.Transaction(ctx, func(ctx context.Context) error {
		policy, err := s.GetPolicy(ctx, userID)
		if err != nil {
			return err
		}

		policy.MaxRiskPerTradePercent = req.MaxRiskPerTradePercent
		policy.MaxDailyLossPercent = req.MaxDailyLossPercent
		policy.MaxConsecutiveLosses = req.MaxConsecutiveLosses
		policy.MaxTradeDurationMin = req.MaxTradeDurationMin
		policy.Notes = req.Notes

		if err := s.RiskPolicyRepo.Save(ctx, policy); err != nil {
			return err
		}
		result = *policy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidatePlan 按风控策略检查一份交易计划，返回提示列表（可能为空）
func (s *RiskService) ValidatePlan(ctx context.Context, userID string, req ValidatePlanRequest) ([]Violation, error) {
	policy, err := s.GetPolicy(ctx, userID)
	if err != nil {
		return nil, err
	}

	violations := make([]Violation, 0)

	if policy.MaxRiskPerTradePercent > 0 && req.RiskPercent > policy.MaxRiskPerTradePercent {
		violations = append(violations, Violation{
			Code: "RISK_PER_TRADE",
			Message: fmt.Sprintf("单笔风险 %.2f%% 超过上限 %.2f%%",
				req.RiskPercent, policy.MaxRiskPerTradePercent),
		})
	}

	if policy.MaxTradeDurationMin > 0 && req.MaxDurationMin > policy.MaxTradeDurationMin {
		violations = append(violations, Violation{
			Code: "MAX_DURATION",
			Message: fmt.Sprintf("计划持仓 %d 分钟超过上限 %d 分钟",
				req.MaxDurationMin, policy.MaxTradeDurationMin),
		})
	}

	if policy.MaxConsecutiveLosses > 0 {
		streak, err := s.consecutiveLosses(ctx, userID, policy.MaxConsecutiveLosses)
		if err != nil {
			return nil, err
		}
		if streak >= policy.MaxConsecutiveLosses {
			violations = append(violations, Violation{
				Code:    "CONSECUTIVE_LOSSES",
				Message: fmt.Sprintf("已连续亏损 %d 笔，达到上限 %d 笔", streak, policy.MaxConsecutiveLosses),
			})
		}
	}

	return violations, nil
}

// consecutiveLosses 统计最近一段已平仓交易中的连续亏损笔数
func (s *RiskService) consecutiveLosses(ctx context.Context, userID string, limit int) (int, error) {
	trades, err := s.TradeRepo.FindRecentClosedByUser(ctx, userID, limit)
	if err != nil {
		return 0, err
	}

	streak := 0
	for _, trade := range trades {
		if trade.Analytics.RMultiple == nil {
			continue
		}
		if *trade.Analytics.RMultiple >= 0 {
			break
		}
		streak++
	}
	return streak, nil
}
