package models

import (
	"time"
)

// RiskPolicy 每用户一份的风控配置，仅用于校验与提醒，不做静默拦截
type RiskPolicy struct {
	ID     string `gorm:"primaryKey;size:26" json:"id"`
	UserID string `gorm:"size:26;not null;uniqueIndex" json:"user_id"`

	MaxRiskPerTradePercent float64 `gorm:"default:1" json:"max_risk_per_trade_percent"` // 单笔最大风险百分比
	MaxDailyLossPercent    float64 `gorm:"default:3" json:"max_daily_loss_percent"`     // 单日最大亏损百分比
	MaxConsecutiveLosses   int     `gorm:"default:3" json:"max_consecutive_losses"`     // 最大连续亏损次数
	MaxTradeDurationMin    int     `gorm:"default:1440" json:"max_trade_duration_min"`  // 单笔最长持仓分钟数
	Notes                  string  `gorm:"size:2000" json:"notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (RiskPolicy) TableName() string {
	return "risk_policies"
}

// DefaultRiskPolicy 返回缺省风控配置
func DefaultRiskPolicy(userID string) RiskPolicy {
	return RiskPolicy{
		UserID:                 userID,
		MaxRiskPerTradePercent: 1,
		MaxDailyLossPercent:    3,
		MaxConsecutiveLosses:   3,
		MaxTradeDurationMin:    1440,
	}
}
