package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TradeStatus 交易状态
type TradeStatus string

const (
	TradeStatusPlanned   TradeStatus = "PLANNED"
	TradeStatusOpen      TradeStatus = "OPEN"
	TradeStatusClosed    TradeStatus = "CLOSED"
	TradeStatusCancelled TradeStatus = "CANCELLED"
)

// TradeSide 交易方向
type TradeSide string

const (
	TradeSideLong  TradeSide = "LONG"
	TradeSideShort TradeSide = "SHORT"
)

// IsValid 检查交易方向是否合法
func (s TradeSide) IsValid() bool {
	return s == TradeSideLong || s == TradeSideShort
}

// TradeEventType 交易事件类型
type TradeEventType string

const (
	EventEntry  TradeEventType = "ENTRY"
	EventAdd    TradeEventType = "ADD"
	EventReduce TradeEventType = "REDUCE"
	EventMoveSL TradeEventType = "MOVE_SL"
	EventMoveTP TradeEventType = "MOVE_TP"
	EventExit   TradeEventType = "EXIT"
	EventNote   TradeEventType = "NOTE"
)

// IsValid 检查事件类型是否合法
func (t TradeEventType) IsValid() bool {
	switch t {
	case EventEntry, EventAdd, EventReduce, EventMoveSL, EventMoveTP, EventExit, EventNote:
		return true
	}
	return false
}

// TradeEvent 交易事件，事件日志只追加、不删除、不重排
// 按事件类型携带各自的字段：MOVE_SL 携带 NewStopLoss，MOVE_TP 携带 NewTakeProfit
type TradeEvent struct {
	Type          TradeEventType `json:"type"`
	Price         *float64       `json:"price,omitempty"`           // 成交价格
	Quantity      *float64       `json:"quantity,omitempty"`        // 成交数量
	Note          string         `json:"note,omitempty"`            // 备注
	NewStopLoss   *float64       `json:"new_stop_loss,omitempty"`   // 仅 MOVE_SL
	NewTakeProfit *float64       `json:"new_take_profit,omitempty"` // 仅 MOVE_TP
	OccurredAt    time.Time      `json:"occurred_at"`               // 事件发生时间，缺省为提交时间
}

// TradePlan 交易计划，创建后仅在 PLANNED 状态下允许修改
type TradePlan struct {
	Entry          float64                     `gorm:"not null" json:"entry"`       // 计划入场价
	StopLoss       float64                     `gorm:"not null" json:"stop_loss"`   // 止损价
	TakeProfit     float64                     `gorm:"not null" json:"take_profit"` // 止盈价
	RiskReward     float64                     `gorm:"not null" json:"risk_reward"` // 盈亏比，由价格推导
	MaxDurationMin int                         `json:"max_duration_min"`            // 最长持仓分钟数，0表示不限
	PositionSize   float64                     `json:"position_size"`               // 仓位大小
	RiskPercent    float64                     `json:"risk_percent"`                // 单笔风险百分比
	Context        string                      `gorm:"size:2000" json:"context"`    // 交易背景
	EmotionPre     int                         `json:"emotion_pre"`                 // 入场前情绪评分
	Tags           datatypes.JSONSlice[string] `gorm:"type:json" json:"tags"`       // 标签集合
}

// TradeExecution 执行快照，由首个 ENTRY/EXIT 事件各写入一次
// PlannedStop/PlannedTarget 在开仓时固化计划价格，分析计算始终以它们为基准，
// 不受之后 MOVE_SL/MOVE_TP 修改工作计划的影响
type TradeExecution struct {
	EntryPrice    *float64   `json:"entry_price,omitempty"`
	EntryTime     *time.Time `json:"entry_time,omitempty"`
	ExitPrice     *float64   `json:"exit_price,omitempty"`
	ExitTime      *time.Time `json:"exit_time,omitempty"`
	PlannedStop   float64    `json:"planned_stop"`
	PlannedTarget float64    `json:"planned_target"`
}

// TradeAnalytics 衍生指标，仅在 EXIT 事件时计算
type TradeAnalytics struct {
	RMultiple      *float64 `json:"r_multiple,omitempty"`       // 盈亏R倍数
	FollowedPlan   *bool    `json:"followed_plan,omitempty"`    // 是否按计划执行
	TimeElapsedMin *float64 `json:"time_elapsed_min,omitempty"` // 持仓分钟数
}

// Attachment 交易附件（截图、复盘链接等）
type Attachment struct {
	URL     string    `json:"url"`
	Type    string    `json:"type"`
	AddedAt time.Time `json:"added_at"`
}

// Trade 交易聚合根：一份计划、一条只追加的事件日志、一份执行快照、一份衍生指标
type Trade struct {
	ID        string `gorm:"primaryKey;size:26" json:"id"`
	UserID    string `gorm:"size:26;not null;index" json:"user_id"`
	AccountID string `gorm:"size:26;index" json:"account_id,omitempty"`
	SetupID   string `gorm:"size:26" json:"setup_id,omitempty"`

	Symbol    string    `gorm:"size:20;not null;index" json:"symbol"`
	Side      TradeSide `gorm:"size:10;not null" json:"side"`
	Timeframe string    `gorm:"size:10" json:"timeframe,omitempty"`

	Plan      TradePlan      `gorm:"embedded;embeddedPrefix:plan_" json:"plan"`
	Execution TradeExecution `gorm:"embedded;embeddedPrefix:exec_" json:"execution"`
	Analytics TradeAnalytics `gorm:"embedded;embeddedPrefix:analytics_" json:"analytics"`

	Events      datatypes.JSONSlice[TradeEvent] `gorm:"type:json" json:"events"`
	Attachments datatypes.JSONSlice[Attachment] `gorm:"type:json" json:"attachments"`

	Status TradeStatus `gorm:"size:10;not null;index;default:PLANNED" json:"status"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Trade) TableName() string {
	return "trades"
}

// HasMoveStopEvent 事件日志中是否存在 MOVE_SL 事件
func (t *Trade) HasMoveStopEvent() bool {
	for _, event := range t.Events {
		if event.Type == EventMoveSL {
			return true
		}
	}
	return false
}

// StopMoves 收集 MOVE_SL 事件携带的新止损价（按日志顺序）
func (t *Trade) StopMoves() []float64 {
	var moves []float64
	for _, event := range t.Events {
		if event.Type == EventMoveSL && event.NewStopLoss != nil {
			moves = append(moves, *event.NewStopLoss)
		}
	}
	return moves
}
