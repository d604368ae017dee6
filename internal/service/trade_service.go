package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/dushixiang/tradelog/internal/config"
	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/dushixiang/tradelog/internal/xe"
	"github.com/dushixiang/tradelog/pkg/tradecalc"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TradeService 交易生命周期服务：计划 → 开仓 → 平仓 的状态机
// 同一笔交易的事件在事务内串行应用，不同交易之间互不影响
type TradeService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo

	toleranceR      float64
	defaultPageSize int
}

// NewTradeService 创建交易服务
func NewTradeService(db *gorm.DB, conf *config.Config, logger *zap.Logger) *TradeService {
	toleranceR := conf.Journal.ToleranceR
	if toleranceR == 0 {
		toleranceR = tradecalc.DefaultToleranceR
	}
	defaultPageSize := conf.Journal.DefaultPageSize
	if defaultPageSize < 1 {
		defaultPageSize = 20
	}
	return &TradeService{
		logger:          logger,
		Service:         orz.NewService(db),
		TradeRepo:       repo.NewTradeRepo(db),
		toleranceR:      toleranceR,
		defaultPageSize: defaultPageSize,
	}
}

// CreateTradeRequest 创建交易请求
type CreateTradeRequest struct {
	Symbol    string           `json:"symbol" validate:"required,max=20"`
	Side      models.TradeSide `json:"side" validate:"required"`
	Timeframe string           `json:"timeframe" validate:"max=10"`
	SetupID   string           `json:"setup_id"`
	AccountID string           `json:"account_id"`

	Entry          float64  `json:"entry" validate:"required,gt=0"`
	StopLoss       float64  `json:"stop_loss" validate:"required,gt=0"`
	TakeProfit     float64  `json:"take_profit" validate:"required,gt=0"`
	MaxDurationMin int      `json:"max_duration_min" validate:"gte=0"`
	PositionSize   float64  `json:"position_size" validate:"gte=0"`
	RiskPercent    float64  `json:"risk_percent" validate:"gte=0"`
	Context        string   `json:"context" validate:"max=2000"`
	EmotionPre     int      `json:"emotion_pre" validate:"gte=0,lte=10"`
	Tags           []string `json:"tags"`
}

// UpdatePlanRequest 修改交易计划请求，未提供的字段保持不变
type UpdatePlanRequest struct {
	Entry          *float64 `json:"entry" validate:"omitempty,gt=0"`
	StopLoss       *float64 `json:"stop_loss" validate:"omitempty,gt=0"`
	TakeProfit     *float64 `json:"take_profit" validate:"omitempty,gt=0"`
	MaxDurationMin *int     `json:"max_duration_min" validate:"omitempty,gte=0"`
	PositionSize   *float64 `json:"position_size" validate:"omitempty,gte=0"`
	RiskPercent    *float64 `json:"risk_percent" validate:"omitempty,gte=0"`
	Context        *string  `json:"context" validate:"omitempty,max=2000"`
	EmotionPre     *int     `json:"emotion_pre" validate:"omitempty,gte=0,lte=10"`
	Tags           []string `json:"tags"`
}

// AddEventRequest 追加交易事件请求
type AddEventRequest struct {
	Type          models.TradeEventType `json:"type" validate:"required"`
	Price         *float64              `json:"price" validate:"omitempty,gt=0"`
	Quantity      *float64              `json:"quantity" validate:"omitempty,gt=0"`
	Note          string                `json:"note" validate:"max=2000"`
	NewStopLoss   *float64              `json:"new_stop_loss" validate:"omitempty,gt=0"`
	NewTakeProfit *float64              `json:"new_take_profit" validate:"omitempty,gt=0"`
	OccurredAt    *time.Time            `json:"occurred_at"`
}

// AddAttachmentRequest 追加附件请求
type AddAttachmentRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Type string `json:"type" validate:"max=20"`
}

// CreateTrade 创建一笔计划中的交易，计划校验失败时不产生任何数据
func (s *TradeService) CreateTrade(ctx context.Context, userID string, req CreateTradeRequest) (*models.Trade, error) {
	if !req.Side.IsValid() {
		return nil, xe.ErrInvalidSide
	}
	if err := validatePlan(req.Side, req.Entry, req.StopLoss, req.TakeProfit); err != nil {
		return nil, err
	}

	trade := &models.Trade{
		ID:        ulid.Make().String(),
		UserID:    userID,
		AccountID: req.AccountID,
		SetupID:   req.SetupID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Timeframe: req.Timeframe,
		Plan: models.TradePlan{
			Entry:          req.Entry,
			StopLoss:       req.StopLoss,
			TakeProfit:     req.TakeProfit,
			RiskReward:     riskReward(req.Entry, req.StopLoss, req.TakeProfit),
			MaxDurationMin: req.MaxDurationMin,
			PositionSize:   req.PositionSize,
			RiskPercent:    req.RiskPercent,
			Context:        req.Context,
			EmotionPre:     req.EmotionPre,
			Tags:           req.Tags,
		},
		Events:      []models.TradeEvent{},
		Attachments: []models.Attachment{},
		Status:      models.TradeStatusPlanned,
	}

	if err := s.TradeRepo.Create(ctx, trade); err != nil {
		return nil, err
	}

	s.logger.Info("trade created",
		zap.String("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("side", string(trade.Side)))

	return trade, nil
}

// GetTrade 查询单笔交易（按用户范围）
func (s *TradeService) GetTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	trade, err := s.TradeRepo.FindOneByUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// FindTrades 按过滤条件查询用户的交易，未指定分页大小时使用配置的默认值
func (s *TradeService) FindTrades(ctx context.Context, userID string, query repo.TradeQuery) ([]models.Trade, error) {
	if query.Size < 1 {
		query.Size = s.defaultPageSize
	}
	return s.TradeRepo.FindByUser(ctx, userID, query)
}

// UpdatePlan 修改交易计划，仅允许 PLANNED 状态；合并后的完整计划重新校验
func (s *TradeService) UpdatePlan(ctx context.Context, userID, id string, req UpdatePlanRequest) (*models.Trade, error) {
	var result models.Trade

	err := s.Transaction(ctx, func(ctx context.Context) error {
		trade, err := s.TradeRepo.FindOneByUser(ctx, userID, id)
		if err != nil {
			return err
		}
		if trade.Status != models.TradeStatusPlanned {
			return xe.ErrTradeNotPlanned
		}

		plan := trade.Plan
		if req.Entry != nil {
			plan.Entry = *req.Entry
		}
		if req.StopLoss != nil {
			plan.StopLoss = *req.StopLoss
		}
		if req.TakeProfit != nil {
			plan.TakeProfit = *req.TakeProfit
		}
		if req.MaxDurationMin != nil {
			plan.MaxDurationMin = *req.MaxDurationMin
		}
		if req.PositionSize != nil {
			plan.PositionSize = *req.PositionSize
		}
		if req.RiskPercent != nil {
			plan.RiskPercent = *req.RiskPercent
		}
		if req.Context != nil {
			plan.Context = *req.Context
		}
		if req.EmotionPre != nil {
			plan.EmotionPre = *req.EmotionPre
		}
		if req.Tags != nil {
			plan.Tags = req.Tags
		}

		if err := validatePlan(trade.Side, plan.Entry, plan.StopLoss, plan.TakeProfit); err != nil {
			return err
		}
		plan.RiskReward = riskReward(plan.Entry, plan.StopLoss, plan.TakeProfit)

		trade.Plan = plan
		if err := s.TradeRepo.Save(ctx, &trade); err != nil {
			return err
		}
		result = trade
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ApplyEvent 追加一个事件并推进状态机
// ENTRY 要求 PLANNED，EXIT 要求 OPEN，ADD/REDUCE/MOVE_SL/MOVE_TP 要求 OPEN，
// NOTE 在任何状态下都接受；被拒绝的事件不会写入日志
func (s *TradeService) ApplyEvent(ctx context.Context, userID, id string, req AddEventRequest) (*models.Trade, error) {
	if !req.Type.IsValid() {
		return nil, xe.ErrInvalidEventType
	}

	var result models.Trade

	err := s.Transaction(ctx, func(ctx context.Context) error {
		trade, err := s.TradeRepo.FindOneByUser(ctx, userID, id)
		if err != nil {
			return err
		}

		if err := checkEventAllowed(trade.Status, req.Type); err != nil {
			return err
		}
		if req.Type == models.EventExit && req.Price == nil {
			return xe.ErrExitPriceRequired
		}

		occurredAt := time.Now()
		if req.OccurredAt != nil {
			occurredAt = *req.OccurredAt
		}

		event := models.TradeEvent{
			Type:          req.Type,
			Price:         req.Price,
			Quantity:      req.Quantity,
			Note:          req.Note,
			NewStopLoss:   req.NewStopLoss,
			NewTakeProfit: req.NewTakeProfit,
			OccurredAt:    occurredAt,
		}
		trade.Events = append(trade.Events, event)

		switch req.Type {
		case models.EventEntry:
			entryPrice := trade.Plan.Entry
			if req.Price != nil {
				entryPrice = *req.Price
			}
			trade.Execution.EntryPrice = &entryPrice
			trade.Execution.EntryTime = &occurredAt
			// 固化开仓时的计划价格，后续分析以此为基准
			trade.Execution.PlannedStop = trade.Plan.StopLoss
			trade.Execution.PlannedTarget = trade.Plan.TakeProfit
			trade.Status = models.TradeStatusOpen

		case models.EventExit:
			trade.Execution.ExitPrice = req.Price
			trade.Execution.ExitTime = &occurredAt
			trade.Status = models.TradeStatusClosed
			s.computeAnalytics(&trade)

		case models.EventMoveSL:
			if req.NewStopLoss != nil {
				trade.Plan.StopLoss = *req.NewStopLoss
			}

		case models.EventMoveTP:
			if req.NewTakeProfit != nil {
				trade.Plan.TakeProfit = *req.NewTakeProfit
			}
		}

		if err := s.TradeRepo.Save(ctx, &trade); err != nil {
			return err
		}
		result = trade
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trade event applied",
		zap.String("trade_id", id),
		zap.String("event_type", string(req.Type)),
		zap.String("status", string(result.Status)))

	return &result, nil
}

// CancelTrade 取消一笔计划中的交易（带外转移，不经过事件日志）
func (s *TradeService) CancelTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	var result models.Trade

	err := s.Transaction(ctx, func(ctx context.Context) error {
		trade, err := s.TradeRepo.FindOneByUser(ctx, userID, id)
		if err != nil {
			return err
		}
		if trade.Status != models.TradeStatusPlanned {
			return xe.ErrTradeNotPlanned
		}

		trade.Status = models.TradeStatusCancelled
		if err := s.TradeRepo.Save(ctx, &trade); err != nil {
			return err
		}
		result = trade
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AddAttachment 为交易追加一个附件
func (s *TradeService) AddAttachment(ctx context.Context, userID, id string, req AddAttachmentRequest) (*models.Trade, error) {
	var result models.Trade

	err := s.Transaction(ctx, func(ctx context.Context) error {
		trade, err := s.TradeRepo.FindOneByUser(ctx, userID, id)
		if err != nil {
			return err
		}

		trade.Attachments = append(trade.Attachments, models.Attachment{
			URL:     req.URL,
			Type:    req.Type,
			AddedAt: time.Now(),
		})
		if err := s.TradeRepo.Save(ctx, &trade); err != nil {
			return err
		}
		result = trade
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTags 返回用户全部交易计划中出现过的标签（去重、升序）
func (s *TradeService) ListTags(ctx context.Context, userID string) ([]string, error) {
	trades, err := s.TradeRepo.FindAllByUser(ctx, userID, repo.TradeQuery{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, trade := range trades {
		for _, tag := range trade.Plan.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// computeAnalytics 平仓时重算衍生指标
// R倍数与计划执行判定以开仓时固化的止损/止盈为基准
func (s *TradeService) computeAnalytics(trade *models.Trade) {
	exec := trade.Execution
	if exec.EntryPrice == nil || exec.ExitPrice == nil || exec.PlannedStop == 0 {
		return
	}

	side := tradecalc.Side(trade.Side)

	rMultiple := tradecalc.ComputeRMultiple(*exec.EntryPrice, *exec.ExitPrice, exec.PlannedStop, side)
	followedPlan := tradecalc.FollowedPlan(tradecalc.ComplianceInput{
		Side:           side,
		EntryPrice:     *exec.EntryPrice,
		ExitPrice:      *exec.ExitPrice,
		PlanStop:       exec.PlannedStop,
		PlanTarget:     exec.PlannedTarget,
		MaxDurationMin: trade.Plan.MaxDurationMin,
		StopMoves:      trade.StopMoves(),
		EntryTime:      exec.EntryTime,
		ExitTime:       exec.ExitTime,
		ToleranceR:     s.toleranceR,
	})

	trade.Analytics.RMultiple = &rMultiple
	trade.Analytics.FollowedPlan = &followedPlan

	if exec.EntryTime != nil && exec.ExitTime != nil {
		elapsed := tradecalc.ElapsedMinutes(*exec.EntryTime, *exec.ExitTime)
		trade.Analytics.TimeElapsedMin = &elapsed
	}
}

// checkEventAllowed 状态机守卫：决定当前状态是否接受该事件
func checkEventAllowed(status models.TradeStatus, eventType models.TradeEventType) error {
	if eventType == models.EventNote {
		return nil
	}

	switch eventType {
	case models.EventEntry:
		switch status {
		case models.TradeStatusPlanned:
			return nil
		case models.TradeStatusOpen:
			return xe.ErrTradeAlreadyOpen
		default:
			return xe.ErrTradeFinished
		}
	case models.EventExit, models.EventAdd, models.EventReduce, models.EventMoveSL, models.EventMoveTP:
		switch status {
		case models.TradeStatusOpen:
			return nil
		case models.TradeStatusPlanned:
			return xe.ErrTradeNotOpen
		default:
			return xe.ErrTradeFinished
		}
	}
	return xe.ErrInvalidEventType
}

// validatePlan 计划校验：价格排序约束与 0.5 盈亏比下限
func validatePlan(side models.TradeSide, entry, stopLoss, takeProfit float64) error {
	if side == models.TradeSideLong && !(stopLoss < entry && entry < takeProfit) {
		return xe.ErrPlanOrdering
	}
	if side == models.TradeSideShort && !(takeProfit < entry && entry < stopLoss) {
		return xe.ErrPlanOrdering
	}
	if riskReward(entry, stopLoss, takeProfit) < 0.5 {
		return xe.ErrRiskRewardTooLow
	}
	return nil
}

// riskReward 盈亏比 = 目标距离 / 止损距离
func riskReward(entry, stopLoss, takeProfit float64) float64 {
	risk := math.Abs(entry - stopLoss)
	if risk == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / risk
}
