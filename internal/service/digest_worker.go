package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dushixiang/tradelog/internal/config"
	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/dushixiang/tradelog/internal/telegram"
	"github.com/dushixiang/tradelog/pkg/tradecalc"
	"github.com/robfig/cron/v3"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// digestTemplate 每日复盘摘要的消息模板
const digestTemplate = `*交易日报*
已平仓: {{total}} 笔
当日累计: {{totalR}}R
连续亏损: {{streak}} 笔
{{symbols}}{{warnings}}`

// DigestWorker 每日复盘摘要调度器
// 按计划表达式定期汇总前一日的平仓结果，结合风控策略推送提醒
type DigestWorker struct {
	conf        config.DigestConf
	telegramCfg config.TelegramConf
	logger      *zap.Logger

	tradeRepo *repo.TradeRepo
	riskRepo  *repo.RiskPolicyRepo
	notifier  *telegram.Telegram
	cron      *cron.Cron
	stopChan  chan struct{}
	isRunning bool
}

func NewDigestWorker(conf *config.Config, db *gorm.DB, notifier *telegram.Telegram, logger *zap.Logger) *DigestWorker {
	return &DigestWorker{
		conf:        conf.Digest,
		telegramCfg: conf.Telegram,
		logger:      logger,
		tradeRepo:   repo.NewTradeRepo(db),
		riskRepo:    repo.NewRiskPolicyRepo(db),
		notifier:    notifier,
		stopChan:    make(chan struct{}),
	}
}

// Start 启动调度器并阻塞到停止
func (w *DigestWorker) Start(ctx context.Context) error {
	if w.isRunning {
		return fmt.Errorf("digest worker is already running")
	}
	w.isRunning = true

	cronExpr := w.conf.Cron
	if cronExpr == "" {
		cronExpr = "0 21 * * *"
	}

	w.logger.Info("digest worker started", zap.String("cron_expression", cronExpr))

	w.cron = cron.New()
	_, err := w.cron.AddFunc(cronExpr, func() {
		if err := w.RunOnce(context.Background()); err != nil {
			w.logger.Error("digest run failed", zap.Error(err))
		}
	})
	if err != nil {
		w.isRunning = false
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	w.cron.Start()

	select {
	case <-w.stopChan:
		w.logger.Info("digest worker stopped by user")
		return nil
	case <-ctx.Done():
		w.logger.Info("digest worker stopped by context")
		return ctx.Err()
	}
}

// Stop 停止调度器
func (w *DigestWorker) Stop() {
	if !w.isRunning {
		return
	}
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
	w.isRunning = false
	close(w.stopChan)
	w.logger.Info("digest worker stopped")
}

// RunOnce 汇总最近 24 小时的平仓结果并推送
func (w *DigestWorker) RunOnce(ctx context.Context) error {
	since := time.Now().Add(-24 * time.Hour)
	trades, err := w.tradeRepo.FindClosedSince(ctx, since)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		w.logger.Info("digest skipped, no closed trades")
		return nil
	}

	byUser := make(map[string][]models.Trade)
	for _, trade := range trades {
		byUser[trade.UserID] = append(byUser[trade.UserID], trade)
	}

	for userID, userTrades := range byUser {
		if err := w.notifyUser(ctx, userID, userTrades); err != nil {
			w.logger.Error("digest notify failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

func (w *DigestWorker) notifyUser(ctx context.Context, userID string, trades []models.Trade) error {
	var totalR float64
	streak := 0
	counting := true
	symbolR := make(map[string]float64)
	var symbolOrder []string
	// 平仓时间升序，倒着数连续亏损
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Analytics.RMultiple == nil {
			continue
		}
		r := *trades[i].Analytics.RMultiple
		totalR += r
		if _, ok := symbolR[trades[i].Symbol]; !ok {
			symbolOrder = append(symbolOrder, trades[i].Symbol)
		}
		symbolR[trades[i].Symbol] += r
		if counting {
			if r < 0 {
				streak++
			} else {
				counting = false
			}
		}
	}

	symbols := ""
	for _, symbol := range symbolOrder {
		symbols += fmt.Sprintf("%s: %.2fR\n", telegram.EscapeMarkdown(symbol), tradecalc.Round2(symbolR[symbol]))
	}

	warnings := ""
	policy, err := w.riskRepo.FindByUserId(ctx, userID)
	if err == nil {
		if policy.MaxDailyLossPercent > 0 && totalR < 0 {
			warnings += "⚠️ 当日为净亏损，注意当日最大亏损限制\n"
		}
		if policy.MaxConsecutiveLosses > 0 && streak >= policy.MaxConsecutiveLosses {
			warnings += fmt.Sprintf("⚠️ 连续亏损已达 %d 笔，建议暂停交易\n", streak)
		}
	}

	template := fasttemplate.New(digestTemplate, "{{", "}}")
	msg := template.ExecuteString(map[string]interface{}{
		"total":    fmt.Sprintf("%d", len(trades)),
		"totalR":   fmt.Sprintf("%.2f", tradecalc.Round2(totalR)),
		"streak":   fmt.Sprintf("%d", streak),
		"symbols":  symbols,
		"warnings": warnings,
	})

	if w.notifier == nil || w.telegramCfg.ChatID == "" {
		w.logger.Info("digest generated", zap.String("user_id", userID), zap.String("message", msg))
		return nil
	}
	return w.notifier.Notify(w.telegramCfg.ChatID, msg)
}
