package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dushixiang/tradelog/internal/config"
	"github.com/dushixiang/tradelog/internal/handler"
	identity "github.com/dushixiang/tradelog/internal/middleware"
	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/service"
	"github.com/dushixiang/tradelog/internal/telegram"
	"github.com/dushixiang/tradelog/pkg/nostd"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewTradelogApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewTradelogApp() orz.Application {
	return &TradelogApp{}
}

var _ orz.Application = (*TradelogApp)(nil)

type AppComponents struct {
	TradeHandler  *handler.TradeHandler
	ReportHandler *handler.ReportHandler
	RiskHandler   *handler.RiskHandler
	ExportHandler *handler.ExportHandler
	SetupHandler  *handler.SetupHandler

	TradeService  *service.TradeService
	ReportService *service.ReportService
	RiskService   *service.RiskService
	ExportService *service.ExportService
	SetupService  *service.SetupService

	DigestWorker *service.DigestWorker
	Telegram     *telegram.Telegram
}

type TradelogApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *TradelogApp) GetComponents() *AppComponents {
	return r.components
}

func (r *TradelogApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.Trade{}, models.RiskPolicy{}, models.Setup{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	api := e.Group("/api", identity.Identity(logger))
	{
		r.components.TradeHandler.RegisterRoutes(api)
		r.components.ReportHandler.RegisterRoutes(api)
		r.components.RiskHandler.RegisterRoutes(api)
		r.components.ExportHandler.RegisterRoutes(api)
		r.components.SetupHandler.RegisterRoutes(api)
	}

	return nil
}

func (r *TradelogApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Tradelog Journal Service Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	if r.conf.Digest.Enabled {
		logger.Info("digest worker enabled, starting...")
		go func() {
			if err := components.DigestWorker.Start(context.Background()); err != nil {
				logger.Error("digest worker error", zap.Error(err))
			}
		}()
	}
	return nil
}
