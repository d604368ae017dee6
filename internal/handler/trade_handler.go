package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/tradelog/internal/middleware"
	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/dushixiang/tradelog/internal/service"
	"github.com/dushixiang/tradelog/internal/xe"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// TradeHandler 交易日志HTTP处理器
type TradeHandler struct {
	logger       *zap.Logger
	tradeService *service.TradeService
}

// NewTradeHandler 创建交易处理器
func NewTradeHandler(tradeService *service.TradeService, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{
		logger:       logger,
		tradeService: tradeService,
	}
}

// CreateTrade 创建交易计划
// POST /api/trades
func (h *TradeHandler) CreateTrade(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req service.CreateTradeRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.CreateTrade(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// ListTrades 交易列表
// GET /api/trades
func (h *TradeHandler) ListTrades(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	query := repo.TradeQuery{
		Status:    models.TradeStatus(c.QueryParam("status")),
		Symbol:    c.QueryParam("symbol"),
		AccountID: c.QueryParam("accountId"),
		Page:      cast.ToInt(c.QueryParam("page")),
		Size:      cast.ToInt(c.QueryParam("size")),
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "from 时间格式错误",
			})
		}
		query.From = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "to 时间格式错误",
			})
		}
		query.To = &t
	}

	trades, err := h.tradeService.FindTrades(ctx, userID, query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trades)
}

// GetTrade 交易详情
// GET /api/trades/:id
func (h *TradeHandler) GetTrade(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	trade, err := h.tradeService.GetTrade(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// UpdatePlan 修改交易计划
// PUT /api/trades/:id
func (h *TradeHandler) UpdatePlan(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req service.UpdatePlanRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.UpdatePlan(ctx, userID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// AddEvent 追加交易事件
// POST /api/trades/:id/events
func (h *TradeHandler) AddEvent(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req service.AddEventRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.ApplyEvent(ctx, userID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// CancelTrade 取消计划中的交易
// POST /api/trades/:id/cancel
func (h *TradeHandler) CancelTrade(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	trade, err := h.tradeService.CancelTrade(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// AddAttachment 追加附件
// POST /api/trades/:id/attachments
func (h *TradeHandler) AddAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req service.AddAttachmentRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.AddAttachment(ctx, userID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// ListTags 标签列表
// GET /api/trades/tags
func (h *TradeHandler) ListTags(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	tags, err := h.tradeService.ListTags(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

// RegisterRoutes 注册路由
func (h *TradeHandler) RegisterRoutes(g *echo.Group) {
	trades := g.Group("/trades")
	trades.POST("", h.CreateTrade)
	trades.GET("", h.ListTrades)
	trades.GET("/tags", h.ListTags)
	trades.GET("/:id", h.GetTrade)
	trades.PUT("/:id", h.UpdatePlan)
	trades.POST("/:id/events", h.AddEvent)
	trades.POST("/:id/cancel", h.CancelTrade)
	trades.POST("/:id/attachments", h.AddAttachment)
}
