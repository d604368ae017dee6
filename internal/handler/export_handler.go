package handler

import (
	"net/http"

	"github.com/dushixiang/tradelog/internal/middleware"
	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/dushixiang/tradelog/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ExportHandler 数据导出HTTP处理器
type ExportHandler struct {
	logger        *zap.Logger
	exportService *service.ExportService
}

func NewExportHandler(exportService *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		logger:        logger,
		exportService: exportService,
	}
}

// ExportTrades 导出全部交易
// GET /api/exports/trades
func (h *ExportHandler) ExportTrades(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	query := repo.TradeQuery{
		Status:    models.TradeStatus(c.QueryParam("status")),
		Symbol:    c.QueryParam("symbol"),
		AccountID: c.QueryParam("accountId"),
	}

	rows, err := h.exportService.ExportTrades(ctx, userID, query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// RegisterRoutes 注册路由
func (h *ExportHandler) RegisterRoutes(g *echo.Group) {
	export := g.Group("/exports")
	export.GET("/trades", h.ExportTrades)
}
