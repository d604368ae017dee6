package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/tradelog/internal/middleware"
	"github.com/dushixiang/tradelog/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReportHandler 绩效统计HTTP处理器
type ReportHandler struct {
	logger        *zap.Logger
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		logger:        logger,
		reportService: reportService,
	}
}

func (h *ReportHandler) parseQuery(c echo.Context) (service.ReportQuery, error) {
	query := service.ReportQuery{
		AccountID: c.QueryParam("accountId"),
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return query, echo.NewHTTPError(http.StatusBadRequest, "from 时间格式错误")
		}
		query.From = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return query, echo.NewHTTPError(http.StatusBadRequest, "to 时间格式错误")
		}
		query.To = &t
	}
	return query, nil
}

// GetOverview 绩效总览
// GET /api/reports/overview
func (h *ReportHandler) GetOverview(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	query, err := h.parseQuery(c)
	if err != nil {
		return err
	}

	overview, err := h.reportService.GetOverview(ctx, userID, query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}

// GetErrors 纪律错误统计
// GET /api/reports/errors
func (h *ReportHandler) GetErrors(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	query, err := h.parseQuery(c)
	if err != nil {
		return err
	}

	report, err := h.reportService.GetErrors(ctx, userID, query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// RegisterRoutes 注册路由
func (h *ReportHandler) RegisterRoutes(g *echo.Group) {
	reports := g.Group("/reports")
	reports.GET("/overview", h.GetOverview)
	reports.GET("/errors", h.GetErrors)
}
