package handler

import (
	"net/http"

	"github.com/dushixiang/tradelog/internal/middleware"
	"github.com/dushixiang/tradelog/internal/service"
	"github.com/dushixiang/tradelog/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RiskHandler 风控策略HTTP处理器
type RiskHandler struct {
	logger      *zap.Logger
	riskService *service.RiskService
}

func NewRiskHandler(riskService *service.RiskService, logger *zap.Logger) *RiskHandler {
	return &RiskHandler{
		logger:      logger,
		riskService: riskService,
	}
}

// GetPolicy 获取风控策略
// GET /api/risk/policy
func (h *RiskHandler) GetPolicy(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	policy, err := h.riskService.GetPolicy(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, policy)
}

// UpdatePolicy 更新风控策略
// PUT /api/risk/policy
func (h *RiskHandler) UpdatePolicy(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req service.UpdatePolicyRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	policy, err := h.riskService.UpdatePolicy(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, policy)
}

// ValidatePlan 计划风控校验
// POST /api/risk/validate
func (h *RiskHandler) ValidatePlan(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req service.ValidatePlanRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	violations, err := h.riskService.ValidatePlan(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":         len(violations) == 0,
		"violations": violations,
	})
}

// RegisterRoutes 注册路由
func (h *RiskHandler) RegisterRoutes(g *echo.Group) {
	risk := g.Group("/risk")
	risk.GET("/policy", h.GetPolicy)
	risk.PUT("/policy", h.UpdatePolicy)
	risk.POST("/validate", h.ValidatePlan)
}
