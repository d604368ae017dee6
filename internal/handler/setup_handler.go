package handler

import (
	"net/http"

	"github.com/dushixiang/tradelog/internal/middleware"
	"github.com/dushixiang/tradelog/internal/service"
	"github.com/dushixiang/tradelog/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SetupHandler 交易模式HTTP处理器
type SetupHandler struct {
	logger       *zap.Logger
	setupService *service.SetupService
}

func NewSetupHandler(setupService *service.SetupService, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{
		logger:       logger,
		setupService: setupService,
	}
}

// CreateSetup 创建交易模式
// POST /api/setups
func (h *SetupHandler) CreateSetup(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req service.SetupRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	setup, err := h.setupService.CreateSetup(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setup)
}

// ListSetups 交易模式列表
// GET /api/setups
func (h *SetupHandler) ListSetups(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	setups, err := h.setupService.ListSetups(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setups)
}

// UpdateSetup 更新交易模式
// PUT /api/setups/:id
func (h *SetupHandler) UpdateSetup(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req service.SetupRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	setup, err := h.setupService.UpdateSetup(ctx, userID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setup)
}

// DeleteSetup 删除交易模式
// DELETE /api/setups/:id
func (h *SetupHandler) DeleteSetup(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	if err := h.setupService.DeleteSetup(ctx, userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok": true,
	})
}

// RegisterRoutes 注册路由
func (h *SetupHandler) RegisterRoutes(g *echo.Group) {
	setups := g.Group("/setups")
	setups.POST("", h.CreateSetup)
	setups.GET("", h.ListSetups)
	setups.PUT("/:id", h.UpdateSetup)
	setups.DELETE("/:id", h.DeleteSetup)
}
