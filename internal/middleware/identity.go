package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeaderUserID 上游认证网关注入的用户标识头
// 认证与会话管理不在本服务范围内，这里只信任并透传用户标识
const HeaderUserID = "X-User-Id"

// ContextKeyUserID 存入 echo context 的键
const ContextKeyUserID = "user_id"

// Identity 身份中间件：从请求头提取用户标识并写入 context
// 缺少标识的请求一律拒绝，所有读写都以该标识为范围
func Identity(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(HeaderUserID)
			if userID == "" {
				logger.Warn("identity header missing",
					zap.String("path", c.Request().URL.Path),
					zap.String("remote_ip", c.RealIP()))

				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "未授权：缺少用户标识",
				})
			}

			c.Set(ContextKeyUserID, userID)

			return next(c)
		}
	}
}

// UserID 从 echo context 中取出用户标识
func UserID(c echo.Context) string {
	userID, _ := c.Get(ContextKeyUserID).(string)
	return userID
}
