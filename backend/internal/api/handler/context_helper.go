package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/api/middleware"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/service"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetCaller 从 JWT 上下文构造调用方身份
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	id, ok := MustGetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	role := c.GetString(middleware.CtxRole)
	if role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}
	return service.Caller{ID: id, Role: role}, true
}

// tokenIdentity 当前 Access Token 的 jti 与过期时间
func tokenIdentity(c *gin.Context) (string, time.Time) {
	return c.GetString(middleware.CtxTokenID), c.GetTime(middleware.CtxTokenExp)
}
