package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/service"
	apperrors "github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/errors"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/response"
)

// bindFailed 请求参数绑定失败
// 请求体超限交给 BodyLimit 中间件返回 413
func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		_ = c.Error(err)
		return
	}
	response.BadRequest(c, 10001, "参数校验失败")
}

// bindOptionalJSON 绑定可为空的请求体
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return false
	}
	return true
}

// handleServiceError 按错误分类映射 HTTP 状态码
func handleServiceError(c *gin.Context, err error) {
	// 凭证类错误统一为 401
	if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrTokenRevoked) {
		appErr, _ := apperrors.As(err)
		response.Unauthorized(c, appErr.Code, appErr.Message)
		return
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		response.ErrorWithDetails(c, http.StatusInternalServerError, 50000, "服务器内部错误", err.Error())
		return
	}
	switch appErr.Kind {
	case apperrors.KindNotFound:
		response.NotFound(c, appErr.Code, appErr.Message)
	case apperrors.KindForbidden:
		response.Forbidden(c, appErr.Code, appErr.Message)
	case apperrors.KindPrecondition:
		response.BadRequest(c, appErr.Code, appErr.Message)
	case apperrors.KindConflict:
		response.Conflict(c, appErr.Code, appErr.Message)
	default:
		response.ErrorWithDetails(c, http.StatusInternalServerError, appErr.Code, "服务器内部错误", appErr.Message)
	}
}
