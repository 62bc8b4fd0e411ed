// Package handler 提供 HTTP 请求处理器
// 处理器只做参数解析和错误到响应的映射，业务逻辑在 service 层
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mealmood-server/internal/service"
	"mealmood-server/pkg/response"
)

// writeServiceError 把 service 层的业务错误映射为响应
// 未识别的错误统一返回 500，fallback 为提示信息
func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		response.BadRequest(c, "필수 항목을 모두 입력해 주세요.")
	case errors.Is(err, service.ErrEmailExists):
		response.EmailExists(c)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.InvalidCredentials(c)
	case errors.Is(err, service.ErrUserNotFound):
		response.UserNotFound(c)
	case errors.Is(err, service.ErrSessionNotFound):
		response.SessionNotFound(c)
	case errors.Is(err, service.ErrBookmarkNotFound):
		response.BookmarkNotFound(c)
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, "권한이 없습니다.")
	case errors.Is(err, service.ErrUpstream):
		response.UpstreamError(c, "외부 서비스 호출에 실패했습니다. 잠시 후 다시 시도해 주세요.")
	default:
		_ = c.Error(err)
		response.InternalError(c, fallback)
	}
}
