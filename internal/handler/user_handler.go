package handler

import (
	"github.com/gin-gonic/gin"

	"mealmood-server/internal/middleware"
	"mealmood-server/internal/service"
	"mealmood-server/pkg/response"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers 获取用户列表（只含 ID 和名字）
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "사용자 목록을 가져오지 못했습니다.")
		return
	}
	response.Success(c, users)
}

// GetProfile 获取当前用户资料
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err, "사용자 정보를 가져오지 못했습니다.")
		return
	}
	response.Success(c, user)
}
