package handler

import (
	"github.com/gin-gonic/gin"

	"mealmood-server/internal/middleware"
	"mealmood-server/internal/service"
	"mealmood-server/pkg/response"
)

// SessionHandler 会话请求处理器
type SessionHandler struct {
	sessionService *service.SessionService
	chatService    *service.ChatService
}

// NewSessionHandler 创建 SessionHandler 实例
func NewSessionHandler(sessionService *service.SessionService, chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		chatService:    chatService,
	}
}

// AddMessageRequest 向会话追加消息的请求
type AddMessageRequest struct {
	Message string `json:"message"`
}

// CreateSession 创建新会话
// @Summary 创建会话
// @Tags 会话
// @Security Bearer
// @Accept json
// @Produce json
// @Param body body service.CreateSessionRequest false "会话标题"
// @Success 201 {object} response.Response{data=model.Session}
// @Router /api/v1/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req service.CreateSessionRequest
	// 请求体可以为空
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "잘못된 요청입니다.")
			return
		}
	}

	session, err := h.sessionService.Create(c.Request.Context(), middleware.GetUserID(c), req.Title)
	if err != nil {
		writeServiceError(c, err, "세션을 만들지 못했습니다.")
		return
	}
	response.Created(c, session)
}

// ListSessions 获取当前用户的会话列表
// @Summary 会话列表
// @Tags 会话
// @Security Bearer
// @Produce json
// @Success 200 {object} response.Response{data=[]model.SessionSummary}
// @Router /api/v1/sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err, "세션 목록을 가져오지 못했습니다.")
		return
	}
	response.Success(c, sessions)
}

// GetLogs 获取会话的全部消息
// @Router /api/v1/sessions/{id}/logs [get]
func (h *SessionHandler) GetLogs(c *gin.Context) {
	logs, err := h.sessionService.Logs(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "대화 기록을 가져오지 못했습니다.")
		return
	}
	response.Success(c, logs)
}

// AddMessage 在指定会话中发送一条消息并返回助手回复
// @Router /api/v1/sessions/{id}/messages [post]
func (h *SessionHandler) AddMessage(c *gin.Context) {
	var req AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "잘못된 요청입니다.")
		return
	}

	result, err := h.chatService.Respond(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Message)
	if err != nil {
		writeServiceError(c, err, "메시지를 처리하지 못했습니다.")
		return
	}
	response.Success(c, result)
}

// DeleteSession 删除会话及其消息
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.sessionService.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		writeServiceError(c, err, "삭제에 실패했습니다.")
		return
	}
	response.SuccessWithMessage(c, "삭제되었습니다.", nil)
}
