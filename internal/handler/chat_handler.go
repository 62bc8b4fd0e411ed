package handler

import (
	"github.com/gin-gonic/gin"

	"mealmood-server/internal/assistant"
	"mealmood-server/internal/middleware"
	"mealmood-server/internal/service"
	"mealmood-server/pkg/response"
)

// ReplyNotifier 把回复推送给用户的其他在线连接
type ReplyNotifier interface {
	NotifyReply(userID int64, reply *service.ChatResponse)
}

// ChatHandler 对话请求处理器
type ChatHandler struct {
	chatService *service.ChatService
	notifier    ReplyNotifier
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SetNotifier 设置推送器，未设置时不推送
func (h *ChatHandler) SetNotifier(n ReplyNotifier) {
	h.notifier = n
}

// Chat 发送一条消息
// 支持 JSON 和表单两种请求体，session_id 为空时新建会话
// @Summary 发送消息
// @Tags 对话
// @Security Bearer
// @Accept json
// @Produce json
// @Param body body service.ChatRequest true "消息"
// @Success 200 {object} response.Response{data=service.ChatResponse}
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "잘못된 요청입니다.")
		return
	}

	userID := middleware.GetUserID(c)
	result, err := h.chatService.Respond(c.Request.Context(), userID, req.SessionID, req.Message)
	if err != nil {
		writeServiceError(c, err, "응답을 생성하지 못했습니다.")
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyReply(userID, result)
	}
	response.Success(c, result)
}

// AssistantHandler 助手调试接口
type AssistantHandler struct{}

// NewAssistantHandler 创建 AssistantHandler 实例
func NewAssistantHandler() *AssistantHandler {
	return &AssistantHandler{}
}

// ClassifyRequest 分类请求
type ClassifyRequest struct {
	Message string `json:"message"`
}

// ClassifyResponse 分类结果
type ClassifyResponse struct {
	Route    assistant.Route        `json:"route"`
	Greeting assistant.GreetingKind `json:"greeting"`
	Families []string               `json:"families"`
}

// Classify 只做关键词分类，不调用任何外部服务
// @Router /api/v1/assistant/classify [post]
func (h *AssistantHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "잘못된 요청입니다.")
		return
	}

	families := assistant.EmotionFamilies(req.Message)
	if families == nil {
		families = []string{}
	}
	response.Success(c, ClassifyResponse{
		Route:    assistant.Classify(req.Message),
		Greeting: assistant.DetectGreeting(req.Message),
		Families: families,
	})
}
