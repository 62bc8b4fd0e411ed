// Package websocket 提供实时对话通道
// 客户端通过 chat:message 发送消息，助手回复以 chat:reply 推送给同一用户的全部连接
package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"mealmood-server/internal/service"
	"mealmood-server/pkg/response"
)

// 下发给客户端的错误码，与 HTTP 接口的业务码一致
const (
	codeBadRequest      = response.CodeBadRequest
	codeTooManyRequests = response.CodeTooManyRequests
	codeInternal        = response.CodeInternalError
)

// ChatResponder 生成助手回复
type ChatResponder interface {
	Respond(ctx context.Context, userID int64, sessionID, text string) (*service.ChatResponse, error)
}

// Hub 管理全部在线连接
type Hub struct {
	clients map[int64]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// ctx 在 Run 退出时取消，进行中的对话随之中止
	ctx    context.Context
	cancel context.CancelFunc

	chat         ChatResponder
	replyTimeout time.Duration
	logger       *zap.Logger
}

// NewHub 创建 Hub
// 参数:
//   - chat: 对话服务
//   - replyTimeout: 单条消息的处理超时，<=0 时使用 60 秒
//   - logger: 日志
func NewHub(chat ChatResponder, replyTimeout time.Duration, logger *zap.Logger) *Hub {
	if replyTimeout <= 0 {
		replyTimeout = 60 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		ctx:          ctx,
		cancel:       cancel,
		clients:      make(map[int64]map[*Client]struct{}),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		chat:         chat,
		replyTimeout: replyTimeout,
		logger:       logger,
	}
}

// Run 主循环，ctx 取消后关闭全部连接并返回
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.cancel()
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register 注册客户端，Hub 已停止时直接关闭该客户端
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.userID] = set
	}
	set[client] = struct{}{}
	h.logger.Info("WebSocket client registered",
		zap.Int64("user_id", client.userID), zap.Int("connections", len(set)))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if set, ok := h.clients[client.userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.userID)
		}
	}
	h.mu.Unlock()

	client.Close()
	h.logger.Info("WebSocket client unregistered", zap.Int64("user_id", client.userID))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for client := range set {
			client.Close()
		}
		delete(h.clients, userID)
	}
}

// ConnectionCount 返回用户当前的连接数
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUser 向用户的全部连接发送消息，返回成功入队的连接数
func (h *Hub) SendToUser(userID int64, msg *Message) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for client := range h.clients[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	sent := 0
	for _, client := range targets {
		if client.SendMessage(msg) {
			sent++
		}
	}
	return sent
}

// NotifyReply 推送一条 HTTP 接口产生的回复
func (h *Hub) NotifyReply(userID int64, reply *service.ChatResponse) {
	h.SendToUser(userID, NewMessage(TypeChatReply, reply))
}

// handleChatMessage 生成回复并推送给该用户的全部连接
// 出错时只通知发送方
func (h *Hub) handleChatMessage(client *Client, payload *ChatMessagePayload, messageID string) {
	ctx, cancel := context.WithTimeout(h.ctx, h.replyTimeout)
	defer cancel()

	reply, err := h.chat.Respond(ctx, client.userID, payload.SessionID, payload.Content)
	if err != nil {
		code, message := chatErrorPayload(err)
		if code == codeInternal {
			h.logger.Error("Failed to handle chat message", zap.Int64("user_id", client.userID), zap.Error(err))
		}
		client.SendMessage(NewMessageWithID(TypeError, &ErrorPayload{Code: code, Message: message}, messageID))
		return
	}

	h.SendToUser(client.userID, NewMessageWithID(TypeChatReply, reply, messageID))
}

func chatErrorPayload(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return response.CodeSessionNotFound, "세션을 찾을 수 없습니다."
	case errors.Is(err, service.ErrNoPermission):
		return response.CodeForbidden, "이 세션에 접근할 권한이 없습니다."
	case errors.Is(err, service.ErrUpstream):
		return response.CodeUpstreamError, "외부 서비스 응답에 실패했습니다. 잠시 후 다시 시도해 주세요."
	default:
		return codeInternal, "응답을 생성하지 못했습니다."
	}
}
