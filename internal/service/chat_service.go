package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mealmood-server/internal/assistant"
	"mealmood-server/internal/cache"
	"mealmood-server/internal/model"
	"mealmood-server/internal/repository"
	"mealmood-server/pkg/util"
)

// Responder 对一条输入生成回复，由 assistant.Assistant 实现
type Responder interface {
	Respond(ctx context.Context, text string, recentFoods []string) (*assistant.Reply, error)
}

// ChatService 对话服务
// 负责会话的懒创建、消息持久化和最近推荐的记录
type ChatService struct {
	sessionRepo *repository.SessionRepository
	turnRepo    *repository.ChatTurnRepository
	assistant   Responder
	cache       cache.Cache
	logger      *zap.Logger
}

// NewChatService 创建 ChatService 实例
func NewChatService(
	sessionRepo *repository.SessionRepository,
	turnRepo *repository.ChatTurnRepository,
	responder Responder,
	cache cache.Cache,
	logger *zap.Logger,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		sessionRepo: sessionRepo,
		turnRepo:    turnRepo,
		assistant:   responder,
		cache:       cache,
		logger:      logger,
	}
}

// ChatRequest 对话请求，同时支持 JSON 和表单
type ChatRequest struct {
	Message   string `json:"message" form:"message"`
	SessionID string `json:"session_id" form:"session_id"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	Message        string                    `json:"message"`
	SessionID      string                    `json:"session_id"`
	Route          assistant.Route           `json:"route"`
	CreatedAt      time.Time                 `json:"created_at"`
	URL            *string                   `json:"url,omitempty"`
	Name           *string                   `json:"name,omitempty"`
	Restaurant     *assistant.Restaurant     `json:"restaurant,omitempty"`
	Recommendation *assistant.Recommendation `json:"recommendation,omitempty"`
}

// Respond 处理一条用户消息
// 参数:
//   - ctx: 上下文
//   - userID: 当前用户
//   - sessionID: 为空时新建会话，标题取消息前 30 个字符
//   - text: 用户输入
//
// 返回:
//   - *ChatResponse: 助手回复
//   - error: ErrSessionNotFound / ErrNoPermission / ErrUpstream 或数据库错误
//
// 会话和用户消息先于助手调用保存，助手失败时二者保留，只是没有助手消息
func (s *ChatService) Respond(ctx context.Context, userID int64, sessionID, text string) (*ChatResponse, error) {
	session, err := s.resolveSession(ctx, userID, sessionID, text)
	if err != nil {
		return nil, err
	}

	// 空输入只保存助手的提示
	if strings.TrimSpace(text) != "" {
		if err := s.turnRepo.Append(ctx, &model.ChatTurn{
			SessionID: session.ID,
			UserID:    userID,
			Role:      model.RoleUser,
			Message:   text,
		}); err != nil {
			return nil, err
		}
	}

	recent, err := s.cache.RecentFoods(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load recent foods", zap.Int64("user_id", userID), zap.Error(err))
		recent = nil
	}

	reply, err := s.assistant.Respond(ctx, text, recent)
	if err != nil {
		s.logger.Error("Assistant failed to respond",
			zap.Int64("user_id", userID),
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	turn := &model.ChatTurn{
		SessionID: session.ID,
		UserID:    userID,
		Role:      model.RoleAssistant,
		Message:   reply.Message,
		MapURL:    util.StringPtr(reply.MapURL),
		PlaceName: util.StringPtr(reply.PlaceName),
	}
	if err := s.turnRepo.Append(ctx, turn); err != nil {
		return nil, err
	}

	if reply.Food != nil && reply.Food.Food != "" {
		if err := s.cache.PushRecentFood(ctx, userID, reply.Food.Food); err != nil {
			s.logger.Warn("Failed to remember recent food", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	return &ChatResponse{
		Message:        reply.Message,
		SessionID:      session.ID,
		Route:          reply.Route,
		CreatedAt:      turn.CreatedAt,
		URL:            turn.MapURL,
		Name:           turn.PlaceName,
		Restaurant:     reply.Restaurant,
		Recommendation: reply.Food,
	}, nil
}

func (s *ChatService) resolveSession(ctx context.Context, userID int64, sessionID, text string) (*model.Session, error) {
	if sessionID == "" {
		session := &model.Session{
			ID:     util.NewSessionID(),
			UserID: userID,
			Title:  util.SessionTitle(text),
		}
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			return nil, err
		}
		return session, nil
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrNoPermission
	}
	return session, nil
}
