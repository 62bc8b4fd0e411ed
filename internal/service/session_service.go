package service

import (
	"context"

	"mealmood-server/internal/model"
	"mealmood-server/internal/repository"
	"mealmood-server/pkg/util"
)

// SessionService 会话服务
// 会话只属于创建它的用户，其他用户的访问一律返回 ErrNoPermission
type SessionService struct {
	sessionRepo *repository.SessionRepository
	turnRepo    *repository.ChatTurnRepository
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	turnRepo *repository.ChatTurnRepository,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		turnRepo:    turnRepo,
	}
}

// CreateSessionRequest 创建会话请求
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// Create 创建新会话
// 标题最多保留 30 个字符，空标题存为 NULL
func (s *SessionService) Create(ctx context.Context, userID int64, title string) (*model.Session, error) {
	session := &model.Session{
		ID:     util.NewSessionID(),
		UserID: userID,
		Title:  util.SessionTitle(title),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// List 获取用户的会话列表，最新的在前
func (s *SessionService) List(ctx context.Context, userID int64) ([]model.SessionSummary, error) {
	summaries, err := s.sessionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []model.SessionSummary{}
	}
	return summaries, nil
}

// Authorize 检查会话存在且属于该用户
// 返回:
//   - *model.Session: 会话
//   - error: ErrSessionNotFound / ErrNoPermission 或数据库错误
func (s *SessionService) Authorize(ctx context.Context, userID int64, sessionID string) (*model.Session, error) {
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

// Logs 获取会话的全部消息，按写入顺序
func (s *SessionService) Logs(ctx context.Context, userID int64, sessionID string) ([]model.ChatTurn, error) {
	if _, err := s.Authorize(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	turns, err := s.turnRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []model.ChatTurn{}
	}
	return turns, nil
}

// Delete 删除会话及其消息
func (s *SessionService) Delete(ctx context.Context, userID int64, sessionID string) error {
	if _, err := s.Authorize(ctx, userID, sessionID); err != nil {
		return err
	}
	deleted, err := s.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}
