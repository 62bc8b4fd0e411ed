// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mealmood-server/internal/model"
)

// SessionRepository 会话数据访问层
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建 SessionRepository 实例
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create 创建新会话
// 参数:
//   - ctx: 上下文
//   - session: 会话对象，调用方负责生成 ID
//
// 返回:
//   - error: 数据库错误
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByID 根据 ID 获取会话
// 未找到返回 (nil, nil)
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// sessionRow 会话列表查询的一行
type sessionRow struct {
	ID          string
	Title       *string
	CreatedAt   time.Time
	LastMessage *string
	LastDate    *time.Time
}

// lastTurnJoin 关联每个会话最新的一条消息
const lastTurnJoin = `LEFT JOIN chat_logs AS l ON l.id = (
	SELECT c.id FROM chat_logs AS c
	WHERE c.session_id = s.id
	ORDER BY c.created_at DESC, c.id DESC
	LIMIT 1)`

// ListByUserID 获取用户的会话列表，附带每个会话最后一条消息
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//
// 返回:
//   - []model.SessionSummary: 按创建时间倒序
//   - error: 数据库错误
func (r *SessionRepository) ListByUserID(ctx context.Context, userID int64) ([]model.SessionSummary, error) {
	var rows []sessionRow
	err := r.db.WithContext(ctx).
		Table("chat_sessions AS s").
		Select("s.id, s.title, s.created_at, l.message AS last_message, l.created_at AS last_date").
		Joins(lastTurnJoin).
		Where("s.user_id = ?", userID).
		Order("s.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]model.SessionSummary, 0, len(rows))
	for _, row := range rows {
		summary := model.SessionSummary{
			ID:          row.ID,
			CreatedAt:   row.CreatedAt,
			LastMessage: row.LastMessage,
			LastDate:    row.LastDate,
		}
		if row.Title != nil {
			summary.Title = *row.Title
		}
		result = append(result, summary)
	}
	return result, nil
}

// Delete 删除会话及其所有消息
// 在同一事务中先删消息再删会话
// 返回:
//   - bool: 会话是否存在并被删除
//   - error: 数据库错误
func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&model.ChatTurn{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Session{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
