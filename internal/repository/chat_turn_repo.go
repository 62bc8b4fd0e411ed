// Package repository 提供数据访问层的实现
package repository

import (
	"context"

	"gorm.io/gorm"

	"mealmood-server/internal/model"
)

// ChatTurnRepository 对话消息数据访问层
// 消息只追加不修改
type ChatTurnRepository struct {
	db *gorm.DB
}

// NewChatTurnRepository 创建 ChatTurnRepository 实例
func NewChatTurnRepository(db *gorm.DB) *ChatTurnRepository {
	return &ChatTurnRepository{db: db}
}

// Append 追加一条消息
// 参数:
//   - ctx: 上下文
//   - turn: 消息对象，ID 和 CreatedAt 会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *ChatTurnRepository) Append(ctx context.Context, turn *model.ChatTurn) error {
	return r.db.WithContext(ctx).Create(turn).Error
}

// ListBySessionID 获取会话的全部消息
// 按创建时间正序，时间相同时按 ID 保持插入顺序
func (r *ChatTurnRepository) ListBySessionID(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&turns).Error
	return turns, err
}

// CountBySessionID 统计会话中的消息数量
func (r *ChatTurnRepository) CountBySessionID(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ChatTurn{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}
