// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// 消息角色常量
const (
	RoleUser      = "user"      // 用户消息
	RoleAssistant = "assistant" // 助手回复
)

// ChatTurn 一条对话消息
// 对应数据库表 chat_logs
// 写入后不可修改，同一会话内按 created_at, id 排序
type ChatTurn struct {
	// ID 自增主键，同一时间戳下用于保持插入顺序
	ID int64 `gorm:"primaryKey" json:"id"`

	// SessionID 所属会话ID
	SessionID string `gorm:"size:36;index;not null" json:"session_id"`

	// UserID 发送者所属用户
	UserID int64 `gorm:"index;not null" json:"user_id"`

	// Role 消息角色: user / assistant
	Role string `gorm:"size:20;not null" json:"role"`

	// Message 消息内容，助手回复可能包含 HTML 片段
	Message string `gorm:"type:text;not null" json:"message"`

	// MapURL 推荐餐厅的地图链接
	MapURL *string `gorm:"column:url;size:500" json:"url"`

	// PlaceName 推荐餐厅名称
	PlaceName *string `gorm:"column:name;size:200" json:"name"`

	// CreatedAt 消息创建时间
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (ChatTurn) TableName() string {
	return "chat_logs"
}
