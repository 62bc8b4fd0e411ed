// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// Session 会话模型
// 对应数据库表 chat_sessions
// 用户第一次发消息时懒创建，之后除删除外不再修改
type Session struct {
	// ID 会话唯一标识，UUID 字符串
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// UserID 所属用户ID
	UserID int64 `gorm:"index;not null" json:"user_id"`

	// Title 会话标题，可以为空
	Title *string `gorm:"size:100" json:"title"`

	// CreatedAt 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Turns 会话中的所有消息（一对多关系）
	Turns []ChatTurn `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Session) TableName() string {
	return "chat_sessions"
}

// SessionSummary 会话列表项，附带最后一条消息
type SessionSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	CreatedAt   time.Time  `json:"created_at"`
	LastMessage *string    `json:"last_message"`
	LastDate    *time.Time `json:"last_date"`
}
