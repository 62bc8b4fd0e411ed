// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// User 用户模型
// 对应数据库表 users
// 以邮箱作为登录账号
type User struct {
	// ID 用户唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// Name 显示名称
	Name string `gorm:"size:50;not null" json:"name"`

	// Email 登录邮箱，全局唯一
	Email string `gorm:"size:100;uniqueIndex;not null" json:"email"`

	// PasswordHash 密码的 bcrypt 哈希值，序列化时忽略
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// CreatedAt 创建时间，由 GORM 自动填充
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// UpdatedAt 更新时间，由 GORM 自动更新
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
