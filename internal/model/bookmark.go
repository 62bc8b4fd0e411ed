// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// Bookmark 收藏的链接（通常是推荐餐厅的地图链接）
type Bookmark struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	URL       string    `gorm:"size:500;not null" json:"url"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (Bookmark) TableName() string {
	return "bookmarks"
}
