// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mealmood-server/internal/model"
)

// BookmarkRepository 收藏数据访问层
type BookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository 创建 BookmarkRepository 实例
func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Create 新增收藏
func (r *BookmarkRepository) Create(ctx context.Context, bookmark *model.Bookmark) error {
	return r.db.WithContext(ctx).Create(bookmark).Error
}

// GetByID 根据 ID 获取收藏
// 未找到返回 (nil, nil)
func (r *BookmarkRepository) GetByID(ctx context.Context, id int64) (*model.Bookmark, error) {
	var bookmark model.Bookmark
	err := r.db.WithContext(ctx).First(&bookmark, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bookmark, nil
}

// ListByUserID 获取用户的收藏，按创建时间正序
func (r *BookmarkRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&bookmarks).Error
	return bookmarks, err
}

// Update 修改收藏的名称和链接
func (r *BookmarkRepository) Update(ctx context.Context, id int64, name, url string) error {
	return r.db.WithContext(ctx).
		Model(&model.Bookmark{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name": name,
			"url":  url,
		}).Error
}

// Delete 删除收藏
func (r *BookmarkRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Bookmark{}, id).Error
}
