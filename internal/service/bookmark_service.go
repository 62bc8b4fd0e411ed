package service

import (
	"context"
	"strings"

	"mealmood-server/internal/model"
	"mealmood-server/internal/repository"
)

// BookmarkService 收藏服务
type BookmarkService struct {
	bookmarkRepo *repository.BookmarkRepository
}

// NewBookmarkService 创建 BookmarkService 实例
func NewBookmarkService(bookmarkRepo *repository.BookmarkRepository) *BookmarkService {
	return &BookmarkService{bookmarkRepo: bookmarkRepo}
}

// BookmarkRequest 新增或修改收藏的请求
type BookmarkRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required"`
}

// Create 新增收藏
func (s *BookmarkService) Create(ctx context.Context, userID int64, req *BookmarkRequest) (*model.Bookmark, error) {
	name, url := strings.TrimSpace(req.Name), strings.TrimSpace(req.URL)
	if name == "" || url == "" {
		return nil, ErrMissingFields
	}

	bookmark := &model.Bookmark{
		UserID: userID,
		Name:   name,
		URL:    url,
	}
	if err := s.bookmarkRepo.Create(ctx, bookmark); err != nil {
		return nil, err
	}
	return bookmark, nil
}

// List 获取用户的收藏，最早的在前
func (s *BookmarkService) List(ctx context.Context, userID int64) ([]model.Bookmark, error) {
	bookmarks, err := s.bookmarkRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}
	return bookmarks, nil
}

// Update 修改收藏
func (s *BookmarkService) Update(ctx context.Context, userID, bookmarkID int64, req *BookmarkRequest) (*model.Bookmark, error) {
	name, url := strings.TrimSpace(req.Name), strings.TrimSpace(req.URL)
	if name == "" || url == "" {
		return nil, ErrMissingFields
	}

	bookmark, err := s.owned(ctx, userID, bookmarkID)
	if err != nil {
		return nil, err
	}
	if err := s.bookmarkRepo.Update(ctx, bookmarkID, name, url); err != nil {
		return nil, err
	}
	bookmark.Name = name
	bookmark.URL = url
	return bookmark, nil
}

// Delete 删除收藏
func (s *BookmarkService) Delete(ctx context.Context, userID, bookmarkID int64) error {
	if _, err := s.owned(ctx, userID, bookmarkID); err != nil {
		return err
	}
	return s.bookmarkRepo.Delete(ctx, bookmarkID)
}

func (s *BookmarkService) owned(ctx context.Context, userID, bookmarkID int64) (*model.Bookmark, error) {
	bookmark, err := s.bookmarkRepo.GetByID(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}
	if bookmark == nil {
		return nil, ErrBookmarkNotFound
	}
	if bookmark.UserID != userID {
		return nil, ErrNoPermission
	}
	return bookmark, nil
}
