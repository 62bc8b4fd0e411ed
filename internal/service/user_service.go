package service

import (
	"context"

	"mealmood-server/internal/model"
	"mealmood-server/internal/repository"
)

// UserService 用户服务
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserBrief 用户列表中的单项
type UserBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// List 获取全部用户的 ID 和名字
func (s *UserService) List(ctx context.Context) ([]UserBrief, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]UserBrief, 0, len(users))
	for _, u := range users {
		result = append(result, UserBrief{ID: u.ID, Name: u.Name})
	}
	return result, nil
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
