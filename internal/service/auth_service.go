package service

import (
	"context"
	"strings"
	"time"

	"mealmood-server/internal/cache"
	"mealmood-server/internal/model"
	"mealmood-server/internal/repository"
	"mealmood-server/pkg/jwt"
	"mealmood-server/pkg/util"
)

// AuthService 认证服务
// 处理用户注册、登录、刷新和登出
type AuthService struct {
	userRepo   *repository.UserRepository
	cache      cache.Cache
	jwtService *jwt.JWTService
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	userRepo *repository.UserRepository,
	cache cache.Cache,
	jwtService *jwt.JWTService,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		cache:      cache,
		jwtService: jwtService,
	}
}

// SignupRequest 注册请求
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录（或注册）成功的响应
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"` // 秒
	User         *model.User `json:"user"`
}

// RefreshTokenResponse 刷新 Token 响应
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// StatusResponse 登录状态
type StatusResponse struct {
	LoggedIn bool   `json:"logged_in"`
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Signup 用户注册，成功后直接签发 Token
// 参数:
//   - ctx: 上下文
//   - req: 注册请求
//
// 返回:
//   - *LoginResponse: Token 和用户信息
//   - error: ErrMissingFields / ErrEmailExists 或数据库错误
//
// 邮箱格式由请求绑定时的 email 规则校验
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*LoginResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// Login 用户登录
// 用户不存在和密码错误返回同一个错误，避免暴露邮箱是否注册
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !util.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *model.User) (*LoginResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.GetAccessExpire().Seconds()),
		User:         user,
	}, nil
}

// RefreshToken 用 Refresh Token 换取新的 Access Token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*RefreshTokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if s.cache.IsTokenBlacklisted(ctx, cache.HashToken(refreshToken)) {
		return nil, jwt.ErrInvalidToken
	}

	// 用户可能已被删除
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	return &RefreshTokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtService.GetAccessExpire().Seconds()),
	}, nil
}

// Status 查询当前登录用户
func (s *AuthService) Status(ctx context.Context, userID int64) (*StatusResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &StatusResponse{
		LoggedIn: true,
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
	}, nil
}

// Logout 用户登出
// 将 Token 哈希加入黑名单，TTL 为 Token 的剩余有效期
func (s *AuthService) Logout(ctx context.Context, tokenHash string, expireAt time.Time) error {
	return s.cache.BlacklistToken(ctx, tokenHash, expireAt)
}
