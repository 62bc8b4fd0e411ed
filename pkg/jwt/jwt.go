// Package jwt 提供 JWT Token 的生成和验证功能
// Access Token 用于普通请求，Refresh Token 只用于换取新的 Access Token
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	issuer         = "mealmood"
	subjectAccess  = "access"
	subjectRefresh = "refresh"
)

// UserClaims 用户 JWT 的声明（Payload）
type UserClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// JWTService 提供 JWT 相关操作
type JWTService struct {
	secret        []byte
	accessExpire  time.Duration
	refreshExpire time.Duration
	now           func() time.Time
}

// NewJWTService 创建 JWTService 实例
// 参数:
//   - secret: JWT 签名密钥，至少 32 个字符
//   - accessExpire: Access Token 过期时间
//   - refreshExpire: Refresh Token 过期时间
//
// 返回:
//   - *JWTService: JWT 服务实例
func NewJWTService(secret string, accessExpire, refreshExpire time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpire:  accessExpire,
		refreshExpire: refreshExpire,
		now:           time.Now,
	}
}

// GenerateAccessToken 生成 Access Token
func (s *JWTService) GenerateAccessToken(userID int64, email, name string) (string, error) {
	return s.generate(userID, email, name, subjectAccess, s.accessExpire)
}

// GenerateRefreshToken 生成 Refresh Token
func (s *JWTService) GenerateRefreshToken(userID int64, email, name string) (string, error) {
	return s.generate(userID, email, name, subjectRefresh, s.refreshExpire)
}

func (s *JWTService) generate(userID int64, email, name, subject string, expire time.Duration) (string, error) {
	now := s.now()
	claims := UserClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subject,
		},
	}

	// HS256 签名
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken 验证 Access Token
// Refresh Token 不能用于访问接口
// 参数:
//   - tokenString: JWT Token 字符串
//
// 返回:
//   - *UserClaims: Token 中的声明信息
//   - error: 验证错误（无效或已过期）
func (s *JWTService) ValidateToken(tokenString string) (*UserClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject != subjectAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken 验证 Refresh Token
func (s *JWTService) ValidateRefreshToken(tokenString string) (*UserClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject != subjectRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 只接受 HMAC 签名
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetAccessExpire 获取 Access Token 过期时间
func (s *JWTService) GetAccessExpire() time.Duration {
	return s.accessExpire
}

// GetRefreshExpire 获取 Refresh Token 过期时间
func (s *JWTService) GetRefreshExpire() time.Duration {
	return s.refreshExpire
}
