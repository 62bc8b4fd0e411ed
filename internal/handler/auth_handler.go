package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"mealmood-server/internal/cache"
	"mealmood-server/internal/middleware"
	"mealmood-server/internal/service"
	"mealmood-server/pkg/response"
)

// CookieConfig 浏览器端 Token Cookie 的设置
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler 认证请求处理器
// 处理用户注册、登录、刷新、状态查询和登出
type AuthHandler struct {
	authService *service.AuthService
	cookie      CookieConfig
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Signup 用户注册
// @Summary 用户注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.SignupRequest true "注册信息"
// @Success 201 {object} response.Response{data=service.LoginResponse}
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isEmailFormatError(err) {
			response.BadRequest(c, "이메일 형식이 올바르지 않습니다.")
			return
		}
		response.BadRequest(c, "이름, 이메일, 비밀번호를 모두 입력해 주세요.")
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err, "회원가입에 실패했습니다.")
		return
	}

	h.setTokenCookie(c, result.AccessToken)
	response.Created(c, result)
}

// Login 用户登录
// 成功后同时写入 httpOnly Cookie，浏览器端不需要自己保存 Token
// @Summary 用户登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.LoginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResponse}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "이메일과 비밀번호를 모두 입력해 주세요.")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err, "로그인에 실패했습니다.")
		return
	}

	h.setTokenCookie(c, result.AccessToken)
	response.SuccessWithMessage(c, "로그인 성공", result)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} response.Response{data=service.RefreshTokenResponse}
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "refresh_token 이 필요합니다.")
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "리프레시 토큰이 유효하지 않거나 만료되었습니다.")
		return
	}

	h.setTokenCookie(c, result.AccessToken)
	response.Success(c, result)
}

// Status 当前登录状态
func (h *AuthHandler) Status(c *gin.Context) {
	result, err := h.authService.Status(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		// Token 有效但用户已不存在
		response.Unauthorized(c, "등록된 사용자가 아닙니다.")
		return
	}
	response.Success(c, result)
}

// Logout 用户登出
// 将当前 Token 加入黑名单并清除 Cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	token, expireAt := middleware.GetToken(c)
	if token == "" {
		response.BadRequest(c, "토큰 정보를 가져올 수 없습니다.")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), cache.HashToken(token), expireAt); err != nil {
		_ = c.Error(err)
		response.InternalError(c, "로그아웃에 실패했습니다.")
		return
	}

	h.clearTokenCookie(c)
	response.SuccessWithMessage(c, "로그아웃 되었습니다.", nil)
}

// isEmailFormatError 绑定错误是否来自 email 格式规则
func isEmailFormatError(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == "Email" && fe.Tag() == "email" {
			return true
		}
	}
	return false
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearTokenCookie(c *gin.Context) {
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
