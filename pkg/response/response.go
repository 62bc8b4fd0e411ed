// Package response 提供统一的 HTTP 响应格式
// 所有 API 都使用相同的响应结构，便于前端处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// code: 业务状态码（0 表示成功）
// message: 提示信息
// data: 响应数据
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 业务状态码定义
const (
	CodeSuccess            = 0    // 成功
	CodeBadRequest         = 1000 // 请求参数错误
	CodeUnauthorized       = 1001 // 未授权
	CodeForbidden          = 1002 // 禁止访问
	CodeNotFound           = 1003 // 资源不存在
	CodeInternalError      = 1004 // 服务器内部错误
	CodeUpstreamError      = 1005 // 外部服务调用失败
	CodeTooManyRequests    = 1006 // 请求过于频繁
	CodeEmailExists        = 1101 // 邮箱已注册
	CodeUserNotFound       = 1102 // 用户不存在
	CodeInvalidCredentials = 1103 // 邮箱或密码错误
	CodeSessionNotFound    = 1301 // 会话不存在
	CodeBookmarkNotFound   = 1401 // 收藏不存在
)

// Success 返回成功响应
// 参数:
//   - c: Gin 上下文
//   - data: 响应数据，可以是任意类型
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 返回成功响应（带自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Created 返回 201 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "created",
		Data:    data,
	})
}

// ErrorWithCode 返回错误响应（带业务状态码）
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - bizCode: 业务状态码
//   - message: 错误信息
func ErrorWithCode(c *gin.Context, httpCode, bizCode int, message string) {
	c.JSON(httpCode, Response{
		Code:    bizCode,
		Message: message,
	})
}

// BadRequest 返回 400 错误（请求参数错误）
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, CodeBadRequest, message)
}

// Unauthorized 返回 401 错误（未授权）
func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden 返回 403 错误（禁止访问）
func Forbidden(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusForbidden, CodeForbidden, message)
}

// NotFound 返回 404 错误（资源不存在）
func NotFound(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusNotFound, CodeNotFound, message)
}

// InternalError 返回 500 错误（服务器内部错误）
func InternalError(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusInternalServerError, CodeInternalError, message)
}

// UpstreamError 返回 502 错误（文本生成、检索等外部服务失败）
func UpstreamError(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadGateway, CodeUpstreamError, message)
}

// EmailExists 返回邮箱已注册错误
func EmailExists(c *gin.Context) {
	ErrorWithCode(c, http.StatusConflict, CodeEmailExists, "이미 등록된 이메일입니다.")
}

// UserNotFound 返回用户不存在错误
func UserNotFound(c *gin.Context) {
	ErrorWithCode(c, http.StatusNotFound, CodeUserNotFound, "사용자를 찾을 수 없습니다.")
}

// InvalidCredentials 返回登录失败错误
func InvalidCredentials(c *gin.Context) {
	ErrorWithCode(c, http.StatusUnauthorized, CodeInvalidCredentials, "이메일 또는 비밀번호가 올바르지 않습니다.")
}

// SessionNotFound 返回会话不存在错误
func SessionNotFound(c *gin.Context) {
	ErrorWithCode(c, http.StatusNotFound, CodeSessionNotFound, "세션을 찾을 수 없습니다.")
}

// BookmarkNotFound 返回收藏不存在错误
func BookmarkNotFound(c *gin.Context) {
	ErrorWithCode(c, http.StatusNotFound, CodeBookmarkNotFound, "북마크를 찾을 수 없습니다.")
}
