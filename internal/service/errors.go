// Package service 提供业务逻辑层的实现
// 服务层封装具体的业务逻辑，协调 Repository、Cache 和助手核心
package service

import "errors"

// 定义业务错误，handler 层据此选择响应
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrMissingFields      = errors.New("required fields missing")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrBookmarkNotFound   = errors.New("bookmark not found")
	ErrNoPermission       = errors.New("no permission")
	ErrUpstream           = errors.New("upstream service failed")
)
