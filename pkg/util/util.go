// Package util 提供通用工具函数
package util

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TitleMaxRunes 会话标题最多保留的字符数
const TitleMaxRunes = 30

// HashPassword 使用 bcrypt 哈希密码
// 参数:
//   - password: 明文密码
//
// 返回:
//   - string: 密码哈希值
//   - error: 哈希错误
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 验证密码是否匹配
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewSessionID 生成会话 ID（UUID v4，带连字符）
func NewSessionID() string {
	return uuid.New().String()
}

// NewRequestID 生成紧凑的请求 ID，用于 WebSocket 消息关联
func NewRequestID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// TruncateRunes 按字符（而非字节）截断字符串
// 韩文等多字节字符不会被截断成乱码
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// SessionTitle 由首条消息生成会话标题
// 空消息返回 nil
func SessionTitle(message string) *string {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	title := TruncateRunes(message, TitleMaxRunes)
	return &title
}

// StringPtr 返回字符串的指针，空字符串返回 nil
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
