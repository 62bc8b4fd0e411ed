// Package cache 提供需要快速访问的数据的缓存操作
// 包括 JWT 黑名单和每个用户最近推荐过的菜品
// 配置了 Redis 时使用 RedisCache，否则使用进程内的 MemoryCache
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache 业务层依赖的缓存接口
type Cache interface {
	// BlacklistToken 将 Token 哈希加入黑名单，直到 expireAt 自动失效
	BlacklistToken(ctx context.Context, tokenHash string, expireAt time.Time) error
	// IsTokenBlacklisted 检查 Token 哈希是否在黑名单中
	IsTokenBlacklisted(ctx context.Context, tokenHash string) bool
	// PushRecentFood 记录一次推荐的菜品，只保留最近的若干条
	PushRecentFood(ctx context.Context, userID int64, food string) error
	// RecentFoods 返回最近推荐过的菜品，最新的在前
	RecentFoods(ctx context.Context, userID int64) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// HashToken 计算 Token 的 SHA-256 哈希，黑名单中不存储原始 Token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
