package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mealmood-server/internal/config"
)

// RedisCache 封装 Redis 客户端，提供业务相关的缓存操作
type RedisCache struct {
	client      *redis.Client
	recentLimit int           // 每个用户保留的最近菜品数量
	recentTTL   time.Duration // 最近菜品列表的过期时间
}

// NewRedisCache 创建 RedisCache 实例并测试连接
// 参数:
//   - cfg: 应用配置（包含 Redis 连接信息）
//
// 返回:
//   - *RedisCache: 缓存实例
//   - error: 连接错误
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisCacheWithClient(client, cfg.Assistant.RecentFoods, cfg.Redis.RecentTTL), nil
}

// NewRedisCacheWithClient 使用已有的客户端创建 RedisCache
func NewRedisCacheWithClient(client *redis.Client, recentLimit int, recentTTL time.Duration) *RedisCache {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	return &RedisCache{client: client, recentLimit: recentLimit, recentTTL: recentTTL}
}

// Close 关闭 Redis 连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 检查 Redis 连接
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// ==================== JWT 黑名单 ====================

// BlacklistToken 将 Token 加入黑名单
// TTL 为 Token 的剩余有效期，已过期的 Token 不写入
func (c *RedisCache) BlacklistToken(ctx context.Context, tokenHash string, expireAt time.Time) error {
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, blacklistKey(tokenHash), "1", ttl).Err()
}

// IsTokenBlacklisted 检查 Token 是否在黑名单中
func (c *RedisCache) IsTokenBlacklisted(ctx context.Context, tokenHash string) bool {
	return c.client.Exists(ctx, blacklistKey(tokenHash)).Val() > 0
}

// ==================== 最近推荐 ====================
// 使用 List 存储，LPUSH 后 LTRIM 保证长度

// PushRecentFood 记录最近推荐的菜品
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//   - food: 菜品名
//
// 返回:
//   - error: Redis 操作错误
func (c *RedisCache) PushRecentFood(ctx context.Context, userID int64, food string) error {
	key := recentFoodsKey(userID)
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, food)
	pipe.LTrim(ctx, key, 0, int64(c.recentLimit-1))
	if c.recentTTL > 0 {
		pipe.Expire(ctx, key, c.recentTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RecentFoods 获取最近推荐的菜品，没有记录时返回空切片
func (c *RedisCache) RecentFoods(ctx context.Context, userID int64) ([]string, error) {
	foods, err := c.client.LRange(ctx, recentFoodsKey(userID), 0, int64(c.recentLimit-1)).Result()
	if err == redis.Nil {
		return []string{}, nil
	}
	return foods, err
}

func blacklistKey(tokenHash string) string {
	return fmt.Sprintf("jwt:blacklist:%s", tokenHash)
}

func recentFoodsKey(userID int64) string {
	return fmt.Sprintf("user:%d:recent_foods", userID)
}
