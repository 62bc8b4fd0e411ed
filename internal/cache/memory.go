package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache 进程内缓存，用于没有 Redis 的单实例部署和测试
type MemoryCache struct {
	mu          sync.Mutex
	blacklist   map[string]time.Time // tokenHash -> 过期时间
	recent      map[int64]recentEntry
	recentLimit int
	recentTTL   time.Duration
	now         func() time.Time
}

type recentEntry struct {
	foods    []string
	expireAt time.Time // 零值表示不过期
}

// NewMemoryCache 创建 MemoryCache 实例
// 参数:
//   - recentLimit: 每个用户保留的最近菜品数量，<=0 时为 5
//   - recentTTL: 最近菜品的保留时长，0 表示不过期
func NewMemoryCache(recentLimit int, recentTTL time.Duration) *MemoryCache {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	return &MemoryCache{
		blacklist:   make(map[string]time.Time),
		recent:      make(map[int64]recentEntry),
		recentLimit: recentLimit,
		recentTTL:   recentTTL,
		now:         time.Now,
	}
}

// BlacklistToken 将 Token 加入黑名单
func (c *MemoryCache) BlacklistToken(_ context.Context, tokenHash string, expireAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !expireAt.After(c.now()) {
		return nil
	}
	c.blacklist[tokenHash] = expireAt
	return nil
}

// IsTokenBlacklisted 检查 Token 是否在黑名单中，顺带清理过期项
func (c *MemoryCache) IsTokenBlacklisted(_ context.Context, tokenHash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expireAt, ok := c.blacklist[tokenHash]
	if !ok {
		return false
	}
	if !expireAt.After(c.now()) {
		delete(c.blacklist, tokenHash)
		return false
	}
	return true
}

// PushRecentFood 记录最近推荐的菜品
func (c *MemoryCache) PushRecentFood(_ context.Context, userID int64, food string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.liveEntry(userID)
	foods := append([]string{food}, entry.foods...)
	if len(foods) > c.recentLimit {
		foods = foods[:c.recentLimit]
	}
	entry.foods = foods
	if c.recentTTL > 0 {
		entry.expireAt = c.now().Add(c.recentTTL)
	}
	c.recent[userID] = entry
	return nil
}

// RecentFoods 获取最近推荐的菜品，最新的在前
func (c *MemoryCache) RecentFoods(_ context.Context, userID int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.liveEntry(userID)
	out := make([]string, len(entry.foods))
	copy(out, entry.foods)
	return out, nil
}

// liveEntry 返回未过期的记录，调用方需持有锁
func (c *MemoryCache) liveEntry(userID int64) recentEntry {
	entry, ok := c.recent[userID]
	if !ok {
		return recentEntry{}
	}
	if !entry.expireAt.IsZero() && !entry.expireAt.After(c.now()) {
		delete(c.recent, userID)
		return recentEntry{}
	}
	return entry
}

// Ping 进程内缓存始终可用
func (c *MemoryCache) Ping(context.Context) error { return nil }

// Close 无需释放资源
func (c *MemoryCache) Close() error { return nil }
