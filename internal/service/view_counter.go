package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ViewCounter 判断一次浏览是否计入浏览量：同一访客在窗口期内只计一次
type ViewCounter interface {
	ShouldCount(ctx context.Context, questionID, viewerKey string) (bool, error)
}

func viewKey(questionID, viewerKey string) string {
	return fmt.Sprintf("question_v:%s:%s", questionID, viewerKey)
}

type RedisViewCounter struct {
	Redis  *redis.Client
	Window time.Duration
}

func NewRedisViewCounter(rdb *redis.Client, window time.Duration) *RedisViewCounter {
	return &RedisViewCounter{Redis: rdb, Window: window}
}

func (v *RedisViewCounter) ShouldCount(ctx context.Context, questionID, viewerKey string) (bool, error) {
	// 使用 SetNX (If Not Exists) 设置标识
	return v.Redis.SetNX(ctx, viewKey(questionID, viewerKey), "1", v.Window).Result()
}

type MemoryViewCounter struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

func NewMemoryViewCounter(window time.Duration) *MemoryViewCounter {
	return &MemoryViewCounter{seen: make(map[string]time.Time), window: window, now: time.Now}
}

func (v *MemoryViewCounter) ShouldCount(_ context.Context, questionID, viewerKey string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	key := viewKey(questionID, viewerKey)
	if exp, ok := v.seen[key]; ok && now.Before(exp) {
		return false, nil
	}
	v.seen[key] = now.Add(v.window)

	// 顺带清理过期条目，避免无限增长
	if len(v.seen) > 10000 {
		for k, exp := range v.seen {
			if !now.Before(exp) {
				delete(v.seen, k)
			}
		}
	}
	return true, nil
}
