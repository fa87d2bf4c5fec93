package service

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionStore 保存“记住我”登录用户的快照；登录/注册时覆盖，退出时删除
type SessionStore interface {
	Save(ctx context.Context, user model.User, ttl time.Duration) error
	Load(ctx context.Context, userID uint) (*model.User, error)
	Delete(ctx context.Context, userID uint) error
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("session:user:%d", userID)
}

type RedisSessionStore struct {
	Redis *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{Redis: rdb}
}

func (s *RedisSessionStore) Save(ctx context.Context, user model.User, ttl time.Duration) error {
	val, err := json.Marshal(user.Public())
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, sessionKey(user.ID), val, ttl).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context, userID uint) (*model.User, error) {
	val, err := s.Redis.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID uint) error {
	return s.Redis.Del(ctx, sessionKey(userID)).Err()
}

type memorySession struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore 未启用 Redis 时使用，同样按 JSON 序列化保存
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uint]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uint]memorySession), now: time.Now}
}

func (s *MemorySessionStore) Save(_ context.Context, user model.User, ttl time.Duration) error {
	val, err := json.Marshal(user.Public())
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[user.ID] = memorySession{data: val, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Load(_ context.Context, userID uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, util.ErrNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, userID)
		return nil, util.ErrNotFound
	}
	var user model.User
	if err := json.Unmarshal(sess.data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
