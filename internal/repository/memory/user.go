package memory

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"context"
	"strings"
	"sync"
	"time"
)

type UserRepository struct {
	mu      sync.RWMutex
	users   map[uint]*model.User
	byEmail map[string]uint
	nextID  uint
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[uint]*model.User),
		byEmail: make(map[string]uint),
		nextID:  1,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return util.ErrEmailRegistered
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	user.ID = r.nextID
	r.nextID++

	stored := *user
	r.users[user.ID] = &stored
	r.byEmail[key] = user.ID
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id uint) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *r.users[id]
	return &cp, nil
}

func (r *UserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[user.ID]
	if !ok {
		return util.ErrNotFound
	}
	oldKey, newKey := emailKey(cur.Email), emailKey(user.Email)
	if oldKey != newKey {
		if _, taken := r.byEmail[newKey]; taken {
			return util.ErrEmailRegistered
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = user.ID
	}

	user.UpdatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}
