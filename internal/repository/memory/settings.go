package memory

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"context"
	"sync"
	"time"
)

type SettingsRepository struct {
	mu       sync.RWMutex
	settings map[uint]model.UserSettings
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{settings: make(map[uint]model.UserSettings)}
}

func (r *SettingsRepository) Get(_ context.Context, userID uint) (*model.UserSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[userID]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &s, nil
}

func (r *SettingsRepository) Update(_ context.Context, userID uint, defaults model.UserSettings, fn func(s *model.UserSettings)) (*model.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.settings[userID]
	if !ok {
		s = defaults
	}
	s.UserID = userID
	fn(&s)
	s.UpdatedAt = time.Now()
	r.settings[userID] = s
	return &s, nil
}
