package service

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/repository"
	"campus_portal_backend/internal/util"
	"context"
	"errors"
)

// SettingsService 每个设置分区一个更新方法，只覆盖请求中给出的字段
type SettingsService struct {
	Settings repository.SettingsStore
	Users    repository.UserStore
}

func NewSettingsService(settings repository.SettingsStore, users repository.UserStore) *SettingsService {
	return &SettingsService{Settings: settings, Users: users}
}

func (s *SettingsService) defaults(ctx context.Context, userID uint) (model.UserSettings, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, util.ErrNotFound) {
		return model.UserSettings{}, util.ErrUnauthenticated
	}
	if err != nil {
		return model.UserSettings{}, err
	}
	return model.DefaultSettings(*user), nil
}

func (s *SettingsService) GetSettings(ctx context.Context, userID uint) (*model.UserSettings, error) {
	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	settings, err := s.Settings.Get(ctx, userID)
	if errors.Is(err, util.ErrNotFound) {
		d, err := s.defaults(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &d, nil
	}
	return settings, err
}

func (s *SettingsService) update(ctx context.Context, userID uint, overrides interface{}, apply func(*model.UserSettings)) (*model.UserSettings, error) {
	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	if err := util.Validate(overrides); err != nil {
		return nil, err
	}
	d, err := s.defaults(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Settings.Update(ctx, userID, d, apply)
}

func (s *SettingsService) UpdateProfile(ctx context.Context, userID uint, o model.ProfileOverrides) (*model.UserSettings, error) {
	return s.update(ctx, userID, o, func(cur *model.UserSettings) {
		cur.Profile = model.MergeProfile(cur.Profile, o)
	})
}

func (s *SettingsService) UpdateNotifications(ctx context.Context, userID uint, o model.NotificationOverrides) (*model.UserSettings, error) {
	return s.update(ctx, userID, o, func(cur *model.UserSettings) {
		cur.Notifications = model.MergeNotifications(cur.Notifications, o)
	})
}

func (s *SettingsService) UpdatePrivacy(ctx context.Context, userID uint, o model.PrivacyOverrides) (*model.UserSettings, error) {
	return s.update(ctx, userID, o, func(cur *model.UserSettings) {
		cur.Privacy = model.MergePrivacy(cur.Privacy, o)
	})
}

func (s *SettingsService) UpdateAppearance(ctx context.Context, userID uint, o model.AppearanceOverrides) (*model.UserSettings, error) {
	return s.update(ctx, userID, o, func(cur *model.UserSettings) {
		cur.Appearance = model.MergeAppearance(cur.Appearance, o)
	})
}
