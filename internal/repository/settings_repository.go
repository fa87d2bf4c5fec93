package repository

import (
	"campus_portal_backend/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	DB *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

func (r *SettingsRepository) Get(ctx context.Context, userID uint) (*model.UserSettings, error) {
	var s model.UserSettings
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Take(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, userID uint, defaults model.UserSettings, fn func(s *model.UserSettings)) (*model.UserSettings, error) {
	var s model.UserSettings
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).Take(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s = defaults
		} else if err != nil {
			return err
		}
		s.UserID = userID
		fn(&s)
		s.UpdatedAt = time.Now()
		// bool 字段为 false 时也要写入，使用 Save 全量保存
		return tx.Save(&s).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}
