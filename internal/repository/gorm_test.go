package repository

import (
	"errors"
	"testing"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

var (
	_ UserStore     = (*UserRepository)(nil)
	_ ForumStore    = (*ForumRepository)(nil)
	_ GroupStore    = (*GroupRepository)(nil)
	_ SettingsStore = (*SettingsRepository)(nil)
)

func TestNotFoundMapping(t *testing.T) {
	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound), util.ErrNotFound)

	other := errors.New("connection refused")
	assert.Equal(t, other, notFound(other))
	assert.Nil(t, notFound(nil))
}

func TestTargetModel(t *testing.T) {
	assert.IsType(t, &model.Answer{}, targetModel(model.TargetAnswer))
	assert.IsType(t, &model.Question{}, targetModel(model.TargetQuestion))
}
