package memory

import (
	"context"
	"testing"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsUpdateStartsFromDefaults(t *testing.T) {
	ctx := context.Background()
	r := NewSettingsRepository()

	_, err := r.Get(ctx, 1)
	assert.ErrorIs(t, err, util.ErrNotFound)

	defaults := model.DefaultSettings(model.User{BaseModel: model.BaseModel{ID: 1}, Name: "Ana"})
	saved, err := r.Update(ctx, 1, defaults, func(s *model.UserSettings) {
		s.Appearance.Theme = "dark"
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", saved.Appearance.Theme)
	assert.Equal(t, "Ana", saved.Profile.DisplayName)

	_, err = r.Update(ctx, 1, model.UserSettings{}, func(s *model.UserSettings) {
		s.Privacy.ShowEmail = true
	})
	require.NoError(t, err)

	got, err := r.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Appearance.Theme)
	assert.True(t, got.Privacy.ShowEmail)
}
