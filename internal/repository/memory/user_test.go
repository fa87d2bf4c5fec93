package memory

import (
	"context"
	"testing"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	ana := &model.User{Name: "Ana", Email: "Ana@Campus.edu", Role: model.Student}
	require.NoError(t, r.Create(ctx, ana))
	assert.Equal(t, uint(1), ana.ID)

	assert.ErrorIs(t, r.Create(ctx, &model.User{Email: "ana@campus.edu"}), util.ErrEmailRegistered)

	found, err := r.FindByEmail(ctx, "ANA@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, found.ID)

	ben := &model.User{Name: "Ben", Email: "ben@campus.edu"}
	require.NoError(t, r.Create(ctx, ben))
	ben.Email = "ana@campus.edu"
	assert.ErrorIs(t, r.Update(ctx, ben), util.ErrEmailRegistered)

	_, err = r.FindByID(ctx, 42)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
