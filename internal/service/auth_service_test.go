package service

import (
	"context"
	"testing"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	res, err := e.auth.Register(ctx, "", RegisterInput{Name: " Alex ", Email: "Alex@Campus.edu", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, model.Student, res.User.Role)
	assert.Equal(t, "alex@campus.edu", res.User.Email)
	assert.Empty(t, res.User.Password)

	claims, err := util.ParseJWT(res.Token, e.cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	tests := []struct {
		name  string
		role  model.UserRole
		in    RegisterInput
		check func(t *testing.T, err error)
	}{
		{"duplicate email", model.Student, RegisterInput{Name: "Other", Email: "alex@campus.edu", Password: "secret1"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, util.ErrEmailRegistered)
		}},
		{"admin not allowed", model.Admin, RegisterInput{Name: "Root", Email: "root@campus.edu", Password: "secret1"}, func(t *testing.T, err error) {
			assert.True(t, util.IsValidationError(err))
		}},
		{"short password", model.Teacher, RegisterInput{Name: "T", Email: "t@campus.edu", Password: "123"}, func(t *testing.T, err error) {
			assert.True(t, util.IsValidationError(err))
		}},
		{"bad email", model.Teacher, RegisterInput{Name: "T", Email: "not-an-email", Password: "secret1"}, func(t *testing.T, err error) {
			assert.True(t, util.IsValidationError(err))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.auth.Register(ctx, tt.role, tt.in)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestLoginAndRememberMe(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	reg, err := e.auth.Register(ctx, model.Teacher, RegisterInput{Name: "Sarah", Email: "sarah@campus.edu", Password: "secret1"})
	require.NoError(t, err)
	userID := reg.User.ID
	require.NoError(t, e.auth.Logout(ctx, userID))

	_, err = e.auth.Login(ctx, "sarah@campus.edu", "wrong", true)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = e.auth.Login(ctx, "nobody@campus.edu", "secret1", true)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	// 不勾选“记住我”时不写会话快照
	_, err = e.auth.Login(ctx, "sarah@campus.edu", "secret1", false)
	require.NoError(t, err)
	_, err = e.auth.RestoreSession(ctx, userID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	res, err := e.auth.Login(ctx, "SARAH@campus.edu", "secret1", true)
	require.NoError(t, err)
	assert.Equal(t, model.Teacher, res.User.Role)

	restored, err := e.auth.RestoreSession(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "sarah@campus.edu", restored.Email)
	assert.Empty(t, restored.Password)

	require.NoError(t, e.auth.Logout(ctx, userID))
	_, err = e.auth.RestoreSession(ctx, userID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	assert.ErrorIs(t, e.auth.Logout(ctx, 0), util.ErrUnauthenticated)
}

func TestGetCurrentUser(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u := e.user(t, "maya", model.Student)

	got, err := e.auth.GetCurrentUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "maya", got.Name)

	_, err = e.auth.GetCurrentUser(ctx, 0)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)
	_, err = e.auth.GetCurrentUser(ctx, 404)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
