package service

import (
	"context"
	"testing"
	"time"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemorySessionStore()
	s.now = func() time.Time { return now }

	user := model.User{BaseModel: model.BaseModel{ID: 7}, Name: "Alex", Email: "alex@campus.edu", Password: "hash"}
	require.NoError(t, s.Save(ctx, user, time.Hour))

	got, err := s.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.Name)
	assert.Empty(t, got.Password)

	// 再次保存覆盖旧快照
	user.Name = "Alex Chen"
	require.NoError(t, s.Save(ctx, user, time.Hour))
	got, err = s.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Alex Chen", got.Name)

	now = now.Add(time.Hour)
	_, err = s.Load(ctx, 7)
	assert.ErrorIs(t, err, util.ErrNotFound)

	require.NoError(t, s.Save(ctx, user, time.Hour))
	require.NoError(t, s.Delete(ctx, 7))
	_, err = s.Load(ctx, 7)
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.NoError(t, s.Delete(ctx, 7))
}

func TestMemoryViewCounter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	v := NewMemoryViewCounter(10 * time.Minute)
	v.now = func() time.Time { return now }

	steps := []struct {
		advance  time.Duration
		question string
		viewer   string
		want     bool
	}{
		{0, "q1", "alice", true},
		{time.Minute, "q1", "alice", false},
		{0, "q1", "bob", true},
		{0, "q2", "alice", true},
		{10 * time.Minute, "q1", "alice", true},
		{time.Second, "q1", "alice", false},
	}
	for i, step := range steps {
		now = now.Add(step.advance)
		got, err := v.ShouldCount(ctx, step.question, step.viewer)
		require.NoError(t, err)
		assert.Equal(t, step.want, got, "step %d", i)
	}
}
