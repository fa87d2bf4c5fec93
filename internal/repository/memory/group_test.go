package memory

import (
	"context"
	"testing"
	"time"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMemberCapacityAndDuplicates(t *testing.T) {
	ctx := context.Background()
	r := NewGroupRepository()
	g := &model.Group{Name: "Algorithms", MaxMembers: 2, Members: []model.GroupMember{{UserID: 1, Role: model.RoleLeader}}}
	require.NoError(t, r.CreateGroup(ctx, g))

	assert.ErrorIs(t, r.AddMember(ctx, g.ID, model.GroupMember{UserID: 1, Role: model.RoleMember}), util.ErrConflict)
	require.NoError(t, r.AddMember(ctx, g.ID, model.GroupMember{UserID: 2, Role: model.RoleMember}))
	assert.ErrorIs(t, r.AddMember(ctx, g.ID, model.GroupMember{UserID: 3, Role: model.RoleMember}), util.ErrGroupFull)
	assert.ErrorIs(t, r.AddMember(ctx, "missing", model.GroupMember{UserID: 3}), util.ErrNotFound)

	mine, err := r.ListGroupsByMember(ctx, 2)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, g.ID, mine[0].Members[1].GroupID)

	require.NoError(t, r.RemoveMember(ctx, g.ID, 2))
	assert.ErrorIs(t, r.RemoveMember(ctx, g.ID, 2), util.ErrNotFound)
}

func TestTasksScopedToGroup(t *testing.T) {
	ctx := context.Background()
	r := NewGroupRepository()
	a := &model.Group{Name: "A"}
	b := &model.Group{Name: "B"}
	require.NoError(t, r.CreateGroup(ctx, a))
	require.NoError(t, r.CreateGroup(ctx, b))

	assignee := uint(9)
	task := &model.GroupTask{GroupID: a.ID, Title: "write report", Status: model.TaskTodo, AssigneeID: &assignee}
	require.NoError(t, r.CreateTask(ctx, task))

	_, err := r.FindTask(ctx, b.ID, task.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	updated, err := r.UpdateTask(ctx, a.ID, task.ID, func(t *model.GroupTask) error {
		t.Status = model.TaskInProgress
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskInProgress, updated.Status)

	mine, err := r.ListTasksByAssignee(ctx, 9)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	*mine[0].AssigneeID = 10

	again, err := r.FindTask(ctx, a.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(9), *again.AssigneeID)

	assert.ErrorIs(t, r.CreateTask(ctx, &model.GroupTask{GroupID: "missing"}), util.ErrNotFound)
	require.NoError(t, r.TouchGroup(ctx, a.ID, time.Unix(100, 0)))
	got, err := r.FindGroup(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(100, 0), got.LastActivity)
}
