package service

import (
	"context"
	"strings"
	"testing"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupMakesCreatorLeader(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	leader := e.user(t, "leader", model.Student)

	g := e.group(t, leader.ID, "  Algorithms  ", "")
	assert.Equal(t, "Algorithms", g.Name)
	assert.Equal(t, model.GroupPublic, g.Visibility)
	assert.Equal(t, 10, g.MaxMembers)
	m, ok := g.Member(leader.ID)
	require.True(t, ok)
	assert.Equal(t, model.RoleLeader, m.Role)

	_, err := e.groupSvc.CreateGroup(ctx, 0, GroupInput{Name: "x"})
	assert.ErrorIs(t, err, util.ErrUnauthenticated)
	_, err = e.groupSvc.CreateGroup(ctx, leader.ID, GroupInput{Name: " "})
	assert.True(t, util.IsValidationError(err))
	_, err = e.groupSvc.CreateGroup(ctx, leader.ID, GroupInput{Name: "x", Visibility: "secret"})
	assert.True(t, util.IsValidationError(err))
}

func TestJoinAndLeaveGroup(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	leader := e.user(t, "leader", model.Student)
	alice := e.user(t, "alice", model.Student)
	bob := e.user(t, "bob", model.Student)

	g, err := e.groupSvc.CreateGroup(ctx, leader.ID, GroupInput{Name: "Small", MaxMembers: 2})
	require.NoError(t, err)
	private := e.group(t, leader.ID, "Private", model.GroupPrivate)

	joined, err := e.groupSvc.JoinGroup(ctx, g.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, joined.Members, 2)

	tests := []struct {
		name    string
		groupID string
		userID  uint
		want    error
	}{
		{"already a member", g.ID, alice.ID, util.ErrConflict},
		{"group full", g.ID, bob.ID, util.ErrGroupFull},
		{"private group", private.ID, bob.ID, util.ErrForbidden},
		{"missing group", "missing", bob.ID, util.ErrNotFound},
		{"unauthenticated", g.ID, 0, util.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.groupSvc.JoinGroup(ctx, tt.groupID, tt.userID)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// 唯一的组长在还有其他成员时不能退出
	err = e.groupSvc.LeaveGroup(ctx, g.ID, leader.ID)
	assert.True(t, util.IsValidationError(err))

	require.NoError(t, e.groupSvc.LeaveGroup(ctx, g.ID, alice.ID))
	got, err := e.groupSvc.GetGroup(ctx, g.ID, leader.ID)
	require.NoError(t, err)
	assert.Len(t, got.Members, 1)

	assert.ErrorIs(t, e.groupSvc.LeaveGroup(ctx, g.ID, alice.ID), util.ErrForbidden)
}

func TestPrivateGroupsHiddenFromNonMembers(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	leader := e.user(t, "leader", model.Student)
	outsider := e.user(t, "outsider", model.Student)
	private := e.group(t, leader.ID, "Private", model.GroupPrivate)
	e.group(t, leader.ID, "Public", model.GroupPublic)

	_, err := e.groupSvc.GetGroup(ctx, private.ID, outsider.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	groups, err := e.groupSvc.SearchGroups(ctx, outsider.ID, GroupFilter{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Public", groups[0].Name)

	_, err = e.groupSvc.AddMember(ctx, private.ID, leader.ID, outsider.ID)
	require.NoError(t, err)
	groups, err = e.groupSvc.SearchGroups(ctx, outsider.ID, GroupFilter{})
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	mine, err := e.groupSvc.ListMyGroups(ctx, outsider.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, private.ID, mine[0].ID)
}

func TestMemberRoles(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	leader := e.user(t, "leader", model.Student)
	mod := e.user(t, "mod", model.Student)
	member := e.user(t, "member", model.Student)
	g := e.group(t, leader.ID, "Roles", model.GroupPublic)
	for _, u := range []*model.User{mod, member} {
		_, err := e.groupSvc.JoinGroup(ctx, g.ID, u.ID)
		require.NoError(t, err)
	}

	_, err := e.groupSvc.UpdateMemberRole(ctx, g.ID, mod.ID, member.ID, model.RoleModerator)
	assert.ErrorIs(t, err, util.ErrForbidden)

	updated, err := e.groupSvc.UpdateMemberRole(ctx, g.ID, leader.ID, mod.ID, model.RoleModerator)
	require.NoError(t, err)
	m, _ := updated.Member(mod.ID)
	assert.Equal(t, model.RoleModerator, m.Role)

	_, err = e.groupSvc.UpdateMemberRole(ctx, g.ID, leader.ID, leader.ID, model.RoleMember)
	assert.True(t, util.IsValidationError(err))
	_, err = e.groupSvc.UpdateMemberRole(ctx, g.ID, leader.ID, mod.ID, "owner")
	assert.True(t, util.IsValidationError(err))

	assert.ErrorIs(t, e.groupSvc.RemoveMember(ctx, g.ID, member.ID, mod.ID), util.ErrForbidden)
	assert.ErrorIs(t, e.groupSvc.RemoveMember(ctx, g.ID, mod.ID, leader.ID), util.ErrForbidden)
	require.NoError(t, e.groupSvc.RemoveMember(ctx, g.ID, mod.ID, member.ID))
	assert.ErrorIs(t, e.groupSvc.RemoveMember(ctx, g.ID, mod.ID, member.ID), util.ErrNotFound)
}

func TestTaskWorkflow(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	leader := e.user(t, "leader", model.Student)
	member := e.user(t, "member", model.Student)
	outsider := e.user(t, "outsider", model.Student)
	g := e.group(t, leader.ID, "Tasks", model.GroupPublic)
	_, err := e.groupSvc.JoinGroup(ctx, g.ID, member.ID)
	require.NoError(t, err)

	task, err := e.groupSvc.CreateTask(ctx, g.ID, member.ID, TaskInput{Title: "Read chapter 3", AssigneeID: &member.ID})
	require.NoError(t, err)
	assert.Equal(t, model.TaskTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)

	_, err = e.groupSvc.CreateTask(ctx, g.ID, outsider.ID, TaskInput{Title: "nope"})
	assert.ErrorIs(t, err, util.ErrForbidden)
	_, err = e.groupSvc.CreateTask(ctx, g.ID, leader.ID, TaskInput{Title: "nope", AssigneeID: &outsider.ID})
	assert.True(t, util.IsValidationError(err))

	steps := []struct {
		to      model.TaskStatus
		wantErr bool
	}{
		{model.TaskReview, true},
		{model.TaskInProgress, false},
		{model.TaskReview, false},
		{model.TaskCompleted, false},
		{model.TaskTodo, true},
		{model.TaskCancelled, true},
	}
	for _, step := range steps {
		got, err := e.groupSvc.UpdateTaskStatus(ctx, g.ID, task.ID, member.ID, step.to)
		if step.wantErr {
			assert.ErrorIs(t, err, util.ErrInvalidTransition, "to %s", step.to)
			continue
		}
		require.NoError(t, err, "to %s", step.to)
		assert.Equal(t, step.to, got.Status)
	}

	final, err := e.groupSvc.ListTasks(ctx, g.ID, leader.ID)
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, model.TaskCompleted, final[0].Status)
	assert.NotNil(t, final[0].CompletedAt)

	_, err = e.groupSvc.UpdateTaskStatus(ctx, g.ID, task.ID, member.ID, "done")
	assert.True(t, util.IsValidationError(err))
	_, err = e.groupSvc.UpdateTaskStatus(ctx, g.ID, "missing", member.ID, model.TaskInProgress)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestAssignTask(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	leader := e.user(t, "leader", model.Student)
	member := e.user(t, "member", model.Student)
	outsider := e.user(t, "outsider", model.Student)
	g := e.group(t, leader.ID, "Assign", model.GroupPublic)
	_, err := e.groupSvc.JoinGroup(ctx, g.ID, member.ID)
	require.NoError(t, err)
	task, err := e.groupSvc.CreateTask(ctx, g.ID, leader.ID, TaskInput{Title: "Slides"})
	require.NoError(t, err)

	got, err := e.groupSvc.AssignTask(ctx, g.ID, task.ID, leader.ID, &member.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, member.ID, *got.AssigneeID)

	_, err = e.groupSvc.AssignTask(ctx, g.ID, task.ID, leader.ID, &outsider.ID)
	assert.True(t, util.IsValidationError(err))

	got, err = e.groupSvc.AssignTask(ctx, g.ID, task.ID, leader.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.AssigneeID)
}

func TestGroupFilesAndDiscussions(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	leader := e.user(t, "leader", model.Student)
	outsider := e.user(t, "outsider", model.Student)
	g := e.group(t, leader.ID, "Files", model.GroupPublic)

	body := "lecture notes"
	f, err := e.groupSvc.UploadFile(ctx, g.ID, leader.ID, "notes.md", strings.NewReader(body), int64(len(body)), "text/markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.URL, "/uploads/groups/"+g.ID+"/"))
	assert.True(t, strings.HasSuffix(f.URL, ".md"))

	_, err = e.groupSvc.UploadFile(ctx, g.ID, leader.ID, "run.exe", strings.NewReader(body), int64(len(body)), "")
	assert.True(t, util.IsValidationError(err))
	_, err = e.groupSvc.UploadFile(ctx, g.ID, outsider.ID, "notes.md", strings.NewReader(body), int64(len(body)), "")
	assert.ErrorIs(t, err, util.ErrForbidden)

	files, err := e.groupSvc.ListFiles(ctx, g.ID, leader.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.md", files[0].Name)

	_, err = e.groupSvc.PostDiscussion(ctx, g.ID, leader.ID, DiscussionInput{Title: "Week 1", Content: "Agenda"})
	require.NoError(t, err)
	_, err = e.groupSvc.PostDiscussion(ctx, g.ID, leader.ID, DiscussionInput{Content: ""})
	assert.True(t, util.IsValidationError(err))

	discussions, err := e.groupSvc.ListDiscussions(ctx, g.ID, leader.ID)
	require.NoError(t, err)
	require.Len(t, discussions, 1)
	assert.Equal(t, "Week 1", discussions[0].Title)

	_, err = e.groupSvc.ListDiscussions(ctx, g.ID, outsider.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	got, err := e.groupSvc.GetGroup(ctx, g.ID, leader.ID)
	require.NoError(t, err)
	assert.True(t, got.LastActivity.After(g.LastActivity))
}

func TestFilterGroups(t *testing.T) {
	groups := []model.Group{
		{UUIDBase: model.UUIDBase{ID: "a"}, Name: "beta", Category: "math", Visibility: model.GroupPublic, MaxMembers: 2,
			Members: []model.GroupMember{{UserID: 1}, {UserID: 2}}},
		{UUIDBase: model.UUIDBase{ID: "b"}, Name: "Alpha", Category: "cs", Visibility: model.GroupPublic, MaxMembers: 5,
			Description: "graph algorithms", Members: []model.GroupMember{{UserID: 1}}},
		{UUIDBase: model.UUIDBase{ID: "c"}, Name: "gamma", Category: "CS", Visibility: model.GroupPrivate, MaxMembers: 5,
			Members: []model.GroupMember{{UserID: 1}, {UserID: 3}}},
	}
	yes := true

	tests := []struct {
		name string
		f    GroupFilter
		want []string
	}{
		{"name sort", GroupFilter{SortBy: GroupSortName}, []string{"b", "a", "c"}},
		{"members sort is stable", GroupFilter{SortBy: GroupSortMembers}, []string{"a", "c", "b"}},
		{"category case-insensitive", GroupFilter{Category: []string{"cs"}, SortBy: GroupSortOldest}, []string{"b", "c"}},
		{"description query", GroupFilter{Query: "GRAPH"}, []string{"b"}},
		{"open slots", GroupFilter{HasOpenSlots: &yes, SortBy: GroupSortOldest}, []string{"b", "c"}},
		{"visibility", GroupFilter{Visibility: []model.GroupVisibility{model.GroupPrivate}}, []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterGroups(groups, tt.f)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, g := range got {
				ids[i] = g.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err := FilterGroups(groups, GroupFilter{SortBy: "size"})
	assert.True(t, util.IsValidationError(err))
}
