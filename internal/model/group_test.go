package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		want     bool
	}{
		{TaskTodo, TaskInProgress, true},
		{TaskTodo, TaskReview, false},
		{TaskTodo, TaskCompleted, false},
		{TaskInProgress, TaskReview, true},
		{TaskInProgress, TaskTodo, true},
		{TaskReview, TaskCompleted, true},
		{TaskReview, TaskInProgress, true},
		{TaskCompleted, TaskTodo, false},
		{TaskCompleted, TaskCancelled, false},
		{TaskCancelled, TaskTodo, true},
		{TaskTodo, TaskCancelled, true},
		{TaskStatus("done"), TaskTodo, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestGroupSlotsAndLeaders(t *testing.T) {
	g := Group{MaxMembers: 2, Members: []GroupMember{{UserID: 1, Role: RoleLeader}}}
	assert.True(t, g.HasOpenSlots())
	assert.Equal(t, 1, g.LeaderCount())

	g.Members = append(g.Members, GroupMember{UserID: 2, Role: RoleMember})
	assert.False(t, g.HasOpenSlots())

	m, ok := g.Member(2)
	assert.True(t, ok)
	assert.Equal(t, RoleMember, m.Role)

	_, ok = g.Member(3)
	assert.False(t, ok)

	unlimited := Group{}
	assert.True(t, unlimited.HasOpenSlots())
}
