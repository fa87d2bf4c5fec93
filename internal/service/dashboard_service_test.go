package service

import (
	"context"
	"testing"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserDashboard(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	me := e.user(t, "me", model.Student)
	other := e.user(t, "other", model.Student)

	mine := e.question(t, me.ID, "Mine", "go", "sql")
	e.question(t, me.ID, "Mine unanswered", "go")
	theirs := e.question(t, other.ID, "Theirs", "rust")
	e.answer(t, me.ID, theirs.ID)
	e.answer(t, other.ID, mine.ID)
	_, err := e.forumSvc.CastVote(ctx, mine.ID, model.TargetQuestion, model.Upvote, other.ID)
	require.NoError(t, err)

	g := e.group(t, other.ID, "Study", model.GroupPublic)
	_, err = e.groupSvc.JoinGroup(ctx, g.ID, me.ID)
	require.NoError(t, err)
	open, err := e.groupSvc.CreateTask(ctx, g.ID, other.ID, TaskInput{Title: "Open", AssigneeID: &me.ID})
	require.NoError(t, err)
	done, err := e.groupSvc.CreateTask(ctx, g.ID, other.ID, TaskInput{Title: "Cancelled", AssigneeID: &me.ID})
	require.NoError(t, err)
	_, err = e.groupSvc.UpdateTaskStatus(ctx, g.ID, done.ID, me.ID, model.TaskCancelled)
	require.NoError(t, err)

	d, err := e.dashboard.GetUserDashboard(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{
		QuestionsAsked:  2,
		AnswersGiven:    1,
		VotesReceived:   1,
		Groups:          1,
		OpenTasks:       1,
		UnansweredAsked: 1,
	}, d.Stats)
	require.Len(t, d.MyOpenTasks, 1)
	assert.Equal(t, open.ID, d.MyOpenTasks[0].ID)
	require.NotEmpty(t, d.PopularTags)
	assert.Equal(t, "go", d.PopularTags[0].Name)
	require.Len(t, d.RecentQuestions, 3)
	// 最近被回答的问题活跃度最高
	assert.Equal(t, mine.ID, d.RecentQuestions[0].ID)

	_, err = e.dashboard.GetUserDashboard(ctx, 0)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)
}
