package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/repository/memory"
	"campus_portal_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchPage struct {
	List []struct {
		Title  string `json:"title"`
		Status string `json:"status"`
	} `json:"list"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// newForumRouter 三个问题：closed、open、flagged，按创建顺序
func newForumRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepository()
	forum := service.NewForumService(memory.NewForumRepository(), users, service.NewMemoryViewCounter(time.Minute), 5)

	author := &model.User{Name: "author", Email: "author@campus.test", Role: model.Student}
	require.NoError(t, users.Create(ctx, author))

	ids := make([]string, 0, 3)
	for _, title := range []string{"closed one", "open one", "flagged one"} {
		q, err := forum.CreateQuestion(ctx, author.ID, service.QuestionInput{Title: title, Content: "body", Tags: []string{"go"}})
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}
	_, err := forum.CloseQuestion(ctx, author.ID, ids[0])
	require.NoError(t, err)
	_, err = forum.FlagQuestion(ctx, author.ID, ids[2])
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/questions", NewForumController(forum).SearchQuestions)
	return r
}

func getJSON(t *testing.T, r http.Handler, url string, data interface{}) int {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	if w.Code == http.StatusOK {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return w.Code
}

func TestSearchQuestionsPagination(t *testing.T) {
	r := newForumRouter(t)

	tests := []struct {
		name      string
		query     string
		wantLen   int
		wantPage  int
		wantLimit int
	}{
		{"first page", "page=1&limit=2", 2, 1, 2},
		{"last partial page", "page=2&limit=2", 1, 2, 2},
		{"past the end", "page=3&limit=2", 0, 3, 2},
		{"huge page does not overflow", "page=461168601842738792&limit=20", 0, 461168601842738792, 20},
		{"max int page", "page=9223372036854775807&limit=100", 0, 9223372036854775807, 100},
		{"invalid page falls back", "page=0&limit=2", 2, 1, 2},
		{"invalid limit falls back", "page=1&limit=1000", 3, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page searchPage
			code := getJSON(t, r, "/questions?sortBy=oldest&"+tt.query, &page)
			require.Equal(t, http.StatusOK, code)
			assert.Len(t, page.List, tt.wantLen)
			assert.Equal(t, int64(3), page.Total)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantLimit, page.Limit)
		})
	}
}

func TestSearchQuestionsWithoutPageReturnsFullList(t *testing.T) {
	r := newForumRouter(t)

	var list []model.Question
	require.Equal(t, http.StatusOK, getJSON(t, r, "/questions", &list))
	assert.Len(t, list, 3)
}

func TestSearchQuestionsListParameters(t *testing.T) {
	r := newForumRouter(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"comma separated status", "status=open,closed", []string{"closed one", "open one"}},
		{"repeated status", "status=open&status=flagged", []string{"open one", "flagged one"}},
		{"status with spaces", "status=%20flagged%20,", []string{"flagged one"}},
		{"comma separated tags", "tags=rust,go", []string{"closed one", "open one", "flagged one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []model.Question
			require.Equal(t, http.StatusOK, getJSON(t, r, "/questions?sortBy=oldest&"+tt.query, &list))
			titles := make([]string, len(list))
			for i, q := range list {
				titles[i] = q.Title
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "", "c,"}))
	assert.Equal(t,
		[]model.GroupVisibility{model.GroupPublic, model.GroupPrivate},
		splitList([]model.GroupVisibility{"public,private"}))
	assert.Empty(t, splitList[string](nil))
}
