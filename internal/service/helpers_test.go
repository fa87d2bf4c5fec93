package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"campus_portal_backend/internal/config"
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/repository/memory"
	"campus_portal_backend/internal/util"

	"github.com/stretchr/testify/require"
)

// testClock 每次读取前进一秒，保证创建时间严格递增
type testClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newTestClock() *testClock {
	return &testClock{cur: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type testEnv struct {
	clock    *testClock
	cfg      *config.Config
	users    *memory.UserRepository
	forum    *memory.ForumRepository
	groups   *memory.GroupRepository
	settings *memory.SettingsRepository
	sessions *MemorySessionStore
	views    *MemoryViewCounter

	auth       *AuthService
	forumSvc   *ForumService
	groupSvc   *GroupService
	settingSvc *SettingsService
	dashboard  *DashboardService
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "service-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Session.TTL = time.Hour
	cfg.Storage.Type = util.StorageLocal
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Forum.MaxTags = 5
	cfg.Forum.ViewWindowMinutes = 10
	cfg.Groups.DefaultMaxMembers = 10
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		clock:    newTestClock(),
		cfg:      testConfig(t),
		users:    memory.NewUserRepository(),
		forum:    memory.NewForumRepository(),
		groups:   memory.NewGroupRepository(),
		settings: memory.NewSettingsRepository(),
		sessions: NewMemorySessionStore(),
	}
	e.views = NewMemoryViewCounter(e.cfg.ViewWindow())

	e.auth = NewAuthService(e.users, e.sessions, e.cfg)
	e.forumSvc = NewForumService(e.forum, e.users, e.views, e.cfg.Forum.MaxTags)
	e.forumSvc.now = e.clock.Now
	e.groupSvc = NewGroupService(e.groups, e.users, NewStorageService(e.cfg), e.cfg.Groups.DefaultMaxMembers)
	e.groupSvc.now = e.clock.Now
	e.settingSvc = NewSettingsService(e.settings, e.users)
	e.dashboard = NewDashboardService(e.users, e.forum, e.groups)
	return e
}

// user 直接写入仓库，跳过 bcrypt
func (e *testEnv) user(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@campus.test", Role: role}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) question(t *testing.T, authorID uint, title string, tags ...string) *model.Question {
	t.Helper()
	q, err := e.forumSvc.CreateQuestion(context.Background(), authorID, QuestionInput{
		Title:   title,
		Content: "Details about " + title,
		Tags:    tags,
	})
	require.NoError(t, err)
	return q
}

func (e *testEnv) answer(t *testing.T, authorID uint, questionID string) *model.Answer {
	t.Helper()
	a, err := e.forumSvc.CreateAnswer(context.Background(), authorID, questionID, AnswerInput{Content: "An answer"})
	require.NoError(t, err)
	return a
}

func (e *testEnv) group(t *testing.T, leaderID uint, name string, visibility model.GroupVisibility) *model.Group {
	t.Helper()
	g, err := e.groupSvc.CreateGroup(context.Background(), leaderID, GroupInput{Name: name, Visibility: visibility})
	require.NoError(t, err)
	return g
}
