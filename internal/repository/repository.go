package repository

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// 以下接口有两套实现：本包的 gorm(MySQL) 版本和 repository/memory 的进程内版本。
// 所有返回值都是副本，调用方修改不会影响存储。

type UserStore interface {
	// Create 分配 ID；邮箱（大小写不敏感）已存在时返回 util.ErrEmailRegistered
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type ForumStore interface {
	// CreateQuestion 在同一次状态变更中补全标签目录、累加标签使用次数并写入问题
	CreateQuestion(ctx context.Context, q *model.Question, tagNames []string) error
	FindQuestion(ctx context.Context, id string) (*model.Question, error)
	// ListQuestions 按插入顺序返回全部问题
	ListQuestions(ctx context.Context) ([]model.Question, error)
	// UpdateQuestion 原子地读-改-写；fn 返回错误时不做任何修改
	UpdateQuestion(ctx context.Context, id string, fn func(q *model.Question) error) (*model.Question, error)

	// CreateAnswer 写入回答并原子地增加 answerCount、刷新 lastActivity
	CreateAnswer(ctx context.Context, a *model.Answer) (*model.Question, error)
	FindAnswer(ctx context.Context, id string) (*model.Answer, error)
	// ListAnswers 按插入顺序返回问题下的回答
	ListAnswers(ctx context.Context, questionID string) ([]model.Answer, error)
	CountAnswersByAuthor(ctx context.Context, authorID uint) (int, error)
	// SelectBestAnswer 设置 bestAnswerId、status=answered，并重置所有兄弟回答的 isBestAnswer
	SelectBestAnswer(ctx context.Context, questionID, answerID string, at time.Time) error

	// ListTags 按插入顺序返回标签目录
	ListTags(ctx context.Context) ([]model.Tag, error)

	FindVote(ctx context.Context, key model.VoteKey) (*model.Vote, error)
	// CastVote 新增/替换/撤销投票，流水与计数在同一次状态变更中完成；目标不存在返回 util.ErrNotFound
	CastVote(ctx context.Context, key model.VoteKey, voteType model.VoteType, at time.Time) (model.VoteResult, error)
	RemoveVote(ctx context.Context, key model.VoteKey) (model.VoteResult, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, g *model.Group) error
	FindGroup(ctx context.Context, id string) (*model.Group, error)
	// ListGroups 按插入顺序返回，带成员列表
	ListGroups(ctx context.Context) ([]model.Group, error)
	ListGroupsByMember(ctx context.Context, userID uint) ([]model.Group, error)
	// AddMember 满员返回 util.ErrGroupFull，已是成员返回 util.ErrConflict
	AddMember(ctx context.Context, groupID string, m model.GroupMember) error
	UpdateMemberRole(ctx context.Context, groupID string, userID uint, role model.GroupRole) error
	RemoveMember(ctx context.Context, groupID string, userID uint) error
	TouchGroup(ctx context.Context, groupID string, at time.Time) error

	CreateTask(ctx context.Context, t *model.GroupTask) error
	FindTask(ctx context.Context, groupID, taskID string) (*model.GroupTask, error)
	UpdateTask(ctx context.Context, groupID, taskID string, fn func(t *model.GroupTask) error) (*model.GroupTask, error)
	ListTasks(ctx context.Context, groupID string) ([]model.GroupTask, error)
	ListTasksByAssignee(ctx context.Context, userID uint) ([]model.GroupTask, error)

	CreateFile(ctx context.Context, f *model.GroupFile) error
	ListFiles(ctx context.Context, groupID string) ([]model.GroupFile, error)
	CreateDiscussion(ctx context.Context, d *model.GroupDiscussion) error
	ListDiscussions(ctx context.Context, groupID string) ([]model.GroupDiscussion, error)
}

type SettingsStore interface {
	// Get 没有保存过时返回 util.ErrNotFound
	Get(ctx context.Context, userID uint) (*model.UserSettings, error)
	// Update 原子地读-改-写；不存在时以 defaults 为初始值
	Update(ctx context.Context, userID uint, defaults model.UserSettings, fn func(s *model.UserSettings)) (*model.UserSettings, error)
}

// notFound 将 gorm 的 ErrRecordNotFound 转为 util.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotFound
	}
	return err
}
