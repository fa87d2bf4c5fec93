package service

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/repository"
	"campus_portal_backend/internal/util"
	"campus_portal_backend/pkg/logger"
	"campus_portal_backend/pkg/monitoring"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

type GroupInput struct {
	Name        string                `json:"name" validate:"notblank,max=100"`
	Description string                `json:"description" validate:"max=2000"`
	Category    string                `json:"category" validate:"max=50"`
	Visibility  model.GroupVisibility `json:"visibility" validate:"omitempty,oneof=public private"`
	MaxMembers  int                   `json:"maxMembers" validate:"min=0,max=500"`
}

type TaskInput struct {
	Title       string             `json:"title" validate:"notblank,max=255"`
	Description string             `json:"description" validate:"max=5000"`
	Priority    model.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssigneeID  *uint              `json:"assigneeId"`
	DueDate     *time.Time         `json:"dueDate"`
}

type DiscussionInput struct {
	Title   string `json:"title" validate:"max=255"`
	Content string `json:"content" validate:"notblank,max=20000"`
}

const (
	GroupSortNewest   = "newest"
	GroupSortOldest   = "oldest"
	GroupSortMembers  = "members"
	GroupSortActivity = "activity"
	GroupSortName     = "name"
)

type GroupFilter struct {
	Query        string                  `form:"query" json:"query"`
	Category     []string                `form:"category" json:"category"`
	Visibility   []model.GroupVisibility `form:"visibility" json:"visibility"`
	HasOpenSlots *bool                   `form:"hasOpenSlots" json:"hasOpenSlots"`
	SortBy       string                  `form:"sortBy" json:"sortBy"`
}

type GroupService struct {
	Groups            repository.GroupStore
	Users             repository.UserStore
	Storage           *StorageService
	DefaultMaxMembers int

	now func() time.Time
}

func NewGroupService(groups repository.GroupStore, users repository.UserStore, storage *StorageService, defaultMaxMembers int) *GroupService {
	return &GroupService{
		Groups:            groups,
		Users:             users,
		Storage:           storage,
		DefaultMaxMembers: defaultMaxMembers,
		now:               time.Now,
	}
}

// membership 校验当前用户是小组成员，返回小组和成员信息
func (s *GroupService) membership(ctx context.Context, groupID string, userID uint) (*model.Group, model.GroupMember, error) {
	if userID == 0 {
		return nil, model.GroupMember{}, util.ErrUnauthenticated
	}
	g, err := s.Groups.FindGroup(ctx, groupID)
	if err != nil {
		return nil, model.GroupMember{}, err
	}
	m, ok := g.Member(userID)
	if !ok {
		return nil, model.GroupMember{}, util.ErrForbidden
	}
	return g, m, nil
}

func (s *GroupService) touch(ctx context.Context, groupID string, at time.Time) {
	if err := s.Groups.TouchGroup(ctx, groupID, at); err != nil {
		logger.Log.Warn("Failed to update group activity", zap.String("groupId", groupID), zap.Error(err))
	}
}

// CreateGroup 创建者成为组长
func (s *GroupService) CreateGroup(ctx context.Context, actingUserID uint, in GroupInput) (*model.Group, error) {
	if actingUserID == 0 {
		return nil, util.ErrUnauthenticated
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := util.Validate(in); err != nil {
		return nil, err
	}
	if in.Visibility == "" {
		in.Visibility = model.GroupPublic
	}
	if in.MaxMembers == 0 {
		in.MaxMembers = s.DefaultMaxMembers
	}

	now := s.now()
	g := &model.Group{
		UUIDBase:     model.UUIDBase{ID: model.NewID(), CreatedAt: now, UpdatedAt: now},
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		Visibility:   in.Visibility,
		MaxMembers:   in.MaxMembers,
		CreatedBy:    actingUserID,
		LastActivity: now,
		Members:      []model.GroupMember{{UserID: actingUserID, Role: model.RoleLeader, JoinedAt: now}},
	}
	if err := s.Groups.CreateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	logger.Log.Info("Group created", zap.String("groupId", g.ID), zap.Uint("leaderId", actingUserID))
	return g, nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID string, actingUserID uint) (*model.Group, error) {
	g, err := s.Groups.FindGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.Visibility == model.GroupPrivate {
		if _, ok := g.Member(actingUserID); !ok {
			return nil, util.ErrNotFound
		}
	}
	return g, nil
}

func (s *GroupService) ListMyGroups(ctx context.Context, actingUserID uint) ([]model.Group, error) {
	if actingUserID == 0 {
		return nil, util.ErrUnauthenticated
	}
	return s.Groups.ListGroupsByMember(ctx, actingUserID)
}

// JoinGroup 只能直接加入公开小组；私有小组需要由组长/管理员通过 AddMember 邀请
func (s *GroupService) JoinGroup(ctx context.Context, groupID string, actingUserID uint) (*model.Group, error) {
	if actingUserID == 0 {
		return nil, util.ErrUnauthenticated
	}
	g, err := s.Groups.FindGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.Visibility != model.GroupPublic {
		return nil, util.ErrForbidden
	}
	return s.addMember(ctx, groupID, actingUserID, model.RoleMember)
}

// AddMember 组长或管理员邀请用户加入（包括私有小组）
func (s *GroupService) AddMember(ctx context.Context, groupID string, actingUserID, userID uint) (*model.Group, error) {
	_, me, err := s.membership(ctx, groupID, actingUserID)
	if err != nil {
		return nil, err
	}
	if me.Role == model.RoleMember {
		return nil, util.ErrForbidden
	}
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.addMember(ctx, groupID, userID, model.RoleMember)
}

func (s *GroupService) addMember(ctx context.Context, groupID string, userID uint, role model.GroupRole) (*model.Group, error) {
	now := s.now()
	if err := s.Groups.AddMember(ctx, groupID, model.GroupMember{UserID: userID, Role: role, JoinedAt: now}); err != nil {
		return nil, err
	}
	s.touch(ctx, groupID, now)
	logger.Log.Info("Member joined group", zap.String("groupId", groupID), zap.Uint("userId", userID))
	return s.Groups.FindGroup(ctx, groupID)
}

// LeaveGroup 最后一名组长不能直接退出
func (s *GroupService) LeaveGroup(ctx context.Context, groupID string, actingUserID uint) error {
	g, me, err := s.membership(ctx, groupID, actingUserID)
	if err != nil {
		return err
	}
	if me.Role == model.RoleLeader && g.LeaderCount() == 1 && len(g.Members) > 1 {
		return util.Invalid("role", "transfer leadership before leaving the group")
	}
	if err := s.Groups.RemoveMember(ctx, groupID, actingUserID); err != nil {
		return err
	}
	s.touch(ctx, groupID, s.now())
	return nil
}

func (s *GroupService) UpdateMemberRole(ctx context.Context, groupID string, actingUserID, userID uint, role model.GroupRole) (*model.Group, error) {
	if !role.Valid() {
		return nil, util.Invalid("role", "must be leader, moderator or member")
	}
	g, me, err := s.membership(ctx, groupID, actingUserID)
	if err != nil {
		return nil, err
	}
	if me.Role != model.RoleLeader {
		return nil, util.ErrForbidden
	}
	target, ok := g.Member(userID)
	if !ok {
		return nil, util.ErrNotFound
	}
	if target.Role == model.RoleLeader && role != model.RoleLeader && g.LeaderCount() == 1 {
		return nil, util.Invalid("role", "a group needs at least one leader")
	}
	if err := s.Groups.UpdateMemberRole(ctx, groupID, userID, role); err != nil {
		return nil, err
	}
	s.touch(ctx, groupID, s.now())
	return s.Groups.FindGroup(ctx, groupID)
}

// RemoveMember 组长和版主可以移除成员，不能移除组长
func (s *GroupService) RemoveMember(ctx context.Context, groupID string, actingUserID, userID uint) error {
	g, me, err := s.membership(ctx, groupID, actingUserID)
	if err != nil {
		return err
	}
	if me.Role == model.RoleMember {
		return util.ErrForbidden
	}
	target, ok := g.Member(userID)
	if !ok {
		return util.ErrNotFound
	}
	if target.Role == model.RoleLeader {
		return util.ErrForbidden
	}
	if err := s.Groups.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}
	s.touch(ctx, groupID, s.now())
	return nil
}

func (s *GroupService) CreateTask(ctx context.Context, groupID string, actingUserID uint, in TaskInput) (*model.GroupTask, error) {
	g, _, err := s.membership(ctx, groupID, actingUserID)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := util.Validate(in); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		if _, ok := g.Member(*in.AssigneeID); !ok {
			return nil, util.Invalid("assigneeId", "assignee must be a group member")
		}
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	now := s.now()
	t := &model.GroupTask{
		UUIDBase:    model.UUIDBase{ID: model.NewID(), CreatedAt: now, UpdatedAt: now},
		GroupID:     groupID,
		Title:       in.Title,
		Description: in.Description,
		Status:      model.TaskTodo,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		CreatedBy:   actingUserID,
		DueDate:     in.DueDate,
	}
	if err := s.Groups.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.touch(ctx, groupID, now)
	return t, nil
}

// UpdateTaskStatus 按任务状态机流转，非法流转返回 ErrInvalidTransition
func (s *GroupService) UpdateTaskStatus(ctx context.Context, groupID, taskID string, actingUserID uint, next model.TaskStatus) (*model.GroupTask, error) {
	if !next.Valid() {
		return nil, util.Invalid("status", "unknown task status")
	}
	if _, _, err := s.membership(ctx, groupID, actingUserID); err != nil {
		return nil, err
	}

	now := s.now()
	var from model.TaskStatus
	t, err := s.Groups.UpdateTask(ctx, groupID, taskID, func(t *model.GroupTask) error {
		if !t.Status.CanTransitionTo(next) {
			return fmt.Errorf("%s -> %s: %w", t.Status, next, util.ErrInvalidTransition)
		}
		from = t.Status
		t.Status = next
		t.UpdatedAt = now
		if next == model.TaskCompleted {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.TaskTransitions.WithLabelValues(string(from), string(next)).Inc()
	s.touch(ctx, groupID, now)
	logger.Log.Info("Task status changed", zap.String("taskId", taskID), zap.String("from", string(from)), zap.String("to", string(next)))
	return t, nil
}

// AssignTask assigneeID 为 nil 时取消指派
func (s *GroupService) AssignTask(ctx context.Context, groupID, taskID string, actingUserID uint, assigneeID *uint) (*model.GroupTask, error) {
	g, _, err := s.membership(ctx, groupID, actingUserID)
	if err != nil {
		return nil, err
	}
	if assigneeID != nil {
		if _, ok := g.Member(*assigneeID); !ok {
			return nil, util.Invalid("assigneeId", "assignee must be a group member")
		}
	}
	now := s.now()
	t, err := s.Groups.UpdateTask(ctx, groupID, taskID, func(t *model.GroupTask) error {
		t.AssigneeID = assigneeID
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.touch(ctx, groupID, now)
	return t, nil
}

func (s *GroupService) ListTasks(ctx context.Context, groupID string, actingUserID uint) ([]model.GroupTask, error) {
	if _, _, err := s.membership(ctx, groupID, actingUserID); err != nil {
		return nil, err
	}
	return s.Groups.ListTasks(ctx, groupID)
}

func (s *GroupService) UploadFile(ctx context.Context, groupID string, actingUserID uint, name string, reader io.Reader, size int64, contentType string) (*model.GroupFile, error) {
	if _, _, err := s.membership(ctx, groupID, actingUserID); err != nil {
		return nil, err
	}
	url, err := s.Storage.StoreGroupFile(ctx, groupID, name, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	f := &model.GroupFile{
		UUIDBase:    model.UUIDBase{ID: model.NewID(), CreatedAt: now, UpdatedAt: now},
		GroupID:     groupID,
		Name:        name,
		URL:         url,
		Size:        size,
		ContentType: contentType,
		UploadedBy:  actingUserID,
	}
	if err := s.Groups.CreateFile(ctx, f); err != nil {
		return nil, fmt.Errorf("save group file: %w", err)
	}
	s.touch(ctx, groupID, now)
	return f, nil
}

func (s *GroupService) ListFiles(ctx context.Context, groupID string, actingUserID uint) ([]model.GroupFile, error) {
	if _, _, err := s.membership(ctx, groupID, actingUserID); err != nil {
		return nil, err
	}
	return s.Groups.ListFiles(ctx, groupID)
}

func (s *GroupService) PostDiscussion(ctx context.Context, groupID string, actingUserID uint, in DiscussionInput) (*model.GroupDiscussion, error) {
	if _, _, err := s.membership(ctx, groupID, actingUserID); err != nil {
		return nil, err
	}
	if err := util.Validate(in); err != nil {
		return nil, err
	}
	now := s.now()
	d := &model.GroupDiscussion{
		UUIDBase: model.UUIDBase{ID: model.NewID(), CreatedAt: now, UpdatedAt: now},
		GroupID:  groupID,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		AuthorID: actingUserID,
	}
	if err := s.Groups.CreateDiscussion(ctx, d); err != nil {
		return nil, fmt.Errorf("post discussion: %w", err)
	}
	s.touch(ctx, groupID, now)
	return d, nil
}

func (s *GroupService) ListDiscussions(ctx context.Context, groupID string, actingUserID uint) ([]model.GroupDiscussion, error) {
	if _, _, err := s.membership(ctx, groupID, actingUserID); err != nil {
		return nil, err
	}
	return s.Groups.ListDiscussions(ctx, groupID)
}

// SearchGroups 私有小组只对成员可见
func (s *GroupService) SearchGroups(ctx context.Context, actingUserID uint, f GroupFilter) ([]model.Group, error) {
	all, err := s.Groups.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	visible := all[:0]
	for _, g := range all {
		if g.Visibility == model.GroupPrivate {
			if _, ok := g.Member(actingUserID); !ok {
				continue
			}
		}
		visible = append(visible, g)
	}
	return FilterGroups(visible, f)
}

// FilterGroups 与 FilterQuestions 相同的筛选+稳定排序
func FilterGroups(groups []model.Group, f GroupFilter) ([]model.Group, error) {
	less, err := groupOrder(f.SortBy)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	result := make([]model.Group, 0, len(groups))
	for _, g := range groups {
		if query != "" &&
			!strings.Contains(strings.ToLower(g.Name), query) &&
			!strings.Contains(strings.ToLower(g.Description), query) {
			continue
		}
		if len(f.Category) > 0 && !containsFold(f.Category, g.Category) {
			continue
		}
		if len(f.Visibility) > 0 && !visibilityIn(g.Visibility, f.Visibility) {
			continue
		}
		if f.HasOpenSlots != nil && g.HasOpenSlots() != *f.HasOpenSlots {
			continue
		}
		result = append(result, g)
	}

	sort.SliceStable(result, func(i, j int) bool { return less(&result[i], &result[j]) })
	return result, nil
}

func groupOrder(sortBy string) (func(a, b *model.Group) bool, error) {
	switch sortBy {
	case "", GroupSortNewest:
		return func(a, b *model.Group) bool { return a.CreatedAt.After(b.CreatedAt) }, nil
	case GroupSortOldest:
		return func(a, b *model.Group) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	case GroupSortMembers:
		return func(a, b *model.Group) bool { return len(a.Members) > len(b.Members) }, nil
	case GroupSortActivity:
		return func(a, b *model.Group) bool { return a.LastActivity.After(b.LastActivity) }, nil
	case GroupSortName:
		return func(a, b *model.Group) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }, nil
	}
	return nil, util.Invalid("sortBy", "unknown sort key "+sortBy)
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}

func visibilityIn(v model.GroupVisibility, set []model.GroupVisibility) bool {
	for _, want := range set {
		if v == want {
			return true
		}
	}
	return false
}
