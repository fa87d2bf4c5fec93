package memory

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"context"
	"sync"
	"time"
)

type GroupRepository struct {
	mu sync.RWMutex

	groups     map[string]*model.Group
	groupOrder []string

	tasks     map[string]*model.GroupTask
	taskOrder []string

	files       map[string][]model.GroupFile
	discussions map[string][]model.GroupDiscussion
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{
		groups:      make(map[string]*model.Group),
		tasks:       make(map[string]*model.GroupTask),
		files:       make(map[string][]model.GroupFile),
		discussions: make(map[string][]model.GroupDiscussion),
	}
}

func copyGroup(g *model.Group) model.Group {
	cp := *g
	cp.Members = append([]model.GroupMember(nil), g.Members...)
	return cp
}

func copyTask(t *model.GroupTask) model.GroupTask {
	cp := *t
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		cp.AssigneeID = &id
	}
	if t.DueDate != nil {
		d := *t.DueDate
		cp.DueDate = &d
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		cp.CompletedAt = &c
	}
	return cp
}

func (r *GroupRepository) CreateGroup(_ context.Context, g *model.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		g.ID = model.NewID()
	}
	if _, exists := r.groups[g.ID]; exists {
		return util.ErrConflict
	}
	for i := range g.Members {
		g.Members[i].GroupID = g.ID
	}
	stored := copyGroup(g)
	r.groups[g.ID] = &stored
	r.groupOrder = append(r.groupOrder, g.ID)
	return nil
}

func (r *GroupRepository) FindGroup(_ context.Context, id string) (*model.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := copyGroup(g)
	return &cp, nil
}

func (r *GroupRepository) ListGroups(_ context.Context) ([]model.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]model.Group, 0, len(r.groupOrder))
	for _, id := range r.groupOrder {
		list = append(list, copyGroup(r.groups[id]))
	}
	return list, nil
}

func (r *GroupRepository) ListGroupsByMember(_ context.Context, userID uint) ([]model.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []model.Group
	for _, id := range r.groupOrder {
		g := r.groups[id]
		if _, ok := g.Member(userID); ok {
			list = append(list, copyGroup(g))
		}
	}
	return list, nil
}

func (r *GroupRepository) AddMember(_ context.Context, groupID string, m model.GroupMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return util.ErrNotFound
	}
	if _, exists := g.Member(m.UserID); exists {
		return util.ErrConflict
	}
	if !g.HasOpenSlots() {
		return util.ErrGroupFull
	}
	m.GroupID = groupID
	g.Members = append(g.Members, m)
	return nil
}

func (r *GroupRepository) UpdateMemberRole(_ context.Context, groupID string, userID uint, role model.GroupRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return util.ErrNotFound
	}
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			g.Members[i].Role = role
			return nil
		}
	}
	return util.ErrNotFound
}

func (r *GroupRepository) RemoveMember(_ context.Context, groupID string, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return util.ErrNotFound
	}
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return nil
		}
	}
	return util.ErrNotFound
}

func (r *GroupRepository) TouchGroup(_ context.Context, groupID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return util.ErrNotFound
	}
	g.LastActivity = at
	g.UpdatedAt = at
	return nil
}

func (r *GroupRepository) CreateTask(_ context.Context, t *model.GroupTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[t.GroupID]; !ok {
		return util.ErrNotFound
	}
	if t.ID == "" {
		t.ID = model.NewID()
	}
	stored := copyTask(t)
	r.tasks[t.ID] = &stored
	r.taskOrder = append(r.taskOrder, t.ID)
	return nil
}

func (r *GroupRepository) FindTask(_ context.Context, groupID, taskID string) (*model.GroupTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[taskID]
	if !ok || t.GroupID != groupID {
		return nil, util.ErrNotFound
	}
	cp := copyTask(t)
	return &cp, nil
}

func (r *GroupRepository) UpdateTask(_ context.Context, groupID, taskID string, fn func(t *model.GroupTask) error) (*model.GroupTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok || t.GroupID != groupID {
		return nil, util.ErrNotFound
	}
	draft := copyTask(t)
	if err := fn(&draft); err != nil {
		return nil, err
	}
	draft.ID, draft.GroupID = taskID, groupID
	stored := copyTask(&draft)
	r.tasks[taskID] = &stored
	return &draft, nil
}

func (r *GroupRepository) ListTasks(_ context.Context, groupID string) ([]model.GroupTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []model.GroupTask
	for _, id := range r.taskOrder {
		if t := r.tasks[id]; t.GroupID == groupID {
			list = append(list, copyTask(t))
		}
	}
	return list, nil
}

func (r *GroupRepository) ListTasksByAssignee(_ context.Context, userID uint) ([]model.GroupTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []model.GroupTask
	for _, id := range r.taskOrder {
		if t := r.tasks[id]; t.AssigneeID != nil && *t.AssigneeID == userID {
			list = append(list, copyTask(t))
		}
	}
	return list, nil
}

func (r *GroupRepository) CreateFile(_ context.Context, f *model.GroupFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[f.GroupID]; !ok {
		return util.ErrNotFound
	}
	if f.ID == "" {
		f.ID = model.NewID()
	}
	r.files[f.GroupID] = append(r.files[f.GroupID], *f)
	return nil
}

func (r *GroupRepository) ListFiles(_ context.Context, groupID string) ([]model.GroupFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.GroupFile(nil), r.files[groupID]...), nil
}

func (r *GroupRepository) CreateDiscussion(_ context.Context, d *model.GroupDiscussion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[d.GroupID]; !ok {
		return util.ErrNotFound
	}
	if d.ID == "" {
		d.ID = model.NewID()
	}
	r.discussions[d.GroupID] = append(r.discussions[d.GroupID], *d)
	return nil
}

func (r *GroupRepository) ListDiscussions(_ context.Context, groupID string) ([]model.GroupDiscussion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.GroupDiscussion(nil), r.discussions[groupID]...), nil
}
