package model

import "time"

type GroupRole string

const (
	RoleLeader    GroupRole = "leader"
	RoleModerator GroupRole = "moderator"
	RoleMember    GroupRole = "member"
)

func (r GroupRole) Valid() bool {
	switch r {
	case RoleLeader, RoleModerator, RoleMember:
		return true
	}
	return false
}

type GroupVisibility string

const (
	GroupPublic  GroupVisibility = "public"
	GroupPrivate GroupVisibility = "private"
)

func (v GroupVisibility) Valid() bool {
	return v == GroupPublic || v == GroupPrivate
}

type Group struct {
	UUIDBase
	Name         string          `gorm:"size:100;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"size:50;index" json:"category"`
	Visibility   GroupVisibility `gorm:"size:20;default:'public'" json:"visibility"`
	MaxMembers   int             `gorm:"default:10" json:"maxMembers"`
	CreatedBy    uint            `gorm:"type:bigint unsigned" json:"createdBy"`
	LastActivity time.Time       `gorm:"index" json:"lastActivity"`
	Members      []GroupMember   `gorm:"foreignKey:GroupID" json:"members"`
}

func (Group) TableName() string {
	return "study_groups"
}

func (g *Group) Member(userID uint) (GroupMember, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return GroupMember{}, false
}

func (g *Group) HasOpenSlots() bool {
	return g.MaxMembers <= 0 || len(g.Members) < g.MaxMembers
}

func (g *Group) LeaderCount() int {
	n := 0
	for _, m := range g.Members {
		if m.Role == RoleLeader {
			n++
		}
	}
	return n
}

type GroupMember struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	GroupID  string    `gorm:"uniqueIndex:idx_group_user;type:varchar(36)" json:"groupId"`
	UserID   uint      `gorm:"uniqueIndex:idx_group_user;type:bigint unsigned" json:"userId"`
	Role     GroupRole `gorm:"size:20;not null" json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskReview     TaskStatus = "review"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskTodo:       {TaskInProgress, TaskCancelled},
	TaskInProgress: {TaskReview, TaskTodo, TaskCancelled},
	TaskReview:     {TaskCompleted, TaskInProgress, TaskCancelled},
	TaskCancelled:  {TaskTodo},
	TaskCompleted:  {},
}

func (s TaskStatus) Valid() bool {
	_, ok := taskTransitions[s]
	return ok
}

// CanTransitionTo 任务状态机：todo → in-progress → review → completed，未完成前均可取消
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Open 未完成也未取消
func (s TaskStatus) Open() bool {
	return s != TaskCompleted && s != TaskCancelled
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type GroupTask struct {
	UUIDBase
	GroupID     string       `gorm:"index;type:varchar(36)" json:"groupId"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"size:20;default:'todo'" json:"status"`
	Priority    TaskPriority `gorm:"size:10;default:'medium'" json:"priority"`
	AssigneeID  *uint        `gorm:"index;type:bigint unsigned" json:"assigneeId"`
	CreatedBy   uint         `gorm:"type:bigint unsigned" json:"createdBy"`
	DueDate     *time.Time   `json:"dueDate"`
	CompletedAt *time.Time   `json:"completedAt"`
}

func (GroupTask) TableName() string {
	return "group_tasks"
}

type GroupFile struct {
	UUIDBase
	GroupID     string `gorm:"index;type:varchar(36)" json:"groupId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	URL         string `gorm:"size:512" json:"url"`
	Size        int64  `json:"size"`
	ContentType string `gorm:"size:100" json:"contentType"`
	UploadedBy  uint   `gorm:"type:bigint unsigned" json:"uploadedBy"`
}

func (GroupFile) TableName() string {
	return "group_files"
}

type GroupDiscussion struct {
	UUIDBase
	GroupID  string `gorm:"index;type:varchar(36)" json:"groupId"`
	Title    string `gorm:"size:255" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID uint   `gorm:"type:bigint unsigned" json:"authorId"`
}

func (GroupDiscussion) TableName() string {
	return "group_discussions"
}
