package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type QuestionStatus string

const (
	QuestionOpen     QuestionStatus = "open"
	QuestionAnswered QuestionStatus = "answered"
	QuestionClosed   QuestionStatus = "closed"
	QuestionFlagged  QuestionStatus = "flagged"
)

func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionOpen, QuestionAnswered, QuestionClosed, QuestionFlagged:
		return true
	}
	return false
}

// VoteTally 问题、回答上冗余存储的票数，必须与投票流水一致
type VoteTally struct {
	Votes     int `gorm:"default:0" json:"votes"`
	Upvotes   int `gorm:"default:0" json:"upvotes"`
	Downvotes int `gorm:"default:0" json:"downvotes"`
}

// Apply 按增量调整赞/踩计数并重算净票数
func (t *VoteTally) Apply(up, down int) {
	t.Upvotes += up
	t.Downvotes += down
	t.Votes = t.Upvotes - t.Downvotes
}

type Question struct {
	UUIDBase
	Title        string         `gorm:"size:255;not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Tags         TagList        `gorm:"type:text" json:"tags"`
	AuthorID     uint           `gorm:"index;type:bigint unsigned" json:"authorId"`
	Author       User           `gorm:"foreignKey:AuthorID" json:"author"`
	Status       QuestionStatus `gorm:"size:20;index;default:'open'" json:"status"`
	BestAnswerID *string        `gorm:"type:varchar(36)" json:"bestAnswerId"`
	Views        int            `gorm:"default:0" json:"views"`
	AnswerCount  int            `gorm:"default:0" json:"answerCount"`
	VoteTally    `gorm:"embedded"`
	IsFlagged    bool      `gorm:"default:false" json:"isFlagged"`
	FlagCount    int       `gorm:"default:0" json:"flagCount"`
	LastActivity time.Time `gorm:"index" json:"lastActivity"`
}

func (Question) TableName() string {
	return "questions"
}

// HasTag 标签名大小写不敏感
func (q *Question) HasTag(name string) bool {
	for _, t := range q.Tags {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

type Answer struct {
	UUIDBase
	QuestionID   string `gorm:"index;type:varchar(36)" json:"questionId"`
	Content      string `gorm:"type:text;not null" json:"content"`
	AuthorID     uint   `gorm:"index;type:bigint unsigned" json:"authorId"`
	Author       User   `gorm:"foreignKey:AuthorID" json:"author"`
	VoteTally    `gorm:"embedded"`
	IsBestAnswer bool `gorm:"default:false" json:"isBestAnswer"`
}

func (Answer) TableName() string {
	return "answers"
}

type Tag struct {
	UUIDBase
	Name       string `gorm:"size:30;uniqueIndex;not null" json:"name"`
	UsageCount int    `gorm:"default:0" json:"usageCount"`
	Color      string `gorm:"size:20" json:"color"`
	CreatedBy  uint   `gorm:"type:bigint unsigned" json:"createdBy"`
}

func (Tag) TableName() string {
	return "tags"
}

var tagPalette = []string{"#3776AB", "#F7DF1E", "#61DAFB", "#E34F26", "#4CAF50", "#9C27B0", "#FF9800", "#607D8B"}

// TagColor 新标签按目录中的序号轮流取色
func TagColor(index int) string {
	if index < 0 {
		index = -index
	}
	return tagPalette[index%len(tagPalette)]
}

// TagRef 问题上保存的标签快照，只含不会变化的字段，使用次数以标签目录为准
type TagRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (t Tag) Ref() TagRef {
	return TagRef{ID: t.ID, Name: t.Name, Color: t.Color}
}

// TagList 问题上的标签快照，按添加顺序保存，MySQL 中以 JSON 存一列
type TagList []TagRef

func (l TagList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *TagList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = TagList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported tag list type %T", value)
	}
	if len(data) == 0 {
		*l = TagList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

func (l TagList) Names() []string {
	names := make([]string, len(l))
	for i, t := range l {
		names[i] = t.Name
	}
	return names
}
