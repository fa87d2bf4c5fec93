package model

import "time"

type VoteTargetType string

const (
	TargetQuestion VoteTargetType = "question"
	TargetAnswer   VoteTargetType = "answer"
)

func (t VoteTargetType) Valid() bool {
	return t == TargetQuestion || t == TargetAnswer
}

type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

func (t VoteType) Valid() bool {
	return t == Upvote || t == Downvote
}

// Vote 投票流水，每个 (UserID, TargetID, TargetType) 最多一条
type Vote struct {
	ID         string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     uint           `gorm:"uniqueIndex:idx_vote_user_target;type:bigint unsigned" json:"userId"`
	TargetID   string         `gorm:"uniqueIndex:idx_vote_user_target;type:varchar(36)" json:"targetId"`
	TargetType VoteTargetType `gorm:"uniqueIndex:idx_vote_user_target;size:20" json:"targetType"`
	VoteType   VoteType       `gorm:"size:20;not null" json:"voteType"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (Vote) TableName() string {
	return "votes"
}

type VoteAction string

const (
	VoteCreated  VoteAction = "created"
	VoteSwitched VoteAction = "switched"
	VoteRemoved  VoteAction = "removed"
	VoteNone     VoteAction = "none"
)

// VoteTransition 一次投票对流水和计数的影响
type VoteTransition struct {
	Action VoteAction
	Up     int
	Down   int
}

func delta(t VoteType, n int) (up, down int) {
	if t == Upvote {
		return n, 0
	}
	return 0, n
}

// ResolveVote 计算投票请求的结果：同类型再投为撤销，反类型为替换，否则新增
func ResolveVote(existing *Vote, requested VoteType) VoteTransition {
	if existing == nil {
		up, down := delta(requested, 1)
		return VoteTransition{Action: VoteCreated, Up: up, Down: down}
	}
	if existing.VoteType == requested {
		up, down := delta(requested, -1)
		return VoteTransition{Action: VoteRemoved, Up: up, Down: down}
	}
	oldUp, oldDown := delta(existing.VoteType, -1)
	newUp, newDown := delta(requested, 1)
	return VoteTransition{Action: VoteSwitched, Up: oldUp + newUp, Down: oldDown + newDown}
}

// ResolveRemoval 无条件撤销；没有投票时不做任何修改
func ResolveRemoval(existing *Vote) VoteTransition {
	if existing == nil {
		return VoteTransition{Action: VoteNone}
	}
	up, down := delta(existing.VoteType, -1)
	return VoteTransition{Action: VoteRemoved, Up: up, Down: down}
}

// VoteResult 投票之后的流水记录（撤销时为 nil）和目标的最新计数
type VoteResult struct {
	Action VoteAction `json:"action"`
	Vote   *Vote      `json:"vote,omitempty"`
	Tally  VoteTally  `json:"tally"`
}

// VoteKey 投票流水的索引键
type VoteKey struct {
	UserID     uint
	TargetID   string
	TargetType VoteTargetType
}
