package service

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"sort"
	"strings"
)

const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortVotes    = "votes"
	SortActivity = "activity"
	SortViews    = "views"
)

// QuestionFilter 各条件之间为 AND；Tags 内部为 OR
type QuestionFilter struct {
	Query         string                 `form:"query" json:"query"`
	Tags          []string               `form:"tags" json:"tags"`
	Status        []model.QuestionStatus `form:"status" json:"status"`
	HasAnswers    *bool                  `form:"hasAnswers" json:"hasAnswers"`
	HasBestAnswer *bool                  `form:"hasBestAnswer" json:"hasBestAnswer"`
	SortBy        string                 `form:"sortBy" json:"sortBy"`
}

// FilterQuestions 对按插入顺序排列的问题做筛选和稳定排序，不修改入参
func FilterQuestions(questions []model.Question, f QuestionFilter) ([]model.Question, error) {
	less, err := questionOrder(f.SortBy)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	result := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if query != "" &&
			!strings.Contains(strings.ToLower(q.Title), query) &&
			!strings.Contains(strings.ToLower(q.Content), query) {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(&q, f.Tags) {
			continue
		}
		if len(f.Status) > 0 && !statusIn(q.Status, f.Status) {
			continue
		}
		if f.HasAnswers != nil && (q.AnswerCount > 0) != *f.HasAnswers {
			continue
		}
		if f.HasBestAnswer != nil && (q.BestAnswerID != nil) != *f.HasBestAnswer {
			continue
		}
		result = append(result, q)
	}

	sort.SliceStable(result, func(i, j int) bool { return less(&result[i], &result[j]) })
	return result, nil
}

func questionOrder(sortBy string) (func(a, b *model.Question) bool, error) {
	switch sortBy {
	case "", SortNewest:
		return func(a, b *model.Question) bool { return a.CreatedAt.After(b.CreatedAt) }, nil
	case SortOldest:
		return func(a, b *model.Question) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	case SortVotes:
		return func(a, b *model.Question) bool { return a.Votes > b.Votes }, nil
	case SortActivity:
		return func(a, b *model.Question) bool { return a.LastActivity.After(b.LastActivity) }, nil
	case SortViews:
		return func(a, b *model.Question) bool { return a.Views > b.Views }, nil
	}
	return nil, util.Invalid("sortBy", "unknown sort key "+sortBy)
}

func hasAnyTag(q *model.Question, names []string) bool {
	for _, name := range names {
		if q.HasTag(strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func statusIn(s model.QuestionStatus, set []model.QuestionStatus) bool {
	for _, want := range set {
		if s == want {
			return true
		}
	}
	return false
}

// RankTags 按使用次数降序，次数相同保持目录顺序；limit <= 0 返回全部
func RankTags(tags []model.Tag, limit int) []model.Tag {
	ranked := append([]model.Tag(nil), tags...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].UsageCount > ranked[j].UsageCount })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// sortAnswers 最佳回答在前，其余按票数降序，票数相同按时间先后
func sortAnswers(answers []model.Answer) {
	sort.SliceStable(answers, func(i, j int) bool {
		a, b := answers[i], answers[j]
		if a.IsBestAnswer != b.IsBestAnswer {
			return a.IsBestAnswer
		}
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func sortByFlagCount(questions []model.Question) {
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].FlagCount > questions[j].FlagCount })
}
