package memory

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"context"
	"strings"
	"sync"
	"time"
)

// ForumRepository 问题、回答、标签目录和投票流水共用一把锁，
// 投票时流水和计数在同一个临界区内修改，读者看不到中间状态
type ForumRepository struct {
	mu sync.RWMutex

	questions     map[string]*model.Question
	questionOrder []string

	answers           map[string]*model.Answer
	answersByQuestion map[string][]string

	tags     map[string]*model.Tag // key: 小写标签名
	tagOrder []string

	votes map[model.VoteKey]*model.Vote
}

func NewForumRepository() *ForumRepository {
	return &ForumRepository{
		questions:         make(map[string]*model.Question),
		answers:           make(map[string]*model.Answer),
		answersByQuestion: make(map[string][]string),
		tags:              make(map[string]*model.Tag),
		votes:             make(map[model.VoteKey]*model.Vote),
	}
}

func copyQuestion(q *model.Question) model.Question {
	cp := *q
	cp.Tags = append(model.TagList(nil), q.Tags...)
	if q.BestAnswerID != nil {
		id := *q.BestAnswerID
		cp.BestAnswerID = &id
	}
	return cp
}

func (r *ForumRepository) CreateQuestion(_ context.Context, q *model.Question, tagNames []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if q.ID == "" {
		q.ID = model.NewID()
	}
	if _, exists := r.questions[q.ID]; exists {
		return util.ErrConflict
	}

	seen := make(map[string]bool, len(tagNames))
	tags := make(model.TagList, 0, len(tagNames))
	for _, name := range tagNames {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		tag, ok := r.tags[key]
		if !ok {
			tag = &model.Tag{
				UUIDBase:  model.UUIDBase{ID: model.NewID(), CreatedAt: q.CreatedAt, UpdatedAt: q.CreatedAt},
				Name:      name,
				Color:     model.TagColor(len(r.tagOrder)),
				CreatedBy: q.AuthorID,
			}
			r.tags[key] = tag
			r.tagOrder = append(r.tagOrder, key)
		}
		tag.UsageCount++
		tags = append(tags, tag.Ref())
	}
	q.Tags = tags

	stored := copyQuestion(q)
	r.questions[q.ID] = &stored
	r.questionOrder = append(r.questionOrder, q.ID)
	return nil
}

func (r *ForumRepository) FindQuestion(_ context.Context, id string) (*model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := copyQuestion(q)
	return &cp, nil
}

func (r *ForumRepository) ListQuestions(_ context.Context) ([]model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]model.Question, 0, len(r.questionOrder))
	for _, id := range r.questionOrder {
		list = append(list, copyQuestion(r.questions[id]))
	}
	return list, nil
}

func (r *ForumRepository) UpdateQuestion(_ context.Context, id string, fn func(q *model.Question) error) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.questions[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	draft := copyQuestion(q)
	if err := fn(&draft); err != nil {
		return nil, err
	}
	draft.ID = id
	stored := copyQuestion(&draft)
	r.questions[id] = &stored
	return &draft, nil
}

func (r *ForumRepository) CreateAnswer(_ context.Context, a *model.Answer) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.questions[a.QuestionID]
	if !ok {
		return nil, util.ErrNotFound
	}
	if a.ID == "" {
		a.ID = model.NewID()
	}

	stored := *a
	r.answers[a.ID] = &stored
	r.answersByQuestion[a.QuestionID] = append(r.answersByQuestion[a.QuestionID], a.ID)

	q.AnswerCount++
	q.LastActivity = a.CreatedAt
	q.UpdatedAt = a.CreatedAt

	cp := copyQuestion(q)
	return &cp, nil
}

func (r *ForumRepository) FindAnswer(_ context.Context, id string) (*model.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.answers[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *ForumRepository) ListAnswers(_ context.Context, questionID string) ([]model.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.answersByQuestion[questionID]
	list := make([]model.Answer, 0, len(ids))
	for _, id := range ids {
		list = append(list, *r.answers[id])
	}
	return list, nil
}

func (r *ForumRepository) CountAnswersByAuthor(_ context.Context, authorID uint) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.answers {
		if a.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (r *ForumRepository) SelectBestAnswer(_ context.Context, questionID, answerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.questions[questionID]
	if !ok {
		return util.ErrNotFound
	}
	best, ok := r.answers[answerID]
	if !ok || best.QuestionID != questionID {
		return util.ErrNotFound
	}

	// 先全部重置再设置，保证同一问题下最多一个最佳回答
	for _, id := range r.answersByQuestion[questionID] {
		r.answers[id].IsBestAnswer = id == answerID
	}
	if q.BestAnswerID == nil || *q.BestAnswerID != answerID || q.Status != model.QuestionAnswered {
		q.BestAnswerID = &answerID
		q.Status = model.QuestionAnswered
		q.UpdatedAt = at
		q.LastActivity = at
	}
	return nil
}

func (r *ForumRepository) ListTags(_ context.Context) ([]model.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]model.Tag, 0, len(r.tagOrder))
	for _, key := range r.tagOrder {
		list = append(list, *r.tags[key])
	}
	return list, nil
}

func (r *ForumRepository) FindVote(_ context.Context, key model.VoteKey) (*model.Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.votes[key]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

// tally 必须在持有写锁时调用
func (r *ForumRepository) tally(key model.VoteKey) (*model.VoteTally, bool) {
	switch key.TargetType {
	case model.TargetQuestion:
		if q, ok := r.questions[key.TargetID]; ok {
			return &q.VoteTally, true
		}
	case model.TargetAnswer:
		if a, ok := r.answers[key.TargetID]; ok {
			return &a.VoteTally, true
		}
	}
	return nil, false
}

func (r *ForumRepository) CastVote(_ context.Context, key model.VoteKey, voteType model.VoteType, at time.Time) (model.VoteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tally, ok := r.tally(key)
	if !ok {
		return model.VoteResult{}, util.ErrNotFound
	}

	existing := r.votes[key]
	tr := model.ResolveVote(existing, voteType)

	result := model.VoteResult{Action: tr.Action}
	switch tr.Action {
	case model.VoteCreated:
		v := &model.Vote{
			ID:         model.NewID(),
			UserID:     key.UserID,
			TargetID:   key.TargetID,
			TargetType: key.TargetType,
			VoteType:   voteType,
			CreatedAt:  at,
		}
		r.votes[key] = v
		cp := *v
		result.Vote = &cp
	case model.VoteSwitched:
		existing.VoteType = voteType
		existing.CreatedAt = at
		cp := *existing
		result.Vote = &cp
	case model.VoteRemoved:
		delete(r.votes, key)
	}

	tally.Apply(tr.Up, tr.Down)
	result.Tally = *tally
	return result, nil
}

func (r *ForumRepository) RemoveVote(_ context.Context, key model.VoteKey) (model.VoteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tally, ok := r.tally(key)
	if !ok {
		return model.VoteResult{}, util.ErrNotFound
	}

	tr := model.ResolveRemoval(r.votes[key])
	if tr.Action == model.VoteRemoved {
		delete(r.votes, key)
		tally.Apply(tr.Up, tr.Down)
	}
	return model.VoteResult{Action: tr.Action, Tally: *tally}, nil
}
