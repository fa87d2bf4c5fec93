package service

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/repository"
	"campus_portal_backend/internal/util"
	"campus_portal_backend/pkg/logger"
	"campus_portal_backend/pkg/monitoring"
	"campus_portal_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type QuestionInput struct {
	Title   string   `json:"title" validate:"notblank,max=200"`
	Content string   `json:"content" validate:"notblank,max=20000"`
	Tags    []string `json:"tags" validate:"min=1,dive,notblank,max=30"`
}

type AnswerInput struct {
	Content string `json:"content" validate:"notblank,max=20000"`
}

type QuestionDetail struct {
	Question model.Question `json:"question"`
	Answers  []model.Answer `json:"answers"`
}

type ForumService struct {
	Forum   repository.ForumStore
	Users   repository.UserStore
	Views   ViewCounter
	MaxTags int

	now func() time.Time
}

func NewForumService(forum repository.ForumStore, users repository.UserStore, views ViewCounter, maxTags int) *ForumService {
	return &ForumService{
		Forum:   forum,
		Users:   users,
		Views:   views,
		MaxTags: maxTags,
		now:     time.Now,
	}
}

// actingUser 已登录但用户不存在（例如内存存储重启后）按未登录处理
func (s *ForumService) actingUser(ctx context.Context, userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrUnauthenticated
	}
	return user, err
}

func validateVoteTarget(targetType model.VoteTargetType) error {
	if !targetType.Valid() {
		return util.Invalid("targetType", "must be question or answer")
	}
	return nil
}

// CastVote 同类型再投撤销，反类型替换，否则新增；目标不存在返回 ErrNotFound
func (s *ForumService) CastVote(ctx context.Context, targetID string, targetType model.VoteTargetType, voteType model.VoteType, actingUserID uint) (result model.VoteResult, err error) {
	ctx, span := tracing.Start(ctx, "forum.CastVote",
		attribute.String("target.id", targetID),
		attribute.String("target.type", string(targetType)))
	defer func() { tracing.End(span, err) }()

	if actingUserID == 0 {
		return result, util.ErrUnauthenticated
	}
	if err := validateVoteTarget(targetType); err != nil {
		return result, err
	}
	if !voteType.Valid() {
		return result, util.Invalid("voteType", "must be upvote or downvote")
	}

	key := model.VoteKey{UserID: actingUserID, TargetID: targetID, TargetType: targetType}
	result, err = s.Forum.CastVote(ctx, key, voteType, s.now())
	if err != nil {
		return result, fmt.Errorf("cast vote: %w", err)
	}

	monitoring.VoteCounter.WithLabelValues(string(targetType), string(result.Action)).Inc()
	logger.Log.Debug("Vote applied",
		zap.Uint("userId", actingUserID),
		zap.String("targetId", targetID),
		zap.String("targetType", string(targetType)),
		zap.String("action", string(result.Action)),
		zap.Int("votes", result.Tally.Votes))
	return result, nil
}

// RemoveVote 删除当前用户的投票；没有投票时不做修改
func (s *ForumService) RemoveVote(ctx context.Context, targetID string, targetType model.VoteTargetType, actingUserID uint) (model.VoteResult, error) {
	if actingUserID == 0 {
		return model.VoteResult{}, util.ErrUnauthenticated
	}
	if err := validateVoteTarget(targetType); err != nil {
		return model.VoteResult{}, err
	}

	key := model.VoteKey{UserID: actingUserID, TargetID: targetID, TargetType: targetType}
	result, err := s.Forum.RemoveVote(ctx, key)
	if err != nil {
		return result, fmt.Errorf("remove vote: %w", err)
	}
	monitoring.VoteCounter.WithLabelValues(string(targetType), string(result.Action)).Inc()
	return result, nil
}

// GetUserVote 没有投票时返回 nil, nil
func (s *ForumService) GetUserVote(ctx context.Context, targetID string, targetType model.VoteTargetType, actingUserID uint) (*model.Vote, error) {
	if actingUserID == 0 {
		return nil, util.ErrUnauthenticated
	}
	if err := validateVoteTarget(targetType); err != nil {
		return nil, err
	}
	return s.Forum.FindVote(ctx, model.VoteKey{UserID: actingUserID, TargetID: targetID, TargetType: targetType})
}

// SelectBestAnswer 只有提问者可以选择最佳回答
func (s *ForumService) SelectBestAnswer(ctx context.Context, questionID, answerID string, actingUserID uint) (err error) {
	ctx, span := tracing.Start(ctx, "forum.SelectBestAnswer", attribute.String("question.id", questionID))
	defer func() { tracing.End(span, err) }()

	if actingUserID == 0 {
		return util.ErrUnauthenticated
	}
	q, err := s.Forum.FindQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if q.AuthorID != actingUserID {
		return util.ErrForbidden
	}
	if err := s.Forum.SelectBestAnswer(ctx, questionID, answerID, s.now()); err != nil {
		return err
	}

	logger.Log.Info("Best answer selected", zap.String("questionId", questionID), zap.String("answerId", answerID))
	return nil
}

func (s *ForumService) SearchQuestions(ctx context.Context, f QuestionFilter) (list []model.Question, err error) {
	ctx, span := tracing.Start(ctx, "forum.SearchQuestions", attribute.String("sortBy", f.SortBy))
	defer func() { tracing.End(span, err) }()

	all, err := s.Forum.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return FilterQuestions(all, f)
}

func (s *ForumService) GetPopularTags(ctx context.Context, limit int) ([]model.Tag, error) {
	tags, err := s.Forum.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return RankTags(tags, limit), nil
}

// normalizeTags 去掉首尾空白，大小写不敏感去重，保留首次出现的写法
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func (s *ForumService) CreateQuestion(ctx context.Context, actingUserID uint, in QuestionInput) (q *model.Question, err error) {
	ctx, span := tracing.Start(ctx, "forum.CreateQuestion")
	defer func() { tracing.End(span, err) }()

	author, err := s.actingUser(ctx, actingUserID)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Tags = normalizeTags(in.Tags)
	if err := util.Validate(in); err != nil {
		return nil, err
	}
	if s.MaxTags > 0 && len(in.Tags) > s.MaxTags {
		return nil, util.Invalid("tags", fmt.Sprintf("at most %d tags allowed", s.MaxTags))
	}

	now := s.now()
	q = &model.Question{
		UUIDBase:     model.UUIDBase{ID: model.NewID(), CreatedAt: now, UpdatedAt: now},
		Title:        in.Title,
		Content:      in.Content,
		AuthorID:     author.ID,
		Author:       author.Public(),
		Status:       model.QuestionOpen,
		LastActivity: now,
	}
	if err := s.Forum.CreateQuestion(ctx, q, in.Tags); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	monitoring.QuestionsCreated.Inc()
	logger.Log.Info("Question created", zap.String("questionId", q.ID), zap.Uint("authorId", author.ID), zap.Strings("tags", q.Tags.Names()))
	return q, nil
}

func (s *ForumService) CreateAnswer(ctx context.Context, actingUserID uint, questionID string, in AnswerInput) (*model.Answer, error) {
	author, err := s.actingUser(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	q, err := s.Forum.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.Status == model.QuestionClosed {
		return nil, util.Invalid("questionId", "question is closed")
	}

	now := s.now()
	a := &model.Answer{
		UUIDBase:   model.UUIDBase{ID: model.NewID(), CreatedAt: now, UpdatedAt: now},
		QuestionID: questionID,
		Content:    in.Content,
		AuthorID:   author.ID,
		Author:     author.Public(),
	}
	if _, err := s.Forum.CreateAnswer(ctx, a); err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}

	logger.Log.Info("Answer created", zap.String("questionId", questionID), zap.String("answerId", a.ID))
	return a, nil
}

// GetQuestion viewerKey 为空时不计浏览量
func (s *ForumService) GetQuestion(ctx context.Context, id, viewerKey string) (*QuestionDetail, error) {
	q, err := s.Forum.FindQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	if viewerKey != "" && s.Views != nil {
		counted, err := s.Views.ShouldCount(ctx, id, viewerKey)
		if err != nil {
			// 计数失败不影响读取
			logger.Log.Warn("View counter unavailable", zap.Error(err))
		}
		if counted {
			if updated, err := s.Forum.UpdateQuestion(ctx, id, func(q *model.Question) error {
				q.Views++
				return nil
			}); err == nil {
				q = updated
			}
		}
	}

	answers, err := s.Forum.ListAnswers(ctx, id)
	if err != nil {
		return nil, err
	}
	sortAnswers(answers)
	return &QuestionDetail{Question: *q, Answers: answers}, nil
}

func (s *ForumService) FlagQuestion(ctx context.Context, actingUserID uint, id string) (*model.Question, error) {
	if actingUserID == 0 {
		return nil, util.ErrUnauthenticated
	}
	now := s.now()
	q, err := s.Forum.UpdateQuestion(ctx, id, func(q *model.Question) error {
		q.IsFlagged = true
		q.FlagCount++
		q.Status = model.QuestionFlagged
		q.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Question flagged", zap.String("questionId", id), zap.Uint("userId", actingUserID), zap.Int("flagCount", q.FlagCount))
	return q, nil
}

// CloseQuestion 提问者、教师或管理员可以关闭问题
func (s *ForumService) CloseQuestion(ctx context.Context, actingUserID uint, id string) (*model.Question, error) {
	user, err := s.actingUser(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	q, err := s.Forum.UpdateQuestion(ctx, id, func(q *model.Question) error {
		if q.AuthorID != user.ID && !user.Role.CanModerate() {
			return util.ErrForbidden
		}
		q.Status = model.QuestionClosed
		q.UpdatedAt = now
		q.LastActivity = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Question closed", zap.String("questionId", id), zap.Uint("userId", user.ID))
	return q, nil
}

// ListFlagged 被举报的问题，举报次数多的在前
func (s *ForumService) ListFlagged(ctx context.Context) ([]model.Question, error) {
	all, err := s.Forum.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	flagged := make([]model.Question, 0)
	for _, q := range all {
		if q.IsFlagged {
			flagged = append(flagged, q)
		}
	}
	sortByFlagCount(flagged)
	return flagged, nil
}
