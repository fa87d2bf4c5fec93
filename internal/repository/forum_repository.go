package repository

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ForumRepository struct {
	DB *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{DB: db}
}

func (r *ForumRepository) CreateQuestion(ctx context.Context, q *model.Question, tagNames []string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make(map[string]bool, len(tagNames))
		tags := make(model.TagList, 0, len(tagNames))
		for _, name := range tagNames {
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true

			var tag model.Tag
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("LOWER(name) = ?", key).Take(&tag).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				var total int64
				if err := tx.Model(&model.Tag{}).Count(&total).Error; err != nil {
					return err
				}
				tag = model.Tag{
					UUIDBase:   model.UUIDBase{CreatedAt: q.CreatedAt, UpdatedAt: q.CreatedAt},
					Name:       name,
					UsageCount: 1,
					Color:      model.TagColor(int(total)),
					CreatedBy:  q.AuthorID,
				}
				if err := tx.Create(&tag).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Model(&tag).Update("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
					return err
				}
			}
			tags = append(tags, tag.Ref())
		}
		q.Tags = tags

		return tx.Omit(clause.Associations).Create(q).Error
	})
}

func (r *ForumRepository) FindQuestion(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	if err := r.DB.WithContext(ctx).Preload("Author").Where("id = ?", id).Take(&q).Error; err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func (r *ForumRepository) ListQuestions(ctx context.Context) ([]model.Question, error) {
	var list []model.Question
	err := r.DB.WithContext(ctx).Preload("Author").Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *ForumRepository) UpdateQuestion(ctx context.Context, id string, fn func(q *model.Question) error) (*model.Question, error) {
	var q model.Question
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Author").Where("id = ?", id).Take(&q).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&q); err != nil {
			return err
		}
		q.ID = id
		return tx.Omit(clause.Associations).Save(&q).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *ForumRepository) CreateAnswer(ctx context.Context, a *model.Answer) (*model.Question, error) {
	var q model.Question
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", a.QuestionID).Take(&q).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return err
		}
		q.AnswerCount++
		q.LastActivity = a.CreatedAt
		q.UpdatedAt = a.CreatedAt
		return tx.Model(&model.Question{}).Where("id = ?", q.ID).Updates(map[string]interface{}{
			"answer_count":  gorm.Expr("answer_count + 1"),
			"last_activity": a.CreatedAt,
			"updated_at":    a.CreatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *ForumRepository) FindAnswer(ctx context.Context, id string) (*model.Answer, error) {
	var a model.Answer
	if err := r.DB.WithContext(ctx).Preload("Author").Where("id = ?", id).Take(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *ForumRepository) ListAnswers(ctx context.Context, questionID string) ([]model.Answer, error) {
	var list []model.Answer
	err := r.DB.WithContext(ctx).Preload("Author").
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *ForumRepository) CountAnswersByAuthor(ctx context.Context, authorID uint) (int, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Answer{}).Where("author_id = ?", authorID).Count(&count).Error
	return int(count), err
}

func (r *ForumRepository) SelectBestAnswer(ctx context.Context, questionID, answerID string, at time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q model.Question
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", questionID).Take(&q).Error; err != nil {
			return notFound(err)
		}
		var count int64
		if err := tx.Model(&model.Answer{}).Where("id = ? AND question_id = ?", answerID, questionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return util.ErrNotFound
		}

		// 先全部重置再设置，保证同一问题下最多一个最佳回答
		if err := tx.Model(&model.Answer{}).Where("question_id = ?", questionID).
			Update("is_best_answer", gorm.Expr("id = ?", answerID)).Error; err != nil {
			return err
		}
		if q.BestAnswerID != nil && *q.BestAnswerID == answerID && q.Status == model.QuestionAnswered {
			return nil
		}
		return tx.Model(&model.Question{}).Where("id = ?", questionID).Updates(map[string]interface{}{
			"best_answer_id": answerID,
			"status":         model.QuestionAnswered,
			"last_activity":  at,
			"updated_at":     at,
		}).Error
	})
}

func (r *ForumRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&tags).Error
	return tags, err
}

func voteScope(key model.VoteKey) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND target_id = ? AND target_type = ?", key.UserID, key.TargetID, key.TargetType)
	}
}

func (r *ForumRepository) FindVote(ctx context.Context, key model.VoteKey) (*model.Vote, error) {
	var v model.Vote
	err := r.DB.WithContext(ctx).Scopes(voteScope(key)).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func targetModel(t model.VoteTargetType) interface{} {
	if t == model.TargetAnswer {
		return &model.Answer{}
	}
	return &model.Question{}
}

// applyVote 在一个事务中锁定目标行，根据已有流水计算变更，同时写流水和计数
func (r *ForumRepository) applyVote(ctx context.Context, key model.VoteKey, resolve func(existing *model.Vote) model.VoteTransition, voteType model.VoteType, at time.Time) (model.VoteResult, error) {
	var result model.VoteResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tally model.VoteTally
		err := tx.Model(targetModel(key.TargetType)).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("votes", "upvotes", "downvotes").
			Where("id = ?", key.TargetID).
			Take(&tally).Error
		if err != nil {
			return notFound(err)
		}

		var existing *model.Vote
		var v model.Vote
		err = tx.Scopes(voteScope(key)).Take(&v).Error
		switch {
		case err == nil:
			existing = &v
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		tr := resolve(existing)
		result.Action = tr.Action
		switch tr.Action {
		case model.VoteNone:
			result.Tally = tally
			return nil
		case model.VoteCreated:
			nv := model.Vote{
				ID:         model.NewID(),
				UserID:     key.UserID,
				TargetID:   key.TargetID,
				TargetType: key.TargetType,
				VoteType:   voteType,
				CreatedAt:  at,
			}
			if err := tx.Create(&nv).Error; err != nil {
				return err
			}
			result.Vote = &nv
		case model.VoteSwitched:
			if err := tx.Model(existing).Updates(map[string]interface{}{"vote_type": voteType, "created_at": at}).Error; err != nil {
				return err
			}
			existing.VoteType = voteType
			existing.CreatedAt = at
			result.Vote = existing
		case model.VoteRemoved:
			if err := tx.Delete(existing).Error; err != nil {
				return err
			}
		}

		err = tx.Model(targetModel(key.TargetType)).Where("id = ?", key.TargetID).UpdateColumns(map[string]interface{}{
			"upvotes":   gorm.Expr("upvotes + ?", tr.Up),
			"downvotes": gorm.Expr("downvotes + ?", tr.Down),
			"votes":     gorm.Expr("votes + ?", tr.Up-tr.Down),
		}).Error
		if err != nil {
			return err
		}
		tally.Apply(tr.Up, tr.Down)
		result.Tally = tally
		return nil
	})
	return result, err
}

func (r *ForumRepository) CastVote(ctx context.Context, key model.VoteKey, voteType model.VoteType, at time.Time) (model.VoteResult, error) {
	return r.applyVote(ctx, key, func(existing *model.Vote) model.VoteTransition {
		return model.ResolveVote(existing, voteType)
	}, voteType, at)
}

func (r *ForumRepository) RemoveVote(ctx context.Context, key model.VoteKey) (model.VoteResult, error) {
	return r.applyVote(ctx, key, model.ResolveRemoval, "", time.Now())
}
