package repository

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/util"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *GroupRepository) CreateGroup(ctx context.Context, g *model.Group) error {
	return r.DB.WithContext(ctx).Create(g).Error
}

func (r *GroupRepository) FindGroup(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	if err := r.DB.WithContext(ctx).Scopes(preloadMembers).Where("id = ?", id).Take(&g).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (r *GroupRepository) ListGroups(ctx context.Context) ([]model.Group, error) {
	var list []model.Group
	err := r.DB.WithContext(ctx).Scopes(preloadMembers).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *GroupRepository) ListGroupsByMember(ctx context.Context, userID uint) ([]model.Group, error) {
	var list []model.Group
	err := r.DB.WithContext(ctx).Scopes(preloadMembers).
		Where("id IN (?)", r.DB.Model(&model.GroupMember{}).Select("group_id").Where("user_id = ?", userID)).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID string, m model.GroupMember) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g model.Group
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", groupID).Take(&g).Error; err != nil {
			return notFound(err)
		}

		var exists int64
		if err := tx.Model(&model.GroupMember{}).Where("group_id = ? AND user_id = ?", groupID, m.UserID).Count(&exists).Error; err != nil {
			return err
		}
		if exists > 0 {
			return util.ErrConflict
		}

		var count int64
		if err := tx.Model(&model.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error; err != nil {
			return err
		}
		if g.MaxMembers > 0 && int(count) >= g.MaxMembers {
			return util.ErrGroupFull
		}

		m.GroupID = groupID
		return tx.Create(&m).Error
	})
}

func (r *GroupRepository) UpdateMemberRole(ctx context.Context, groupID string, userID uint, role model.GroupRole) error {
	res := r.DB.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID string, userID uint) error {
	res := r.DB.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&model.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *GroupRepository) TouchGroup(ctx context.Context, groupID string, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&model.Group{}).Where("id = ?", groupID).
		UpdateColumns(map[string]interface{}{"last_activity": at, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *GroupRepository) groupExists(tx *gorm.DB, groupID string) error {
	var count int64
	if err := tx.Model(&model.Group{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *GroupRepository) CreateTask(ctx context.Context, t *model.GroupTask) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.groupExists(tx, t.GroupID); err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (r *GroupRepository) FindTask(ctx context.Context, groupID, taskID string) (*model.GroupTask, error) {
	var t model.GroupTask
	if err := r.DB.WithContext(ctx).Where("id = ? AND group_id = ?", taskID, groupID).Take(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *GroupRepository) UpdateTask(ctx context.Context, groupID, taskID string, fn func(t *model.GroupTask) error) (*model.GroupTask, error) {
	var t model.GroupTask
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ? AND group_id = ?", taskID, groupID).Take(&t).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&t); err != nil {
			return err
		}
		t.ID, t.GroupID = taskID, groupID
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GroupRepository) ListTasks(ctx context.Context, groupID string) ([]model.GroupTask, error) {
	var list []model.GroupTask
	err := r.DB.WithContext(ctx).Where("group_id = ?", groupID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *GroupRepository) ListTasksByAssignee(ctx context.Context, userID uint) ([]model.GroupTask, error) {
	var list []model.GroupTask
	err := r.DB.WithContext(ctx).Where("assignee_id = ?", userID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *GroupRepository) CreateFile(ctx context.Context, f *model.GroupFile) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.groupExists(tx, f.GroupID); err != nil {
			return err
		}
		return tx.Create(f).Error
	})
}

func (r *GroupRepository) ListFiles(ctx context.Context, groupID string) ([]model.GroupFile, error) {
	var list []model.GroupFile
	err := r.DB.WithContext(ctx).Where("group_id = ?", groupID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *GroupRepository) CreateDiscussion(ctx context.Context, d *model.GroupDiscussion) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.groupExists(tx, d.GroupID); err != nil {
			return err
		}
		return tx.Create(d).Error
	})
}

func (r *GroupRepository) ListDiscussions(ctx context.Context, groupID string) ([]model.GroupDiscussion, error) {
	var list []model.GroupDiscussion
	err := r.DB.WithContext(ctx).Where("group_id = ?", groupID).Order("created_at ASC").Find(&list).Error
	return list, err
}
