package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ActivityRepository 投诉流转记录数据访问接口（只追加）
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.ComplaintActivity) error
	ListByComplaint(ctx context.Context, complaintID string) ([]model.ComplaintActivity, error)
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.ComplaintActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) ListByComplaint(ctx context.Context, complaintID string) ([]model.ComplaintActivity, error) {
	var list []model.ComplaintActivity
	err := r.db.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
