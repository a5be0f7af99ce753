package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// WorkAssignmentRepository 维修工单数据访问接口
type WorkAssignmentRepository interface {
	Create(ctx context.Context, wa *model.WorkAssignment) error
	GetByID(ctx context.Context, id string) (*model.WorkAssignment, error)
	// GetByComplaint 返回投诉最早创建的工单
	GetByComplaint(ctx context.Context, complaintID string) (*model.WorkAssignment, error)
	ListByAssignee(ctx context.Context, userID string) ([]model.WorkAssignment, error)
	ListByAssigner(ctx context.Context, userID string) ([]model.WorkAssignment, error)
	Update(ctx context.Context, wa *model.WorkAssignment, fields ...string) error
	Delete(ctx context.Context, id string) error
}

type workAssignmentRepo struct {
	db *gorm.DB
}

// NewWorkAssignmentRepo 创建 WorkAssignmentRepository 实例
func NewWorkAssignmentRepo(db *gorm.DB) WorkAssignmentRepository {
	return &workAssignmentRepo{db: db}
}

func (r *workAssignmentRepo) Create(ctx context.Context, wa *model.WorkAssignment) error {
	return r.db.WithContext(ctx).Create(wa).Error
}

func (r *workAssignmentRepo) GetByID(ctx context.Context, id string) (*model.WorkAssignment, error) {
	var wa model.WorkAssignment
	err := r.db.WithContext(ctx).
		Where("work_assignment_id = ?", id).
		First(&wa).Error
	if err != nil {
		return nil, err
	}
	return &wa, nil
}

func (r *workAssignmentRepo) GetByComplaint(ctx context.Context, complaintID string) (*model.WorkAssignment, error) {
	var wa model.WorkAssignment
	err := r.db.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("created_at ASC").
		First(&wa).Error
	if err != nil {
		return nil, err
	}
	return &wa, nil
}

func (r *workAssignmentRepo) ListByAssignee(ctx context.Context, userID string) ([]model.WorkAssignment, error) {
	var list []model.WorkAssignment
	err := r.db.WithContext(ctx).
		Where("assigned_to = ?", userID).
		Order("deadline ASC, created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *workAssignmentRepo) ListByAssigner(ctx context.Context, userID string) ([]model.WorkAssignment, error) {
	var list []model.WorkAssignment
	err := r.db.WithContext(ctx).
		Where("assigned_by = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *workAssignmentRepo) Update(ctx context.Context, wa *model.WorkAssignment, fields ...string) error {
	db := r.db.WithContext(ctx)
	if len(fields) == 0 {
		return db.Save(wa).Error
	}
	return db.Model(wa).Select(append(fields, "updated_at")).Updates(wa).Error
}

func (r *workAssignmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("work_assignment_id = ?", id).
		Delete(&model.WorkAssignment{}).Error
}
