package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ScheduleFilter 排期列表过滤条件
type ScheduleFilter struct {
	Status       string
	SupervisorID string
}

// ScheduleRepository 施工排期数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	List(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule, fields ...string) error
	Delete(ctx context.Context, id string) error
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Omit("Complaint").Create(schedule).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Complaint").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, error) {
	var schedules []model.Schedule
	db := r.db.WithContext(ctx).Preload("Complaint")

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.SupervisorID != "" {
		db = db.Where("supervisor_id = ?", filter.SupervisorID)
	}

	err := db.Order("assigned_date ASC").Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule, fields ...string) error {
	db := r.db.WithContext(ctx).Omit("Complaint")
	if len(fields) == 0 {
		return db.Save(schedule).Error
	}
	return db.Model(schedule).Select(append(fields, "updated_at")).Updates(schedule).Error
}

func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		Delete(&model.Schedule{}).Error
}
