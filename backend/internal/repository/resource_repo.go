package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ResourceFilter 资源列表过滤条件
type ResourceFilter struct {
	Type   string
	Status string
}

// ResourceRepository 资源台账数据访问接口
type ResourceRepository interface {
	Create(ctx context.Context, res *model.Resource) error
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	List(ctx context.Context, filter ResourceFilter) ([]model.Resource, error)
	Update(ctx context.Context, res *model.Resource) error
	Delete(ctx context.Context, id string) error
	// ListAvailable 当前状态为 available 的资源池快照
	ListAvailable(ctx context.Context) ([]model.Resource, error)
}

type resourceRepo struct {
	db *gorm.DB
}

// NewResourceRepo 创建 ResourceRepository 实例
func NewResourceRepo(db *gorm.DB) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) Create(ctx context.Context, res *model.Resource) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *resourceRepo) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	var res model.Resource
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepo) List(ctx context.Context, filter ResourceFilter) ([]model.Resource, error) {
	var resources []model.Resource
	db := r.db.WithContext(ctx)

	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	err := db.Order("type ASC, name ASC").Find(&resources).Error
	return resources, err
}

// Update 整行保存，total_quantity 创建后不可修改
func (r *resourceRepo) Update(ctx context.Context, res *model.Resource) error {
	return r.db.WithContext(ctx).Omit("total_quantity", "created_at").Save(res).Error
}

func (r *resourceRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("resource_id = ?", id).
		Delete(&model.Resource{}).Error
}

func (r *resourceRepo) ListAvailable(ctx context.Context) ([]model.Resource, error) {
	return r.List(ctx, ResourceFilter{Status: model.ResourceAvailable})
}
