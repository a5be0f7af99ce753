package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/repository"
)

// ResourceService 资源台账业务接口
type ResourceService interface {
	List(ctx context.Context, req *dto.ResourceListRequest) ([]model.Resource, error)
	Get(ctx context.Context, id string) (*model.Resource, error)
	Create(ctx context.Context, req *dto.CreateResourceRequest, caller Caller) (*model.Resource, error)
	Update(ctx context.Context, id string, req *dto.UpdateResourceRequest, caller Caller) (*model.Resource, error)
	Delete(ctx context.Context, id string, caller Caller) error
	// 按类型 × 状态汇总可用性
	Summary(ctx context.Context) ([]dto.ResourceTypeSummary, error)
}

type resourceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewResourceService 创建 ResourceService 实例
func NewResourceService(repo *repository.Repository, logger *zap.Logger) ResourceService {
	return &resourceService{repo: repo, logger: logger}
}

func (s *resourceService) List(ctx context.Context, req *dto.ResourceListRequest) ([]model.Resource, error) {
	list, err := s.repo.Resource.List(ctx, repository.ResourceFilter{Type: req.Type, Status: req.Status})
	if err != nil {
		s.logger.Error("查询资源列表失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *resourceService) Get(ctx context.Context, id string) (*model.Resource, error) {
	res, err := s.repo.Resource.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("查询资源失败", zap.String("resource_id", id), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (s *resourceService) Create(ctx context.Context, req *dto.CreateResourceRequest, caller Caller) (*model.Resource, error) {
	if err := caller.require(model.RoleAdministrator); err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, ErrResourceQuantity
	}

	status := req.Status
	if status == "" {
		status = model.ResourceAvailable
	}
	unit := req.Unit
	if unit == "" {
		unit = "units"
	}

	res := &model.Resource{
		Type:          req.Type,
		Name:          strings.TrimSpace(req.Name),
		Category:      req.Category,
		Quantity:      req.Quantity,
		TotalQuantity: req.Quantity,
		Unit:          unit,
		Status:        status,
		LastUpdated:   time.Now().UTC(),
		UpdatedBy:     &caller.ID,
		Notes:         req.Notes,
	}
	if err := s.repo.Resource.Create(ctx, res); err != nil {
		s.logger.Error("创建资源失败", zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (s *resourceService) Update(ctx context.Context, id string, req *dto.UpdateResourceRequest, caller Caller) (*model.Resource, error) {
	if err := caller.require(model.RoleAdministrator); err != nil {
		return nil, err
	}
	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		res.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		res.Category = *req.Category
	}
	if req.Quantity != nil {
		res.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		res.Unit = *req.Unit
	}
	if req.Status != nil {
		res.Status = *req.Status
	}
	if req.Notes != nil {
		res.Notes = *req.Notes
	}
	if !res.QuantityValid() {
		return nil, ErrResourceQuantity
	}
	res.LastUpdated = time.Now().UTC()
	res.UpdatedBy = &caller.ID

	if err := s.repo.Resource.Update(ctx, res); err != nil {
		s.logger.Error("更新资源失败", zap.String("resource_id", id), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (s *resourceService) Delete(ctx context.Context, id string, caller Caller) error {
	if err := caller.require(model.RoleAdministrator); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Resource.Delete(ctx, id); err != nil {
		s.logger.Error("删除资源失败", zap.String("resource_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *resourceService) Summary(ctx context.Context) ([]dto.ResourceTypeSummary, error) {
	rows, err := s.repo.Report.ResourceGroups(ctx)
	if err != nil {
		s.logger.Error("汇总资源失败", zap.Error(err))
		return nil, err
	}

	result := []dto.ResourceTypeSummary{}
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.Type]
		if !ok {
			i = len(result)
			index[row.Type] = i
			result = append(result, dto.ResourceTypeSummary{Type: row.Type})
		}
		result[i].Statuses = append(result[i].Statuses, dto.ResourceStatusSummary{
			Status:   row.Status,
			Count:    row.Count,
			Quantity: row.Quantity,
		})
	}
	return result, nil
}
