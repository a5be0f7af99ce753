package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/repository"
	apperrors "github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/errors"
)

const autoScheduleLock = "auto_schedule"

// Locker 跨实例互斥锁（由 Redis 客户端提供）
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// ScheduleService 施工排期业务接口
type ScheduleService interface {
	// 按优先级批量排期
	AutoSchedule(ctx context.Context, caller Caller) (*dto.AutoScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest, caller Caller) ([]model.Schedule, error)
	Get(ctx context.Context, id string) (*model.Schedule, error)
	Create(ctx context.Context, req *dto.CreateScheduleRequest, caller Caller) (*model.Schedule, error)
	Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, caller Caller) (*model.Schedule, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type scheduleService struct {
	repo    *repository.Repository
	gate    ResourceGate
	locker  Locker
	lockTTL time.Duration
	logger  *zap.Logger

	// 同一进程内自动排期串行执行
	mu sync.Mutex
}

// NewScheduleService 创建 ScheduleService 实例，locker 为 nil 时仅使用进程内互斥
func NewScheduleService(
	repo *repository.Repository,
	gate ResourceGate,
	locker Locker,
	lockTTL time.Duration,
	logger *zap.Logger,
) ScheduleService {
	if gate == nil {
		gate = AlwaysAvailableGate{}
	}
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	return &scheduleService{repo: repo, gate: gate, locker: locker, lockTTL: lockTTL, logger: logger}
}

// ════════════════════════════════════════════════════════════
// AutoSchedule 优先级贪心排期
// ════════════════════════════════════════════════════════════

func (s *scheduleService) AutoSchedule(ctx context.Context, caller Caller) (*dto.AutoScheduleResponse, error) {
	if err := caller.require(model.RoleSupervisor, model.RoleAdministrator); err != nil {
		return nil, err
	}

	// 0. 串行化
	if !s.mu.TryLock() {
		return nil, ErrAutoScheduleRunning
	}
	defer s.mu.Unlock()

	if s.locker != nil {
		token, err := s.locker.AcquireLock(ctx, autoScheduleLock, s.lockTTL)
		switch {
		case errors.Is(err, apperrors.ErrLockHeld):
			return nil, ErrAutoScheduleRunning
		case err != nil:
			s.logger.Warn("获取自动排期锁失败，仅使用进程内互斥", zap.Error(err))
		default:
			defer func() {
				if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), autoScheduleLock, token); err != nil {
					s.logger.Warn("释放自动排期锁失败", zap.Error(err))
				}
			}()
		}
	}

	var (
		created []model.Schedule
		skipped []string
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		created, skipped = nil, nil

		// 1. 候选投诉（优先级降序）与资源池快照
		candidates, err := tx.Complaint.ListSchedulable(ctx)
		if err != nil {
			return err
		}
		pool, err := tx.Resource.ListAvailable(ctx)
		if err != nil {
			return err
		}

		// 2. 滚动游标逐条排期
		cursor := time.Now().UTC()
		for i := range candidates {
			c := &candidates[i]
			estimate := c.ResourceEstimate.Data()
			ok, err := s.gate.Check(ctx, &estimate, pool)
			if err != nil {
				return err
			}
			if !ok {
				skipped = append(skipped, c.ComplaintID)
				continue
			}

			supervisorID := caller.ID
			if c.SupervisorID != nil && *c.SupervisorID != "" {
				supervisorID = *c.SupervisorID
			}
			sched := &model.Schedule{
				ComplaintID:             c.ComplaintID,
				AssignedDate:            cursor,
				EstimatedCompletionDate: cursor.AddDate(0, 0, CompletionDays(c.Severity)),
				ResourcesAllocated:      datatypes.NewJSONType(estimate),
				Status:                  model.ScheduleScheduled,
				SupervisorID:            supervisorID,
				TeamAssigned:            datatypes.JSONSlice[string]{},
				ProgressUpdates:         datatypes.JSONSlice[model.ProgressUpdate]{},
			}
			if err := tx.Schedule.Create(ctx, sched); err != nil {
				return err
			}
			if err := s.syncComplaintWithSchedule(ctx, tx, sched, caller.ID); err != nil {
				return err
			}

			created = append(created, *sched)
			cursor = sched.EstimatedCompletionDate.AddDate(0, 0, 1)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("自动排期失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("自动排期完成",
		zap.Int("created", len(created)),
		zap.Int("skipped", len(skipped)),
		zap.String("operator", caller.ID),
	)
	if created == nil {
		created = []model.Schedule{}
	}
	return &dto.AutoScheduleResponse{
		Message:   fmt.Sprintf("已生成 %d 条排期", len(created)),
		Count:     len(created),
		Skipped:   skipped,
		Schedules: created,
	}, nil
}

// syncComplaintWithSchedule 将排期状态与日期单向推送到投诉
func (s *scheduleService) syncComplaintWithSchedule(ctx context.Context, tx *repository.Repository, sched *model.Schedule, operator string) error {
	c, err := tx.Complaint.GetByID(ctx, sched.ComplaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("排期关联的投诉已不存在", zap.String("complaint_id", sched.ComplaintID))
			return nil
		}
		return err
	}

	prev := c.Status
	assigned := sched.AssignedDate
	c.Status = sched.ComplaintStatus()
	c.DateScheduled = &assigned
	if c.Status == model.ComplaintCompleted {
		switch {
		case sched.ActualCompletionDate != nil:
			done := *sched.ActualCompletionDate
			c.DateCompleted = &done
		case c.DateCompleted == nil:
			now := time.Now().UTC()
			c.DateCompleted = &now
		}
	} else {
		c.DateCompleted = nil
	}

	if err := tx.Complaint.Update(ctx, c, "status", "date_scheduled", "date_completed"); err != nil {
		return err
	}
	return recordActivity(ctx, tx, c.ComplaintID, model.ActivityScheduleSync, prev, c.Status, operator, sched.ScheduleID)
}

// ════════════════════════════════════════════════════════════
// 排期 CRUD
// ════════════════════════════════════════════════════════════

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest, caller Caller) ([]model.Schedule, error) {
	filter := repository.ScheduleFilter{Status: req.Status}
	if caller.Role == model.RoleSupervisor {
		filter.SupervisorID = caller.ID
	}
	list, err := s.repo.Schedule.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询排期列表失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *scheduleService) Get(ctx context.Context, id string) (*model.Schedule, error) {
	return s.load(ctx, s.repo, id)
}

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, caller Caller) (*model.Schedule, error) {
	if err := caller.require(model.RoleSupervisor); err != nil {
		return nil, err
	}
	if req.EstimatedCompletionDate.Before(req.AssignedDate) {
		return nil, ErrInvalidScheduleDate
	}

	c, err := s.repo.Complaint.GetByID(ctx, req.ComplaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		s.logger.Error("查询投诉失败", zap.Error(err))
		return nil, err
	}

	resources := c.ResourceEstimate.Data()
	if req.ResourcesAllocated != nil {
		resources = *req.ResourcesAllocated
	}
	status := req.Status
	if status == "" {
		status = model.ScheduleScheduled
	}
	team := datatypes.JSONSlice[string]{}
	if len(req.TeamAssigned) > 0 {
		team = datatypes.JSONSlice[string](req.TeamAssigned)
	}

	sched := &model.Schedule{
		ComplaintID:             c.ComplaintID,
		AssignedDate:            req.AssignedDate.UTC(),
		EstimatedCompletionDate: req.EstimatedCompletionDate.UTC(),
		ResourcesAllocated:      datatypes.NewJSONType(resources),
		Status:                  status,
		SupervisorID:            caller.ID,
		TeamAssigned:            team,
		ProgressUpdates:         datatypes.JSONSlice[model.ProgressUpdate]{},
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Schedule.Create(ctx, sched); err != nil {
			return err
		}
		return s.syncComplaintWithSchedule(ctx, tx, sched, caller.ID)
	})
	if err != nil {
		s.logger.Error("创建排期失败", zap.Error(err))
		return nil, err
	}
	return sched, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, caller Caller) (*model.Schedule, error) {
	if err := caller.require(model.RoleSupervisor, model.RoleAdministrator); err != nil {
		return nil, err
	}
	sched, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var fields []string

	// 改期：记录原开工日期与原因
	if req.AssignedDate != nil && !req.AssignedDate.Equal(sched.AssignedDate) {
		from := sched.AssignedDate
		sched.AssignedDate = req.AssignedDate.UTC()
		fields = append(fields, "assigned_date")
		if req.ReschedulingReason != "" {
			sched.RescheduledFrom = &from
			sched.ReschedulingReason = req.ReschedulingReason
			fields = append(fields, "rescheduled_from", "rescheduling_reason")
			if req.Status == nil {
				sched.Status = model.ScheduleRescheduled
				fields = append(fields, "status")
			}
		}
	}
	if req.EstimatedCompletionDate != nil {
		sched.EstimatedCompletionDate = req.EstimatedCompletionDate.UTC()
		fields = append(fields, "estimated_completion_date")
	}
	if sched.EstimatedCompletionDate.Before(sched.AssignedDate) {
		return nil, ErrInvalidScheduleDate
	}
	if req.ActualCompletionDate != nil {
		done := req.ActualCompletionDate.UTC()
		sched.ActualCompletionDate = &done
		fields = append(fields, "actual_completion_date")
	}
	if req.Status != nil {
		sched.Status = *req.Status
		fields = append(fields, "status")
	}
	if req.ResourcesAllocated != nil {
		sched.ResourcesAllocated = datatypes.NewJSONType(*req.ResourcesAllocated)
		fields = append(fields, "resources_allocated")
	}
	if req.TeamAssigned != nil {
		sched.TeamAssigned = datatypes.JSONSlice[string](req.TeamAssigned)
		fields = append(fields, "team_assigned")
	}
	if req.ProgressNote != "" {
		sched.ProgressUpdates = append(sched.ProgressUpdates, model.ProgressUpdate{
			Date:      now,
			Note:      req.ProgressNote,
			UpdatedBy: caller.ID,
		})
		fields = append(fields, "progress_updates")
	}
	if len(fields) == 0 {
		return sched, nil
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Schedule.Update(ctx, sched, fields...); err != nil {
			return err
		}
		return s.syncComplaintWithSchedule(ctx, tx, sched, caller.ID)
	})
	if err != nil {
		s.logger.Error("更新排期失败", zap.String("schedule_id", id), zap.Error(err))
		return nil, err
	}
	return sched, nil
}

func (s *scheduleService) Delete(ctx context.Context, id string, caller Caller) error {
	if err := caller.require(model.RoleSupervisor, model.RoleAdministrator); err != nil {
		return err
	}
	if _, err := s.load(ctx, s.repo, id); err != nil {
		return err
	}
	if err := s.repo.Schedule.Delete(ctx, id); err != nil {
		s.logger.Error("删除排期失败", zap.String("schedule_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

func (s *scheduleService) load(ctx context.Context, repo *repository.Repository, id string) (*model.Schedule, error) {
	sched, err := repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排期失败", zap.String("schedule_id", id), zap.Error(err))
		return nil, err
	}
	return sched, nil
}
