package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/repository"
)

// WorkAssignmentService 维修工单业务接口
type WorkAssignmentService interface {
	// 维修人员查看自己的工单
	ListMine(ctx context.Context, caller Caller) ([]model.WorkAssignment, error)
	// 主管查看自己派出的工单
	ListBySupervisor(ctx context.Context, caller Caller) ([]model.WorkAssignment, error)
	Get(ctx context.Context, id string) (*model.WorkAssignment, error)
	Create(ctx context.Context, req *dto.CreateWorkAssignmentRequest, caller Caller) (*model.WorkAssignment, error)
	// 执行人更新状态，并回写投诉状态；返回的投诉在已被删除时为 nil
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateWorkStatusRequest, caller Caller) (*model.WorkAssignment, *model.Complaint, error)
	Update(ctx context.Context, id string, req *dto.UpdateWorkAssignmentRequest, caller Caller) (*model.WorkAssignment, error)
	Delete(ctx context.Context, id string, caller Caller) error
	// 导出调用方工单的 iCalendar 日历
	Calendar(ctx context.Context, caller Caller) ([]byte, error)
}

type workAssignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWorkAssignmentService 创建 WorkAssignmentService 实例
func NewWorkAssignmentService(repo *repository.Repository, logger *zap.Logger) WorkAssignmentService {
	return &workAssignmentService{repo: repo, logger: logger}
}

func (s *workAssignmentService) ListMine(ctx context.Context, caller Caller) ([]model.WorkAssignment, error) {
	if err := caller.require(model.RoleSupport); err != nil {
		return nil, err
	}
	list, err := s.repo.WorkAssignment.ListByAssignee(ctx, caller.ID)
	if err != nil {
		s.logger.Error("查询我的工单失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *workAssignmentService) ListBySupervisor(ctx context.Context, caller Caller) ([]model.WorkAssignment, error) {
	if err := caller.require(model.RoleSupervisor); err != nil {
		return nil, err
	}
	list, err := s.repo.WorkAssignment.ListByAssigner(ctx, caller.ID)
	if err != nil {
		s.logger.Error("查询派出工单失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *workAssignmentService) Get(ctx context.Context, id string) (*model.WorkAssignment, error) {
	return s.load(ctx, s.repo, id)
}

func (s *workAssignmentService) Create(ctx context.Context, req *dto.CreateWorkAssignmentRequest, caller Caller) (*model.WorkAssignment, error) {
	if err := caller.require(model.RoleSupervisor); err != nil {
		return nil, err
	}

	c, err := s.repo.Complaint.GetByID(ctx, req.ComplaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		s.logger.Error("查询投诉失败", zap.Error(err))
		return nil, err
	}
	if err := s.checkAssignee(ctx, req.AssignedTo); err != nil {
		return nil, err
	}

	roadName := req.RoadName
	if roadName == "" {
		roadName = c.RoadName
	}
	location := req.Location
	if location == "" {
		location = c.Address
	}
	priority := req.Priority
	if priority == "" {
		priority = model.WorkPriorityMedium
	}

	wa := &model.WorkAssignment{
		ComplaintID:     c.ComplaintID,
		AssignedTo:      req.AssignedTo,
		AssignedBy:      caller.ID,
		WorkDescription: req.WorkDescription,
		RoadName:        roadName,
		Location:        location,
		Deadline:        req.Deadline.UTC(),
		Status:          model.WorkPending,
		Priority:        priority,
		Notes:           req.Notes,
		AssignedAt:      time.Now().UTC(),
	}
	if err := s.repo.WorkAssignment.Create(ctx, wa); err != nil {
		s.logger.Error("创建工单失败", zap.Error(err))
		return nil, err
	}
	return wa, nil
}

// ════════════════════════════════════════════════════════════
// UpdateStatus 工单状态回写投诉
// ════════════════════════════════════════════════════════════

func (s *workAssignmentService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateWorkStatusRequest, caller Caller) (*model.WorkAssignment, *model.Complaint, error) {
	wa, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, nil, err
	}
	if wa.AssignedTo != caller.ID {
		return nil, nil, ErrNotAssignee
	}

	now := time.Now().UTC()
	fromStatus := wa.Status
	wa.Status = req.Status
	fields := []string{"status"}
	if req.Notes != nil {
		wa.Notes = *req.Notes
		fields = append(fields, "notes")
	}

	// 首次进入 in-progress / completed 时打时间戳并回写投诉，重复进入不再回写
	var push func(c *model.Complaint) []string
	switch req.Status {
	case model.WorkInProgress:
		wa.SupervisorNotified = true
		fields = append(fields, "supervisor_notified")
		if wa.StartedAt == nil {
			wa.StartedAt = &now
			fields = append(fields, "started_at")
			push = func(c *model.Complaint) []string {
				c.Status = model.ComplaintInProgress
				c.SupervisorNotified = true
				return []string{"status", "supervisor_notified"}
			}
		}
	case model.WorkCompleted:
		wa.SupervisorNotified = true
		fields = append(fields, "supervisor_notified")
		if wa.CompletedAt == nil {
			wa.CompletedAt = &now
			fields = append(fields, "completed_at")
			push = func(c *model.Complaint) []string {
				c.Status = model.ComplaintCompleted
				c.DateCompleted = &now
				c.SupervisorNotified = true
				return []string{"status", "date_completed", "supervisor_notified"}
			}
		}
	}

	var complaint *model.Complaint
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.WorkAssignment.Update(ctx, wa, fields...); err != nil {
			return err
		}

		c, err := tx.Complaint.GetByID(ctx, wa.ComplaintID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("工单关联的投诉已不存在", zap.String("complaint_id", wa.ComplaintID))
				return nil
			}
			return err
		}
		complaint = c
		if push == nil {
			return nil
		}
		prev := c.Status
		if err := tx.Complaint.Update(ctx, c, push(c)...); err != nil {
			return err
		}
		return recordActivity(ctx, tx, c.ComplaintID, model.ActivityWorkStatus, prev, c.Status, caller.ID,
			fmt.Sprintf("工单 %s: %s → %s", wa.WorkAssignmentID, fromStatus, wa.Status))
	})
	if err != nil {
		s.logger.Error("更新工单状态失败", zap.String("work_assignment_id", id), zap.Error(err))
		return nil, nil, err
	}
	return wa, complaint, nil
}

func (s *workAssignmentService) Update(ctx context.Context, id string, req *dto.UpdateWorkAssignmentRequest, caller Caller) (*model.WorkAssignment, error) {
	wa, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if wa.AssignedBy != caller.ID {
		return nil, ErrNotAssigner
	}

	var fields []string
	if req.AssignedTo != nil && *req.AssignedTo != wa.AssignedTo {
		if err := s.checkAssignee(ctx, *req.AssignedTo); err != nil {
			return nil, err
		}
		wa.AssignedTo = *req.AssignedTo
		fields = append(fields, "assigned_to")
	}
	if req.WorkDescription != nil {
		wa.WorkDescription = *req.WorkDescription
		fields = append(fields, "work_description")
	}
	if req.Deadline != nil {
		wa.Deadline = req.Deadline.UTC()
		fields = append(fields, "deadline")
	}
	if req.Priority != nil {
		wa.Priority = *req.Priority
		fields = append(fields, "priority")
	}
	if req.Notes != nil {
		wa.Notes = *req.Notes
		fields = append(fields, "notes")
	}
	if len(fields) == 0 {
		return wa, nil
	}

	if err := s.repo.WorkAssignment.Update(ctx, wa, fields...); err != nil {
		s.logger.Error("更新工单失败", zap.String("work_assignment_id", id), zap.Error(err))
		return nil, err
	}
	return wa, nil
}

func (s *workAssignmentService) Delete(ctx context.Context, id string, caller Caller) error {
	wa, err := s.load(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if wa.AssignedBy != caller.ID {
		return ErrNotAssigner
	}
	if err := s.repo.WorkAssignment.Delete(ctx, id); err != nil {
		s.logger.Error("删除工单失败", zap.String("work_assignment_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// Calendar 工单截止日导出为 iCalendar
// ════════════════════════════════════════════════════════════

func (s *workAssignmentService) Calendar(ctx context.Context, caller Caller) ([]byte, error) {
	var (
		list []model.WorkAssignment
		err  error
	)
	switch caller.Role {
	case model.RoleSupport:
		list, err = s.repo.WorkAssignment.ListByAssignee(ctx, caller.ID)
	case model.RoleSupervisor:
		list, err = s.repo.WorkAssignment.ListByAssigner(ctx, caller.ID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		s.logger.Error("查询工单失败", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//road-repair//work-assignments//ZH")
	cal.SetName("维修工单")

	for i := range list {
		wa := &list[i]
		event := cal.AddEvent(wa.WorkAssignmentID + "@road-repair")
		event.SetDtStampTime(wa.UpdatedAt)
		event.SetCreatedTime(wa.AssignedAt)
		// 截止日当天的一小时提醒块
		event.SetStartAt(wa.Deadline.Add(-time.Hour))
		event.SetEndAt(wa.Deadline)
		event.SetSummary(fmt.Sprintf("[%s] %s", wa.Priority, wa.RoadName))
		event.SetLocation(wa.Location)
		event.SetDescription(fmt.Sprintf("%s\n状态: %s", wa.WorkDescription, wa.Status))
	}

	return []byte(cal.Serialize()), nil
}

// ── 辅助函数 ──

func (s *workAssignmentService) load(ctx context.Context, repo *repository.Repository, id string) (*model.WorkAssignment, error) {
	wa, err := repo.WorkAssignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkAssignmentNotFound
		}
		s.logger.Error("查询工单失败", zap.String("work_assignment_id", id), zap.Error(err))
		return nil, err
	}
	return wa, nil
}

// checkAssignee 执行人必须是维修人员
func (s *workAssignmentService) checkAssignee(ctx context.Context, userID string) error {
	u, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSupportPersonInvalid
		}
		s.logger.Error("查询维修人员失败", zap.Error(err))
		return err
	}
	if u.Role != model.RoleSupport {
		return ErrSupportPersonInvalid
	}
	return nil
}
