package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/config"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/repository"
)

// ComplaintService 投诉生命周期业务接口
type ComplaintService interface {
	// 居民/文员提交投诉
	Create(ctx context.Context, req *dto.CreateComplaintRequest, caller Caller) (*model.Complaint, error)
	Get(ctx context.Context, id string, caller Caller) (*model.Complaint, error)
	// 按角色可见范围列出投诉
	List(ctx context.Context, req *dto.ComplaintListRequest, caller Caller) ([]model.Complaint, error)
	// 修改描述性字段
	Update(ctx context.Context, id string, req *dto.UpdateComplaintRequest, caller Caller) (*model.Complaint, error)
	Delete(ctx context.Context, id string, caller Caller) error

	// 主管评估：计算优先级并按估算发起资源申请
	Assess(ctx context.Context, id string, req *dto.AssessComplaintRequest, caller Caller) (*model.Complaint, error)
	// 管理员审批资源申请
	ApproveResources(ctx context.Context, id string, req *dto.ResourceDecisionRequest, caller Caller) (*model.Complaint, error)
	// 管理员驳回资源申请
	RejectResources(ctx context.Context, id string, req *dto.ResourceDecisionRequest, caller Caller) (*model.Complaint, error)
	// 主管排期，指定维修人员时同时生成工单
	Schedule(ctx context.Context, id string, req *dto.ScheduleComplaintRequest, caller Caller) (*dto.ScheduleComplaintResponse, error)
	// 主管确认完工，同步到对应工单
	ConfirmCompletion(ctx context.Context, id string, req *dto.ConfirmCompletionRequest, caller Caller) (*model.Complaint, error)

	ListActivities(ctx context.Context, id string, caller Caller) ([]model.ComplaintActivity, error)
}

type complaintService struct {
	repo     *repository.Repository
	cfg      *config.ScheduleConfig
	notifier Notifier
	logger   *zap.Logger
}

// NewComplaintService 创建 ComplaintService 实例
func NewComplaintService(
	repo *repository.Repository,
	cfg *config.ScheduleConfig,
	notifier Notifier,
	logger *zap.Logger,
) ComplaintService {
	return &complaintService{repo: repo, cfg: cfg, notifier: notifier, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 基础 CRUD
// ════════════════════════════════════════════════════════════

func (s *complaintService) Create(ctx context.Context, req *dto.CreateComplaintRequest, caller Caller) (*model.Complaint, error) {
	if err := caller.require(model.RoleResident, model.RoleClerk); err != nil {
		return nil, err
	}

	c := &model.Complaint{
		RoadName:              strings.TrimSpace(req.RoadName),
		Description:           strings.TrimSpace(req.Description),
		PhotoURL:              req.PhotoURL,
		Address:               strings.TrimSpace(req.Location.Address),
		Latitude:              req.Location.Latitude,
		Longitude:             req.Location.Longitude,
		Severity:              model.SeverityLow,
		AreaType:              model.AreaResidential,
		Priority:              defaultPriority,
		Status:                model.ComplaintPending,
		SubmittedBy:           caller.ID,
		SubmitterRole:         caller.Role,
		DateRaised:            time.Now().UTC(),
		ResourceRequestStatus: model.ResourceRequestNone,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Complaint.Create(ctx, c); err != nil {
			return err
		}
		return recordActivity(ctx, tx, c.ComplaintID, model.ActivityCreate, "", c.Status, caller.ID, "")
	})
	if err != nil {
		s.logger.Error("创建投诉失败", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *complaintService) Get(ctx context.Context, id string, caller Caller) (*model.Complaint, error) {
	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if caller.isResident() && c.SubmittedBy != caller.ID {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *complaintService) List(ctx context.Context, req *dto.ComplaintListRequest, caller Caller) ([]model.Complaint, error) {
	filter := repository.ComplaintFilter{
		Status:   req.Status,
		Severity: req.Severity,
		AreaType: req.AreaType,
	}
	switch caller.Role {
	case model.RoleResident:
		filter.SubmittedBy = caller.ID
	case model.RoleSupervisor:
		filter.SupervisorScope = caller.ID
	}

	list, err := s.repo.Complaint.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询投诉列表失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *complaintService) Update(ctx context.Context, id string, req *dto.UpdateComplaintRequest, caller Caller) (*model.Complaint, error) {
	if err := caller.require(model.RoleResident, model.RoleClerk, model.RoleSupervisor, model.RoleAdministrator); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if caller.isResident() && c.SubmittedBy != caller.ID {
		return nil, ErrForbidden
	}

	var fields []string
	if req.RoadName != nil {
		c.RoadName = strings.TrimSpace(*req.RoadName)
		fields = append(fields, "road_name")
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
		fields = append(fields, "description")
	}
	if req.PhotoURL != nil {
		c.PhotoURL = *req.PhotoURL
		fields = append(fields, "photo_url")
	}
	if req.Location != nil {
		c.Address = strings.TrimSpace(req.Location.Address)
		c.Latitude = req.Location.Latitude
		c.Longitude = req.Location.Longitude
		fields = append(fields, "address", "latitude", "longitude")
	}
	if len(fields) == 0 {
		return c, nil
	}

	if err := s.repo.Complaint.Update(ctx, c, fields...); err != nil {
		s.logger.Error("更新投诉失败", zap.String("complaint_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *complaintService) Delete(ctx context.Context, id string, caller Caller) error {
	if err := caller.require(model.RoleAdministrator, model.RoleSupervisor); err != nil {
		return err
	}
	if _, err := s.load(ctx, s.repo, id); err != nil {
		return err
	}
	if err := s.repo.Complaint.Delete(ctx, id); err != nil {
		s.logger.Error("删除投诉失败", zap.String("complaint_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 评估与资源审批
// ════════════════════════════════════════════════════════════

func (s *complaintService) Assess(ctx context.Context, id string, req *dto.AssessComplaintRequest, caller Caller) (*model.Complaint, error) {
	if err := caller.require(model.RoleSupervisor); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	areaType := req.AreaType
	if areaType == "" {
		areaType = c.AreaType
	}
	if req.Severity != "" {
		c.Severity = req.Severity
	}
	c.AreaType = areaType
	c.Priority = ComputePriority(req.Severity, areaType)

	var estimate model.ResourceBundle
	if req.ResourceEstimate != nil {
		estimate = *req.ResourceEstimate
	}
	c.ResourceEstimate = datatypes.NewJSONType(estimate)
	if estimate.RequestsResources() {
		c.ResourceRequestStatus = model.ResourceRequestPending
	} else {
		c.ResourceRequestStatus = model.ResourceRequestNone
	}

	c.SupervisorID = &caller.ID
	fields := []string{"severity", "area_type", "priority", "resource_estimate", "resource_request_status", "supervisor_id"}
	if req.Notes != nil {
		c.SupervisorNotes = *req.Notes
		fields = append(fields, "supervisor_notes")
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Complaint.Update(ctx, c, fields...); err != nil {
			return err
		}
		return recordActivity(ctx, tx, c.ComplaintID, model.ActivityAssess, c.Status, c.Status, caller.ID, c.ResourceRequestStatus)
	})
	if err != nil {
		s.logger.Error("评估投诉失败", zap.String("complaint_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *complaintService) ApproveResources(ctx context.Context, id string, req *dto.ResourceDecisionRequest, caller Caller) (*model.Complaint, error) {
	return s.decideResources(ctx, id, req, caller, true)
}

func (s *complaintService) RejectResources(ctx context.Context, id string, req *dto.ResourceDecisionRequest, caller Caller) (*model.Complaint, error) {
	return s.decideResources(ctx, id, req, caller, false)
}

// decideResources 审批/驳回共用流程；两者都不改变投诉主状态
func (s *complaintService) decideResources(ctx context.Context, id string, req *dto.ResourceDecisionRequest, caller Caller, approve bool) (*model.Complaint, error) {
	if err := caller.require(model.RoleAdministrator); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if c.ResourceRequestStatus != model.ResourceRequestPending {
		return nil, ErrNoPendingRequest
	}

	now := time.Now().UTC()
	c.AdminNotes = req.Notes
	c.ApprovedBy = &caller.ID
	c.ApprovalDate = &now
	fields := []string{"resource_request_status", "admin_notes", "approved_by", "approval_date"}

	action := model.ActivityRejectResource
	if approve {
		action = model.ActivityApproveResource
		c.ResourceRequestStatus = model.ResourceRequestApproved
		allocation := c.ResourceEstimate.Data()
		if req.ResourcesAllocated != nil {
			allocation = *req.ResourcesAllocated
		}
		c.ResourcesAllocated = datatypes.NewJSONType(allocation)
		fields = append(fields, "resources_allocated")
	} else {
		c.ResourceRequestStatus = model.ResourceRequestRejected
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Complaint.Update(ctx, c, fields...); err != nil {
			return err
		}
		return recordActivity(ctx, tx, c.ComplaintID, action, c.Status, c.Status, caller.ID, req.Notes)
	})
	if err != nil {
		s.logger.Error("处理资源申请失败", zap.String("complaint_id", id), zap.Bool("approve", approve), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// ════════════════════════════════════════════════════════════
// 排期
// ════════════════════════════════════════════════════════════

func (s *complaintService) Schedule(ctx context.Context, id string, req *dto.ScheduleComplaintRequest, caller Caller) (*dto.ScheduleComplaintResponse, error) {
	if err := caller.require(model.RoleSupervisor); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if c.SupervisorID == nil || *c.SupervisorID == "" {
		return nil, ErrNotAssessed
	}

	// 1. 校验维修人员
	var supportPerson *model.User
	if req.SupportPersonID != "" {
		supportPerson, err = s.repo.User.GetByID(ctx, req.SupportPersonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSupportPersonInvalid
			}
			s.logger.Error("查询维修人员失败", zap.Error(err))
			return nil, err
		}
		if supportPerson.Role != model.RoleSupport {
			return nil, ErrSupportPersonInvalid
		}
	}

	// 2. 更新投诉
	now := time.Now().UTC()
	scheduledDate := now
	if req.ScheduledDate != nil {
		scheduledDate = req.ScheduledDate.UTC()
	}
	fromStatus := c.Status
	c.Status = model.ComplaintScheduled
	c.ScheduledBy = &caller.ID
	c.DateScheduled = &scheduledDate
	fields := []string{"status", "scheduled_by", "date_scheduled"}
	if supportPerson != nil {
		c.AssignedSupportPerson = &supportPerson.UserID
		fields = append(fields, "assigned_support_person")
	}
	if req.Notes != nil {
		c.SupervisorNotes = *req.Notes
		fields = append(fields, "supervisor_notes")
	}

	// 3. 生成工单
	var wa *model.WorkAssignment
	if supportPerson != nil {
		wa = s.buildAssignment(c, supportPerson.UserID, req, caller.ID, now)
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Complaint.Update(ctx, c, fields...); err != nil {
			return err
		}
		if wa != nil {
			if err := tx.WorkAssignment.Create(ctx, wa); err != nil {
				return err
			}
		}
		return recordActivity(ctx, tx, c.ComplaintID, model.ActivitySchedule, fromStatus, c.Status, caller.ID, "")
	})
	if err != nil {
		s.logger.Error("投诉排期失败", zap.String("complaint_id", id), zap.Error(err))
		return nil, err
	}

	// 4. 组装通知载荷
	payload := dto.NotificationPayload{
		ComplaintID:   c.ComplaintID,
		ComplaintNo:   c.ComplaintNo,
		RoadName:      c.RoadName,
		ScheduledDate: scheduledDate.Format(time.RFC3339),
		Resident:      s.contact(ctx, c.SubmittedBy),
		Supervisor:    s.contact(ctx, *c.SupervisorID),
	}
	if supportPerson != nil {
		payload.SupportPerson = toContact(supportPerson)
	}
	if s.notifier != nil {
		s.notifier.ComplaintScheduled(ctx, &payload)
	}

	return &dto.ScheduleComplaintResponse{
		Complaint:      c,
		WorkAssignment: wa,
		Notification:   payload,
	}, nil
}

// buildAssignment 排期时生成的工单，未提供的字段回落到投诉信息
func (s *complaintService) buildAssignment(c *model.Complaint, assignee string, req *dto.ScheduleComplaintRequest, assigner string, now time.Time) *model.WorkAssignment {
	description := req.WorkDescription
	if description == "" {
		description = c.Description
	}
	deadline := now.AddDate(0, 0, s.deadlineDays())
	if req.Deadline != nil {
		deadline = req.Deadline.UTC()
	}
	priority := req.Priority
	if priority == "" {
		priority = c.Severity
	}
	if priority == "" {
		priority = model.WorkPriorityMedium
	}
	var notes string
	if req.Notes != nil {
		notes = *req.Notes
	}

	return &model.WorkAssignment{
		ComplaintID:     c.ComplaintID,
		AssignedTo:      assignee,
		AssignedBy:      assigner,
		WorkDescription: description,
		RoadName:        c.RoadName,
		Location:        c.Address,
		Deadline:        deadline,
		Status:          model.WorkPending,
		Priority:        priority,
		Notes:           notes,
		AssignedAt:      now,
	}
}

func (s *complaintService) deadlineDays() int {
	if s.cfg == nil || s.cfg.DefaultDeadlineDays <= 0 {
		return 7
	}
	return s.cfg.DefaultDeadlineDays
}

// contact 查询联系人，查询失败只记日志
func (s *complaintService) contact(ctx context.Context, userID string) *dto.ContactInfo {
	if userID == "" {
		return nil
	}
	u, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询联系人失败", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	return toContact(u)
}

func toContact(u *model.User) *dto.ContactInfo {
	return &dto.ContactInfo{ID: u.UserID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// ════════════════════════════════════════════════════════════
// 完工确认
// ════════════════════════════════════════════════════════════

func (s *complaintService) ConfirmCompletion(ctx context.Context, id string, req *dto.ConfirmCompletionRequest, caller Caller) (*model.Complaint, error) {
	if err := caller.require(model.RoleSupervisor); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c.SupervisorConfirmed = req.Confirmed
	c.ConfirmedBy = &caller.ID
	c.ConfirmationDate = &now
	fields := []string{"supervisor_confirmed", "confirmed_by", "confirmation_date"}
	if req.Notes != nil {
		c.ConfirmationNotes = *req.Notes
		fields = append(fields, "confirmation_notes")
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Complaint.Update(ctx, c, fields...); err != nil {
			return err
		}

		wa, err := tx.WorkAssignment.GetByComplaint(ctx, c.ComplaintID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if wa != nil {
			wa.SupervisorConfirmed = c.SupervisorConfirmed
			wa.ConfirmedBy = c.ConfirmedBy
			wa.ConfirmationDate = c.ConfirmationDate
			if req.Notes != nil {
				wa.ConfirmationNotes = *req.Notes
			}
			if err := tx.WorkAssignment.Update(ctx, wa, fields...); err != nil {
				return err
			}
		}

		note := "未确认"
		if req.Confirmed {
			note = "已确认"
		}
		return recordActivity(ctx, tx, c.ComplaintID, model.ActivityConfirm, c.Status, c.Status, caller.ID, note)
	})
	if err != nil {
		s.logger.Error("确认完工失败", zap.String("complaint_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *complaintService) ListActivities(ctx context.Context, id string, caller Caller) ([]model.ComplaintActivity, error) {
	if _, err := s.Get(ctx, id, caller); err != nil {
		return nil, err
	}
	list, err := s.repo.Activity.ListByComplaint(ctx, id)
	if err != nil {
		s.logger.Error("查询投诉流转记录失败", zap.String("complaint_id", id), zap.Error(err))
		return nil, err
	}
	return list, nil
}

// ── 辅助函数 ──

func (s *complaintService) load(ctx context.Context, repo *repository.Repository, id string) (*model.Complaint, error) {
	c, err := repo.Complaint.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		s.logger.Error("查询投诉失败", zap.String("complaint_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// recordActivity 写入一条投诉流转记录，与业务写入处于同一事务
func recordActivity(ctx context.Context, tx *repository.Repository, complaintID, action, from, to, operator, note string) error {
	return tx.Activity.Create(ctx, &model.ComplaintActivity{
		ComplaintID: complaintID,
		Action:      action,
		FromStatus:  from,
		ToStatus:    to,
		OperatorID:  operator,
		Note:        note,
	})
}
