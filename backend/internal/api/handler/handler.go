package handler

import "github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	Complaint      *ComplaintHandler
	WorkAssignment *WorkAssignmentHandler
	Schedule       *ScheduleHandler
	Resource       *ResourceHandler
	Report         *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth),
		Complaint:      NewComplaintHandler(svc.Complaint),
		WorkAssignment: NewWorkAssignmentHandler(svc.WorkAssignment),
		Schedule:       NewScheduleHandler(svc.Schedule),
		Resource:       NewResourceHandler(svc.Resource),
		Report:         NewReportHandler(svc.Report),
	}
}
