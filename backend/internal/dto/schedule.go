package dto

import (
	"time"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ── 排期模块 DTO ──

// ScheduleListRequest 排期列表查询参数
type ScheduleListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=scheduled in-progress completed rescheduled cancelled"`
}

// CreateScheduleRequest 主管手工创建排期
type CreateScheduleRequest struct {
	ComplaintID             string                `json:"complaint_id"              binding:"required,uuid"`
	AssignedDate            time.Time             `json:"assigned_date"             binding:"required"`
	EstimatedCompletionDate time.Time             `json:"estimated_completion_date" binding:"required,gtefield=AssignedDate"`
	ResourcesAllocated      *model.ResourceBundle `json:"resources_allocated"`
	TeamAssigned            []string              `json:"team_assigned"             binding:"omitempty,dive,uuid"`
	Status                  string                `json:"status"                    binding:"omitempty,oneof=scheduled in-progress completed rescheduled cancelled"`
}

// UpdateScheduleRequest 修改排期；AssignedDate 变化且给出原因时记录改期信息
type UpdateScheduleRequest struct {
	AssignedDate            *time.Time            `json:"assigned_date"`
	EstimatedCompletionDate *time.Time            `json:"estimated_completion_date"`
	ActualCompletionDate    *time.Time            `json:"actual_completion_date"`
	Status                  *string               `json:"status"              binding:"omitempty,oneof=scheduled in-progress completed rescheduled cancelled"`
	ResourcesAllocated      *model.ResourceBundle `json:"resources_allocated"`
	TeamAssigned            []string              `json:"team_assigned"       binding:"omitempty,dive,uuid"`
	ProgressNote            string                `json:"progress_note"       binding:"omitempty,max=2000"`
	ReschedulingReason      string                `json:"rescheduling_reason" binding:"omitempty,max=2000"`
}
