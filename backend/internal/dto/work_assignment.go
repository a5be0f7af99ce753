package dto

import (
	"time"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ── 工单模块 DTO ──

// CreateWorkAssignmentRequest 主管手工创建工单
type CreateWorkAssignmentRequest struct {
	ComplaintID     string    `json:"complaint_id"     binding:"required,uuid"`
	AssignedTo      string    `json:"assigned_to"      binding:"required,uuid"`
	WorkDescription string    `json:"work_description" binding:"required,max=5000"`
	RoadName        string    `json:"road_name"        binding:"omitempty,max=200"`
	Location        string    `json:"location"         binding:"omitempty,max=300"`
	Deadline        time.Time `json:"deadline"         binding:"required"`
	Priority        string    `json:"priority"         binding:"omitempty,oneof=low medium high"`
	Notes           string    `json:"notes"`
}

// UpdateWorkAssignmentRequest 派单人修改工单
type UpdateWorkAssignmentRequest struct {
	AssignedTo      *string    `json:"assigned_to"      binding:"omitempty,uuid"`
	WorkDescription *string    `json:"work_description" binding:"omitempty,max=5000"`
	Deadline        *time.Time `json:"deadline"`
	Priority        *string    `json:"priority"         binding:"omitempty,oneof=low medium high"`
	Notes           *string    `json:"notes"`
}

// UpdateWorkStatusRequest 执行人更新工单状态
type UpdateWorkStatusRequest struct {
	Status string  `json:"status" binding:"required,oneof=pending in-progress completed"`
	Notes  *string `json:"notes"`
}

// WorkStatusResponse 状态更新结果，附带回写后的投诉
type WorkStatusResponse struct {
	WorkAssignment *model.WorkAssignment `json:"work_assignment"`
	Complaint      *model.Complaint      `json:"complaint"`
}
