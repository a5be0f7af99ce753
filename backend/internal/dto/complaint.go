package dto

import (
	"time"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ── 投诉模块 DTO ──

// LocationInput 投诉位置
type LocationInput struct {
	Address   string   `json:"address"   binding:"required,max=300"`
	Latitude  *float64 `json:"latitude"  binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
}

// CreateComplaintRequest 提交投诉请求
type CreateComplaintRequest struct {
	RoadName    string        `json:"road_name"   binding:"required,max=200"`
	Description string        `json:"description" binding:"required,max=5000"`
	PhotoURL    string        `json:"photo_url"   binding:"omitempty,url,max=500"`
	Location    LocationInput `json:"location"    binding:"required"`
}

// UpdateComplaintRequest 更新投诉描述信息请求（仅描述性字段）
type UpdateComplaintRequest struct {
	RoadName    *string        `json:"road_name"   binding:"omitempty,max=200"`
	Description *string        `json:"description" binding:"omitempty,max=5000"`
	PhotoURL    *string        `json:"photo_url"   binding:"omitempty,max=500"`
	Location    *LocationInput `json:"location"`
}

// ComplaintListRequest 投诉列表查询参数
type ComplaintListRequest struct {
	Status   string `form:"status"    binding:"omitempty,oneof=pending scheduled in-progress completed rejected"`
	Severity string `form:"severity"  binding:"omitempty,oneof=low medium high"`
	AreaType string `form:"area_type" binding:"omitempty,oneof=commercial busy deserted residential"`
}

// AssessComplaintRequest 主管评估请求
// Severity 缺省时优先级取默认值 5，AreaType 缺省时沿用投诉当前区域类型
type AssessComplaintRequest struct {
	Severity         string                `json:"severity"          binding:"omitempty,oneof=low medium high"`
	AreaType         string                `json:"area_type"         binding:"omitempty,oneof=commercial busy deserted residential"`
	ResourceEstimate *model.ResourceBundle `json:"resource_estimate"`
	Notes            *string               `json:"notes"`
}

// ResourceDecisionRequest 管理员审批/驳回资源申请
type ResourceDecisionRequest struct {
	ResourcesAllocated *model.ResourceBundle `json:"resources_allocated"`
	Notes              string                `json:"notes" binding:"omitempty,max=2000"`
}

// ScheduleComplaintRequest 主管排期请求
type ScheduleComplaintRequest struct {
	ScheduledDate   *time.Time `json:"scheduled_date"`
	SupportPersonID string     `json:"support_person_id" binding:"omitempty,uuid"`
	Notes           *string    `json:"notes"`
	WorkDescription string     `json:"work_description"  binding:"omitempty,max=5000"`
	Deadline        *time.Time `json:"deadline"`
	Priority        string     `json:"priority"          binding:"omitempty,oneof=low medium high"`
}

// ConfirmCompletionRequest 主管确认完工请求
type ConfirmCompletionRequest struct {
	Confirmed bool    `json:"confirmed"`
	Notes     *string `json:"notes"`
}
