package model

import "time"

// Timestamps 通用时间戳字段（所有业务模型嵌入）
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── 角色 ──

const (
	RoleResident      = "resident"
	RoleClerk         = "clerk"
	RoleSupervisor    = "supervisor"
	RoleAdministrator = "administrator"
	RoleSupport       = "support"
	RoleMayor         = "mayor"
)

// ValidRole 判断角色是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleResident, RoleClerk, RoleSupervisor, RoleAdministrator, RoleSupport, RoleMayor:
		return true
	}
	return false
}

// ── 严重程度 / 区域类型 ──

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	AreaCommercial  = "commercial"
	AreaBusy        = "busy"
	AreaDeserted    = "deserted"
	AreaResidential = "residential"
)

// ── 投诉状态 ──

const (
	ComplaintPending    = "pending"
	ComplaintScheduled  = "scheduled"
	ComplaintInProgress = "in-progress"
	ComplaintCompleted  = "completed"
	// ComplaintRejected 保留的终态，当前没有任何流转会写入
	ComplaintRejected = "rejected"
)

// ── 资源申请状态 ──

const (
	ResourceRequestNone     = "not-requested"
	ResourceRequestPending  = "pending-approval"
	ResourceRequestApproved = "approved"
	ResourceRequestRejected = "rejected"
)

// ── 工单状态 / 优先级 ──

const (
	WorkPending    = "pending"
	WorkInProgress = "in-progress"
	WorkCompleted  = "completed"

	WorkPriorityLow    = "low"
	WorkPriorityMedium = "medium"
	WorkPriorityHigh   = "high"
)

// ── 排期状态 ──

const (
	ScheduleScheduled   = "scheduled"
	ScheduleInProgress  = "in-progress"
	ScheduleCompleted   = "completed"
	ScheduleRescheduled = "rescheduled"
	ScheduleCancelled   = "cancelled"
)

// ── 资源类型 / 状态 ──

const (
	ResourceMaterial = "material"
	ResourceMachine  = "machine"
	ResourceManpower = "manpower"

	ResourceAvailable   = "available"
	ResourceInUse       = "in-use"
	ResourceMaintenance = "maintenance"
	ResourceUnavailable = "unavailable"
)
