package model

import "time"

// 投诉流转动作
const (
	ActivityCreate          = "create"
	ActivityAssess          = "assess"
	ActivityApproveResource = "approve-resources"
	ActivityRejectResource  = "reject-resources"
	ActivitySchedule        = "schedule"
	ActivityWorkStatus      = "work-status"
	ActivityConfirm         = "confirm"
	ActivityScheduleSync    = "schedule-sync"
)

// ComplaintActivity 投诉流转记录表，对应 complaint_activities（纯审计日志）
type ComplaintActivity struct {
	ActivityID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	ComplaintID string    `gorm:"type:uuid;not null"                             json:"complaint_id"`
	Action      string    `gorm:"type:varchar(30);not null"                      json:"action"`
	FromStatus  string    `gorm:"type:varchar(20);not null;default:''"           json:"from_status,omitempty"`
	ToStatus    string    `gorm:"type:varchar(20);not null;default:''"           json:"to_status,omitempty"`
	OperatorID  string    `gorm:"type:uuid;not null"                             json:"operator_id"`
	Note        string    `gorm:"type:text;not null;default:''"                  json:"note,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (ComplaintActivity) TableName() string { return "complaint_activities" }
