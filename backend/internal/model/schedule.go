package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProgressUpdate 排期进度记录
type ProgressUpdate struct {
	Date      time.Time `json:"date"`
	Note      string    `json:"note"`
	UpdatedBy string    `json:"updated_by"`
}

// Schedule 施工排期表，对应 schedules
type Schedule struct {
	ScheduleID              string                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	ComplaintID             string                              `gorm:"type:uuid;not null"                             json:"complaint_id"`
	AssignedDate            time.Time                           `gorm:"not null"                                       json:"assigned_date"`
	EstimatedCompletionDate time.Time                           `gorm:"not null"                                       json:"estimated_completion_date"`
	ActualCompletionDate    *time.Time                          `json:"actual_completion_date,omitempty"`
	ResourcesAllocated      datatypes.JSONType[ResourceBundle]  `gorm:"type:jsonb;not null"                            json:"resources_allocated"`
	Status                  string                              `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	SupervisorID            string                              `gorm:"type:uuid;not null"                             json:"supervisor_id"`
	TeamAssigned            datatypes.JSONSlice[string]         `gorm:"type:jsonb;not null"                            json:"team_assigned"`
	ProgressUpdates         datatypes.JSONSlice[ProgressUpdate] `gorm:"type:jsonb;not null"                            json:"progress_updates"`
	RescheduledFrom         *time.Time                          `json:"rescheduled_from,omitempty"`
	ReschedulingReason      string                              `gorm:"type:text;not null;default:''"                  json:"rescheduling_reason,omitempty"`
	Timestamps

	// 关联
	Complaint *Complaint `gorm:"foreignKey:ComplaintID;references:ComplaintID" json:"complaint,omitempty"`
}

func (Schedule) TableName() string { return "schedules" }

// ComplaintStatus 排期状态折算到投诉状态的三态映射
func (s *Schedule) ComplaintStatus() string {
	switch s.Status {
	case ScheduleScheduled:
		return ComplaintScheduled
	case ScheduleInProgress:
		return ComplaintInProgress
	case ScheduleCompleted:
		return ComplaintCompleted
	default:
		return ComplaintPending
	}
}
