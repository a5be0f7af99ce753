package model

import "time"

// WorkAssignment 维修工单表，对应 work_assignments
// 确认子状态与 Complaint 各存一份，仅在投诉确认时同步
type WorkAssignment struct {
	WorkAssignmentID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"work_assignment_id"`
	ComplaintID         string     `gorm:"type:uuid;not null"                             json:"complaint_id"`
	AssignedTo          string     `gorm:"type:uuid;not null"                             json:"assigned_to"`
	AssignedBy          string     `gorm:"type:uuid;not null"                             json:"assigned_by"`
	WorkDescription     string     `gorm:"type:text;not null"                             json:"work_description"`
	RoadName            string     `gorm:"type:varchar(200);not null"                     json:"road_name"`
	Location            string     `gorm:"type:varchar(300);not null"                     json:"location"`
	Deadline            time.Time  `gorm:"not null"                                       json:"deadline"`
	Status              string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Priority            string     `gorm:"type:varchar(10);not null;default:'medium'"     json:"priority"`
	Notes               string     `gorm:"type:text;not null;default:''"                  json:"notes,omitempty"`
	AssignedAt          time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"assigned_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	SupervisorNotified  bool       `gorm:"not null;default:false"                         json:"supervisor_notified"`
	SupervisorConfirmed bool       `gorm:"not null;default:false"                         json:"supervisor_confirmed"`
	ConfirmedBy         *string    `gorm:"type:uuid"                                      json:"confirmed_by,omitempty"`
	ConfirmationDate    *time.Time `json:"confirmation_date,omitempty"`
	ConfirmationNotes   string     `gorm:"type:text;not null;default:''"                  json:"confirmation_notes,omitempty"`
	Timestamps
}

func (WorkAssignment) TableName() string { return "work_assignments" }
