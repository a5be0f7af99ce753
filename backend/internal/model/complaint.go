package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// MaterialItem 物料需求/分配明细
type MaterialItem struct {
	ResourceID string  `json:"resource_id,omitempty"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit,omitempty"`
}

// MachineItem 机械需求/分配明细
type MachineItem struct {
	ResourceID string  `json:"resource_id,omitempty"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
}

// Manpower 人力需求
type Manpower struct {
	Workers   int `json:"workers"`
	Engineers int `json:"engineers"`
}

// ResourceBundle 资源估算与分配共用的结构（JSONB 存储）
type ResourceBundle struct {
	Materials []MaterialItem `json:"materials"`
	Machines  []MachineItem  `json:"machines"`
	Manpower  Manpower       `json:"manpower"`
}

// RequestsResources 估算中是否包含任何实际资源需求
func (b ResourceBundle) RequestsResources() bool {
	return len(b.Materials) > 0 ||
		len(b.Machines) > 0 ||
		b.Manpower.Workers > 0 ||
		b.Manpower.Engineers > 0
}

// Complaint 道路投诉表，对应 complaints
type Complaint struct {
	ComplaintID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"complaint_id"`
	ComplaintNo   string    `gorm:"type:varchar(20);not null;uniqueIndex"           json:"complaint_no"`
	RoadName      string    `gorm:"type:varchar(200);not null"                      json:"road_name"`
	Description   string    `gorm:"type:text;not null"                              json:"description"`
	PhotoURL      string    `gorm:"type:varchar(500);not null;default:''"           json:"photo_url,omitempty"`
	Address       string    `gorm:"type:varchar(300);not null"                      json:"address"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Severity      string    `gorm:"type:varchar(10);not null;default:'low'"         json:"severity"`
	AreaType      string    `gorm:"type:varchar(20);not null;default:'residential'" json:"area_type"`
	Priority      int       `gorm:"type:smallint;not null;default:5"                json:"priority"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"     json:"status"`
	SubmittedBy   string    `gorm:"type:uuid;not null"                              json:"submitted_by"`
	SubmitterRole string    `gorm:"type:varchar(20);not null"                       json:"submitter_role"`
	DateRaised    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"date_raised"`

	// 资源申请子状态
	ResourceEstimate      datatypes.JSONType[ResourceBundle] `gorm:"type:jsonb;not null"                              json:"resource_estimate"`
	ResourceRequestStatus string                             `gorm:"type:varchar(20);not null;default:'not-requested'" json:"resource_request_status"`
	ResourcesAllocated    datatypes.JSONType[ResourceBundle] `gorm:"type:jsonb;not null"                              json:"resources_allocated"`
	AdminNotes            string                             `gorm:"type:text;not null;default:''"                     json:"admin_notes,omitempty"`
	ApprovedBy            *string                            `gorm:"type:uuid"                                         json:"approved_by,omitempty"`
	ApprovalDate          *time.Time                         `json:"approval_date,omitempty"`

	// 排期子状态
	SupervisorID          *string    `gorm:"type:uuid"                     json:"supervisor_id,omitempty"`
	ScheduledBy           *string    `gorm:"type:uuid"                     json:"scheduled_by,omitempty"`
	AssignedSupportPerson *string    `gorm:"type:uuid"                     json:"assigned_support_person,omitempty"`
	DateScheduled         *time.Time `json:"date_scheduled,omitempty"`
	SupervisorNotes       string     `gorm:"type:text;not null;default:''" json:"supervisor_notes,omitempty"`

	// 完工与确认子状态
	DateCompleted       *time.Time `json:"date_completed,omitempty"`
	SupervisorNotified  bool       `gorm:"not null;default:false"        json:"supervisor_notified"`
	SupervisorConfirmed bool       `gorm:"not null;default:false"        json:"supervisor_confirmed"`
	ConfirmedBy         *string    `gorm:"type:uuid"                     json:"confirmed_by,omitempty"`
	ConfirmationDate    *time.Time `json:"confirmation_date,omitempty"`
	ConfirmationNotes   string     `gorm:"type:text;not null;default:''" json:"confirmation_notes,omitempty"`
	RejectionReason     string     `gorm:"type:text;not null;default:''" json:"rejection_reason,omitempty"`

	Timestamps
}

func (Complaint) TableName() string { return "complaints" }

// FormatComplaintNo 由序列值生成投诉编号
func FormatComplaintNo(seq int64) string {
	return fmt.Sprintf("CMP%06d", seq)
}

// EnforceCompletionInvariant 存在完工日期时状态必须为 completed
// 每次写库前调用，返回状态是否被修正
func (c *Complaint) EnforceCompletionInvariant() bool {
	if c.DateCompleted != nil && c.Status != ComplaintCompleted {
		c.Status = ComplaintCompleted
		return true
	}
	return false
}
