package dto

import "github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"

// ── 复合响应 ──

// NotificationPayload 排期完成后交给通知层的联系人载荷
// Resident 与 Supervisor 在联系人缺失时为 nil，SupportPerson 未指派时为 nil
type NotificationPayload struct {
	ComplaintID   string       `json:"complaint_id"`
	ComplaintNo   string       `json:"complaint_no"`
	RoadName      string       `json:"road_name"`
	ScheduledDate string       `json:"scheduled_date"`
	Resident      *ContactInfo `json:"resident"`
	Supervisor    *ContactInfo `json:"supervisor"`
	SupportPerson *ContactInfo `json:"support_person"`
}

// ScheduleComplaintResponse 投诉排期结果
type ScheduleComplaintResponse struct {
	Complaint      *model.Complaint      `json:"complaint"`
	WorkAssignment *model.WorkAssignment `json:"work_assignment"`
	Notification   NotificationPayload   `json:"notification"`
}

// AutoScheduleResponse 自动排期结果
type AutoScheduleResponse struct {
	Message   string           `json:"message"`
	Count     int              `json:"count"`
	Skipped   []string         `json:"skipped,omitempty"` // 未通过资源校验的投诉 ID
	Schedules []model.Schedule `json:"schedules"`
}
