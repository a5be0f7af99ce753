package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ── 测试辅助 ──

type lifecycleFixture struct {
	complaints ComplaintService
	work       WorkAssignmentService
	mocks      *mockRepos
}

func setupLifecycle() *lifecycleFixture {
	complaints, mocks, _ := setupTestComplaintService()
	repo := complaints.(*complaintService).repo
	return &lifecycleFixture{
		complaints: complaints,
		work:       NewWorkAssignmentService(repo, zap.NewNop()),
		mocks:      mocks,
	}
}

// scheduled 提交、评估并排期一条投诉，返回投诉与工单
func (f *lifecycleFixture) scheduled(t *testing.T) (*model.Complaint, *model.WorkAssignment) {
	t.Helper()
	c := submitComplaint(t, f.complaints)
	assess(t, f.complaints, c.ComplaintID, &dto.AssessComplaintRequest{Severity: model.SeverityMedium})
	resp, err := f.complaints.Schedule(context.Background(), c.ComplaintID, &dto.ScheduleComplaintRequest{
		SupportPersonID: support.ID,
	}, supervisor)
	if err != nil {
		t.Fatalf("Schedule 应成功: %v", err)
	}
	return resp.Complaint, resp.WorkAssignment
}

func (f *lifecycleFixture) setStatus(t *testing.T, waID, status string) *model.WorkAssignment {
	t.Helper()
	wa, _, err := f.work.UpdateStatus(context.Background(), waID, &dto.UpdateWorkStatusRequest{Status: status}, support)
	if err != nil {
		t.Fatalf("UpdateStatus(%s) 应成功: %v", status, err)
	}
	return wa
}

// ── UpdateStatus 测试 ──

func TestWorkAssignmentService_UpdateStatus_OnlyAssignee(t *testing.T) {
	f := setupLifecycle()
	_, wa := f.scheduled(t)

	for _, caller := range []Caller{supervisor, admin, {ID: "u-support-2", Role: model.RoleSupport}} {
		_, _, err := f.work.UpdateStatus(context.Background(), wa.WorkAssignmentID,
			&dto.UpdateWorkStatusRequest{Status: model.WorkInProgress}, caller)
		if !errors.Is(err, ErrNotAssignee) {
			t.Errorf("%s: 期望 ErrNotAssignee，实际: %v", caller.ID, err)
		}
	}
	if got := f.mocks.assignments.assignments[wa.WorkAssignmentID].Status; got != model.WorkPending {
		t.Errorf("越权更新后状态不应改变，实际=%s", got)
	}
}

func TestWorkAssignmentService_UpdateStatus_NotFound(t *testing.T) {
	f := setupLifecycle()

	_, _, err := f.work.UpdateStatus(context.Background(), "missing", &dto.UpdateWorkStatusRequest{Status: model.WorkCompleted}, support)
	if !errors.Is(err, ErrWorkAssignmentNotFound) {
		t.Errorf("期望 ErrWorkAssignmentNotFound，实际: %v", err)
	}
}

func TestWorkAssignmentService_UpdateStatus_InProgressStampsOnce(t *testing.T) {
	f := setupLifecycle()
	c, wa := f.scheduled(t)

	first := f.setStatus(t, wa.WorkAssignmentID, model.WorkInProgress)
	if first.StartedAt == nil || !first.SupervisorNotified {
		t.Fatal("首次进入 in-progress 应记录开始时间并标记已通知")
	}
	stamped := *first.StartedAt

	stored := f.mocks.complaints.complaints[c.ComplaintID]
	if stored.Status != model.ComplaintInProgress || !stored.SupervisorNotified {
		t.Errorf("投诉应同步为 in-progress 且已通知，实际=%s/%v", stored.Status, stored.SupervisorNotified)
	}

	time.Sleep(2 * time.Millisecond)
	f.setStatus(t, wa.WorkAssignmentID, model.WorkPending)
	again := f.setStatus(t, wa.WorkAssignmentID, model.WorkInProgress)
	if !again.StartedAt.Equal(stamped) {
		t.Errorf("重复进入 in-progress 不应重新记录开始时间: %v → %v", stamped, *again.StartedAt)
	}
	if !again.SupervisorNotified {
		t.Error("重复进入 in-progress 仍应标记已通知")
	}
}

func TestWorkAssignmentService_UpdateStatus_CompletedStampsOnce(t *testing.T) {
	f := setupLifecycle()
	c, wa := f.scheduled(t)

	done := f.setStatus(t, wa.WorkAssignmentID, model.WorkCompleted)
	if done.CompletedAt == nil || !done.SupervisorNotified {
		t.Fatal("首次进入 completed 应记录完成时间并标记已通知")
	}
	stamped := *done.CompletedAt

	stored := f.mocks.complaints.complaints[c.ComplaintID]
	if stored.Status != model.ComplaintCompleted || stored.DateCompleted == nil || !stored.SupervisorNotified {
		t.Errorf("投诉应同步为 completed 并记录完工日期，实际=%s", stored.Status)
	}

	time.Sleep(2 * time.Millisecond)
	again := f.setStatus(t, wa.WorkAssignmentID, model.WorkCompleted)
	if !again.CompletedAt.Equal(stamped) {
		t.Error("重复进入 completed 不应重新记录完成时间")
	}
}

func TestWorkAssignmentService_UpdateStatus_NotesReplaced(t *testing.T) {
	f := setupLifecycle()
	_, wa := f.scheduled(t)

	got, complaint, err := f.work.UpdateStatus(context.Background(), wa.WorkAssignmentID, &dto.UpdateWorkStatusRequest{
		Status: model.WorkInProgress, Notes: strPtr("已进场"),
	}, support)
	if err != nil {
		t.Fatalf("UpdateStatus 应成功: %v", err)
	}
	if got.Notes != "已进场" {
		t.Errorf("期望备注=已进场，实际=%s", got.Notes)
	}
	if complaint == nil || complaint.Status != model.ComplaintInProgress {
		t.Error("应返回回写后的投诉")
	}
}

// ── Create / Update / Delete 测试 ──

func TestWorkAssignmentService_Create_DefaultsFromComplaint(t *testing.T) {
	f := setupLifecycle()
	c := submitComplaint(t, f.complaints)

	wa, err := f.work.Create(context.Background(), &dto.CreateWorkAssignmentRequest{
		ComplaintID:     c.ComplaintID,
		AssignedTo:      support.ID,
		WorkDescription: "补洞",
		Deadline:        time.Now().Add(48 * time.Hour),
	}, supervisor)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if wa.Priority != model.WorkPriorityMedium || wa.RoadName != c.RoadName || wa.Location != c.Address {
		t.Errorf("默认值不符: %+v", wa)
	}

	_, err = f.work.Create(context.Background(), &dto.CreateWorkAssignmentRequest{
		ComplaintID: "missing", AssignedTo: support.ID, WorkDescription: "x", Deadline: time.Now(),
	}, supervisor)
	if !errors.Is(err, ErrComplaintNotFound) {
		t.Errorf("期望 ErrComplaintNotFound，实际: %v", err)
	}
}

func TestWorkAssignmentService_UpdateDelete_OnlyAssigner(t *testing.T) {
	f := setupLifecycle()
	_, wa := f.scheduled(t)
	otherSup := Caller{ID: "u-sup-2", Role: model.RoleSupervisor}

	if _, err := f.work.Update(context.Background(), wa.WorkAssignmentID, &dto.UpdateWorkAssignmentRequest{Notes: strPtr("x")}, otherSup); !errors.Is(err, ErrNotAssigner) {
		t.Errorf("期望 ErrNotAssigner，实际: %v", err)
	}
	if err := f.work.Delete(context.Background(), wa.WorkAssignmentID, support); !errors.Is(err, ErrNotAssigner) {
		t.Errorf("期望 ErrNotAssigner，实际: %v", err)
	}

	high := model.WorkPriorityHigh
	got, err := f.work.Update(context.Background(), wa.WorkAssignmentID, &dto.UpdateWorkAssignmentRequest{Priority: &high}, supervisor)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got.Priority != high {
		t.Errorf("期望priority=high，实际=%s", got.Priority)
	}

	if err := f.work.Delete(context.Background(), wa.WorkAssignmentID, supervisor); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := f.work.Get(context.Background(), wa.WorkAssignmentID); !errors.Is(err, ErrWorkAssignmentNotFound) {
		t.Errorf("删除后应查询不到，实际: %v", err)
	}
}

func TestWorkAssignmentService_ListMineAndSupervisor(t *testing.T) {
	f := setupLifecycle()
	f.scheduled(t)
	f.scheduled(t)

	mine, err := f.work.ListMine(context.Background(), support)
	if err != nil || len(mine) != 2 {
		t.Errorf("维修人员应看到2条工单，实际=%d err=%v", len(mine), err)
	}
	sent, err := f.work.ListBySupervisor(context.Background(), supervisor)
	if err != nil || len(sent) != 2 {
		t.Errorf("主管应看到2条派出工单，实际=%d err=%v", len(sent), err)
	}
	if _, err := f.work.ListMine(context.Background(), supervisor); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}
}

func TestWorkAssignmentService_Calendar(t *testing.T) {
	f := setupLifecycle()
	_, wa := f.scheduled(t)

	data, err := f.work.Calendar(context.Background(), support)
	if err != nil {
		t.Fatalf("Calendar 应成功: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "BEGIN:VEVENT") {
		t.Error("应输出包含事件的 iCalendar")
	}
	if !strings.Contains(body, wa.WorkAssignmentID) {
		t.Error("事件 UID 应包含工单 ID")
	}

	if _, err := f.work.Calendar(context.Background(), resident); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// 端到端流程
// ════════════════════════════════════════════════════════════

func TestLifecycle_AssessRejectThenSchedule(t *testing.T) {
	f := setupLifecycle()
	ctx := context.Background()

	c := submitComplaint(t, f.complaints)
	got := assess(t, f.complaints, c.ComplaintID, &dto.AssessComplaintRequest{
		Severity: model.SeverityHigh, AreaType: model.AreaCommercial,
	})
	if got.Priority != 10 {
		t.Fatalf("期望priority=10，实际=%d", got.Priority)
	}

	got = assess(t, f.complaints, c.ComplaintID, &dto.AssessComplaintRequest{
		Severity: model.SeverityHigh, AreaType: model.AreaCommercial,
		ResourceEstimate: &model.ResourceBundle{Materials: []model.MaterialItem{{Name: "asphalt", Quantity: 5}}},
	})
	if got.ResourceRequestStatus != model.ResourceRequestPending {
		t.Fatalf("期望pending-approval，实际=%s", got.ResourceRequestStatus)
	}

	got, err := f.complaints.RejectResources(ctx, c.ComplaintID, &dto.ResourceDecisionRequest{}, admin)
	if err != nil {
		t.Fatalf("RejectResources 应成功: %v", err)
	}
	if got.ResourceRequestStatus != model.ResourceRequestRejected || got.Status != model.ComplaintPending {
		t.Fatalf("期望rejected/pending，实际=%s/%s", got.ResourceRequestStatus, got.Status)
	}

	resp, err := f.complaints.Schedule(ctx, c.ComplaintID, &dto.ScheduleComplaintRequest{}, supervisor)
	if err != nil {
		t.Fatalf("资源被驳回后仍可排期: %v", err)
	}
	if resp.Complaint.Status != model.ComplaintScheduled {
		t.Errorf("期望scheduled，实际=%s", resp.Complaint.Status)
	}
}

func TestLifecycle_ScheduleWorkConfirm(t *testing.T) {
	f := setupLifecycle()
	ctx := context.Background()

	c, wa := f.scheduled(t)
	if wa == nil || wa.AssignedTo != support.ID || wa.Status != model.WorkPending {
		t.Fatalf("应生成指派给 %s 的 pending 工单", support.ID)
	}

	f.setStatus(t, wa.WorkAssignmentID, model.WorkInProgress)
	if got, _ := f.complaints.Get(ctx, c.ComplaintID, admin); got.Status != model.ComplaintInProgress {
		t.Fatalf("期望投诉in-progress，实际=%s", got.Status)
	}

	f.setStatus(t, wa.WorkAssignmentID, model.WorkCompleted)
	got, _ := f.complaints.Get(ctx, c.ComplaintID, admin)
	if got.Status != model.ComplaintCompleted || got.DateCompleted == nil {
		t.Fatalf("期望投诉completed且有完工日期，实际=%s", got.Status)
	}

	if _, err := f.complaints.ConfirmCompletion(ctx, c.ComplaintID, &dto.ConfirmCompletionRequest{Confirmed: true}, supervisor); err != nil {
		t.Fatalf("ConfirmCompletion 应成功: %v", err)
	}
	got, _ = f.complaints.Get(ctx, c.ComplaintID, admin)
	finalWA, _ := f.work.Get(ctx, wa.WorkAssignmentID)
	if !got.SupervisorConfirmed || !finalWA.SupervisorConfirmed {
		t.Error("投诉与工单都应显示已确认")
	}
}
