//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/repository"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=road password=road_password dbname=road_repair_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用正式迁移建表（含 complaint_no_seq）
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// resetTables 清空业务表
func resetTables(t *testing.T) {
	t.Helper()
	err := testDB.Exec("TRUNCATE complaint_activities, work_assignments, schedules, resources, complaints, users").Error
	if err != nil {
		t.Fatalf("清空数据表失败: %v", err)
	}
}

func newComplaint(submittedBy, severity string, priority int) *model.Complaint {
	return &model.Complaint{
		RoadName:           "人民路",
		Description:        "路面坑洼",
		Address:            "人民路 12 号",
		Severity:           severity,
		AreaType:           model.AreaBusy,
		Priority:           priority,
		Status:             model.ComplaintPending,
		SubmittedBy:        submittedBy,
		SubmitterRole:      model.RoleResident,
		DateRaised:         time.Now().UTC(),
		ResourceEstimate:   datatypes.NewJSONType(model.ResourceBundle{}),
		ResourcesAllocated: datatypes.NewJSONType(model.ResourceBundle{}),
	}
}

// ═══════════════════════════════════════════════════════════
// ComplaintRepository
// ═══════════════════════════════════════════════════════════

func TestComplaintRepo_CreateAssignsSequentialNumbers(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	resident := uuid.NewString()

	first := newComplaint(resident, model.SeverityLow, 2)
	second := newComplaint(resident, model.SeverityHigh, 9)
	if err := repo.Complaint.Create(ctx, first); err != nil {
		t.Fatalf("创建投诉失败: %v", err)
	}
	if err := repo.Complaint.Create(ctx, second); err != nil {
		t.Fatalf("创建投诉失败: %v", err)
	}
	if first.ComplaintNo == "" || first.ComplaintNo >= second.ComplaintNo {
		t.Errorf("编号应递增: %s, %s", first.ComplaintNo, second.ComplaintNo)
	}
}

func TestComplaintRepo_UpdateEnforcesCompletion(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	c := newComplaint(uuid.NewString(), model.SeverityMedium, 6)
	repo.Complaint.Create(ctx, c)

	now := time.Now().UTC()
	c.DateCompleted = &now
	if err := repo.Complaint.Update(ctx, c, "date_completed"); err != nil {
		t.Fatalf("更新投诉失败: %v", err)
	}
	got, _ := repo.Complaint.GetByID(ctx, c.ComplaintID)
	if got.Status != model.ComplaintCompleted {
		t.Errorf("存在完工日期时状态应为 completed，实际=%s", got.Status)
	}
}

func TestComplaintRepo_ListSchedulableOrder(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	resident := uuid.NewString()

	for _, p := range []int{3, 10, 7} {
		repo.Complaint.Create(ctx, newComplaint(resident, model.SeverityMedium, p))
	}
	done := newComplaint(resident, model.SeverityHigh, 10)
	done.Status = model.ComplaintScheduled
	repo.Complaint.Create(ctx, done)

	list, err := repo.Complaint.ListSchedulable(ctx)
	if err != nil {
		t.Fatalf("查询待排期投诉失败: %v", err)
	}
	if len(list) != 3 || list[0].Priority != 10 || list[2].Priority != 3 {
		t.Errorf("待排期顺序不符: %+v", list)
	}
}

func TestComplaintRepo_ListSupervisorScope(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	sup, other := uuid.NewString(), uuid.NewString()

	unassigned := newComplaint(uuid.NewString(), model.SeverityLow, 2)
	mine := newComplaint(uuid.NewString(), model.SeverityLow, 2)
	mine.SupervisorID = &sup
	theirs := newComplaint(uuid.NewString(), model.SeverityLow, 2)
	theirs.SupervisorID = &other
	for _, c := range []*model.Complaint{unassigned, mine, theirs} {
		repo.Complaint.Create(ctx, c)
	}

	list, err := repo.Complaint.List(ctx, repository.ComplaintFilter{SupervisorScope: sup})
	if err != nil {
		t.Fatalf("查询投诉失败: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("主管应看到未分配与本人的投诉，实际=%d", len(list))
	}
}

// ═══════════════════════════════════════════════════════════
// Transaction
// ═══════════════════════════════════════════════════════════

func TestRepository_TransactionRollsBack(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	c := newComplaint(uuid.NewString(), model.SeverityLow, 2)
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Complaint.Create(ctx, c); err != nil {
			return err
		}
		return fmt.Errorf("中止")
	})
	if err == nil {
		t.Fatal("期望事务返回错误")
	}
	if _, err := repo.Complaint.GetByID(ctx, c.ComplaintID); err != gorm.ErrRecordNotFound {
		t.Errorf("事务回滚后投诉不应存在，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// WorkAssignment / Schedule / Report
// ═══════════════════════════════════════════════════════════

func TestWorkAssignmentRepo_GetByComplaint(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	c := newComplaint(uuid.NewString(), model.SeverityLow, 2)
	repo.Complaint.Create(ctx, c)
	wa := &model.WorkAssignment{
		ComplaintID:     c.ComplaintID,
		AssignedTo:      uuid.NewString(),
		AssignedBy:      uuid.NewString(),
		WorkDescription: "填补坑洼",
		RoadName:        c.RoadName,
		Location:        c.Address,
		Deadline:        time.Now().Add(72 * time.Hour),
		Status:          model.WorkPending,
		Priority:        model.WorkPriorityHigh,
	}
	if err := repo.WorkAssignment.Create(ctx, wa); err != nil {
		t.Fatalf("创建工单失败: %v", err)
	}

	got, err := repo.WorkAssignment.GetByComplaint(ctx, c.ComplaintID)
	if err != nil || got.WorkAssignmentID != wa.WorkAssignmentID {
		t.Fatalf("按投诉查询工单失败: %v", err)
	}
	mine, _ := repo.WorkAssignment.ListByAssignee(ctx, wa.AssignedTo)
	if len(mine) != 1 {
		t.Errorf("期望1条工单，实际=%d", len(mine))
	}
}

func TestScheduleRepo_JSONColumnsRoundTrip(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	start := time.Now().UTC().Truncate(time.Second)
	s := &model.Schedule{
		ComplaintID:             uuid.NewString(),
		AssignedDate:            start,
		EstimatedCompletionDate: start.AddDate(0, 0, 3),
		ResourcesAllocated: datatypes.NewJSONType(model.ResourceBundle{
			Materials: []model.MaterialItem{{Name: "沥青", Quantity: 2, Unit: "吨"}},
			Manpower:  model.Manpower{Workers: 4},
		}),
		Status:          model.ScheduleScheduled,
		SupervisorID:    uuid.NewString(),
		TeamAssigned:    datatypes.JSONSlice[string]{uuid.NewString()},
		ProgressUpdates: datatypes.JSONSlice[model.ProgressUpdate]{},
	}
	if err := repo.Schedule.Create(ctx, s); err != nil {
		t.Fatalf("创建排期失败: %v", err)
	}

	got, err := repo.Schedule.GetByID(ctx, s.ScheduleID)
	if err != nil {
		t.Fatalf("查询排期失败: %v", err)
	}
	bundle := got.ResourcesAllocated.Data()
	if len(bundle.Materials) != 1 || bundle.Manpower.Workers != 4 || len(got.TeamAssigned) != 1 {
		t.Errorf("JSONB 字段读写不一致: %+v", bundle)
	}
}

func TestReportRepo_AreaBreakdownAndResources(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	high := newComplaint(uuid.NewString(), model.SeverityHigh, 9)
	low := newComplaint(uuid.NewString(), model.SeverityLow, 3)
	low.AreaType = model.AreaResidential
	repo.Complaint.Create(ctx, high)
	repo.Complaint.Create(ctx, low)

	areas, err := repo.Report.AreaBreakdown(ctx)
	if err != nil {
		t.Fatalf("区域统计失败: %v", err)
	}
	if len(areas) != 2 || areas[0].AreaType != model.AreaBusy || areas[0].HighSeverity != 1 {
		t.Errorf("区域统计不符: %+v", areas)
	}

	for _, res := range []*model.Resource{
		{Type: model.ResourceMachine, Name: "压路机", Quantity: 1, TotalQuantity: 1, Unit: "台", Status: model.ResourceAvailable},
		{Type: model.ResourceMachine, Name: "挖掘机", Quantity: 2, TotalQuantity: 2, Unit: "台", Status: model.ResourceInUse},
	} {
		if err := repo.Resource.Create(ctx, res); err != nil {
			t.Fatalf("创建资源失败: %v", err)
		}
	}
	groups, err := repo.Report.ResourceGroups(ctx)
	if err != nil {
		t.Fatalf("资源汇总失败: %v", err)
	}
	if len(groups) != 2 || groups[1].Status != model.ResourceInUse || groups[1].Quantity != 2 {
		t.Errorf("资源汇总不符: %+v", groups)
	}
}

// ═══════════════════════════════════════════════════════════
// UserRepository
// ═══════════════════════════════════════════════════════════

func TestUserRepo_EmailAndRole(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	users := []*model.User{
		{Name: "张三", Email: "zhang@example.com", PasswordHash: "x", Role: model.RoleSupport},
		{Name: "李四", Email: "li@example.com", PasswordHash: "x", Role: model.RoleSupport},
		{Name: "王五", Email: "wang@example.com", PasswordHash: "x", Role: model.RoleResident},
	}
	for _, u := range users {
		if err := repo.User.Create(ctx, u); err != nil {
			t.Fatalf("创建用户失败: %v", err)
		}
	}
	dup := &model.User{Name: "重复", Email: "ZHANG@example.com", PasswordHash: "x", Role: model.RoleResident}
	if err := repo.User.Create(ctx, dup); err == nil {
		t.Error("邮箱忽略大小写后重复，应违反唯一索引")
	}

	got, err := repo.User.GetByEmail(ctx, "zhang@example.com")
	if err != nil || got.UserID != users[0].UserID {
		t.Fatalf("按邮箱查询失败: %v", err)
	}
	support, _ := repo.User.ListByRole(ctx, model.RoleSupport)
	if len(support) != 2 {
		t.Errorf("期望2名维修人员，实际=%d", len(support))
	}
}
