package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock ComplaintRepository ──

type mockComplaintRepo struct {
	complaints map[string]*model.Complaint
	seq        int64
}

func newMockComplaintRepo() *mockComplaintRepo {
	return &mockComplaintRepo{complaints: make(map[string]*model.Complaint)}
}

func (m *mockComplaintRepo) Create(_ context.Context, c *model.Complaint) error {
	m.seq++
	if c.ComplaintID == "" {
		c.ComplaintID = fmt.Sprintf("cmp-%d", m.seq)
	}
	if c.ComplaintNo == "" {
		c.ComplaintNo = model.FormatComplaintNo(m.seq)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	}
	c.EnforceCompletionInvariant()
	cp := *c
	m.complaints[c.ComplaintID] = &cp
	return nil
}

func (m *mockComplaintRepo) GetByID(_ context.Context, id string) (*model.Complaint, error) {
	if c, ok := m.complaints[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockComplaintRepo) List(_ context.Context, filter repository.ComplaintFilter) ([]model.Complaint, error) {
	var result []model.Complaint
	for _, c := range m.complaints {
		if filter.SubmittedBy != "" && c.SubmittedBy != filter.SubmittedBy {
			continue
		}
		if filter.SupervisorScope != "" && c.SupervisorID != nil && *c.SupervisorID != filter.SupervisorScope {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && c.Severity != filter.Severity {
			continue
		}
		if filter.AreaType != "" && c.AreaType != filter.AreaType {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DateRaised.After(result[j].DateRaised) })
	return result, nil
}

func (m *mockComplaintRepo) Update(_ context.Context, c *model.Complaint, _ ...string) error {
	if _, ok := m.complaints[c.ComplaintID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c.EnforceCompletionInvariant()
	cp := *c
	m.complaints[c.ComplaintID] = &cp
	return nil
}

func (m *mockComplaintRepo) Delete(_ context.Context, id string) error {
	delete(m.complaints, id)
	return nil
}

func (m *mockComplaintRepo) ListSchedulable(_ context.Context) ([]model.Complaint, error) {
	var result []model.Complaint
	for _, c := range m.complaints {
		if c.Status == model.ComplaintPending && c.Severity != "" {
			result = append(result, *c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ── Mock ResourceRepository ──

type mockResourceRepo struct {
	resources map[string]*model.Resource
}

func newMockResourceRepo() *mockResourceRepo {
	return &mockResourceRepo{resources: make(map[string]*model.Resource)}
}

func (m *mockResourceRepo) Create(_ context.Context, res *model.Resource) error {
	if res.ResourceID == "" {
		res.ResourceID = fmt.Sprintf("res-%d", len(m.resources)+1)
	}
	cp := *res
	m.resources[res.ResourceID] = &cp
	return nil
}

func (m *mockResourceRepo) GetByID(_ context.Context, id string) (*model.Resource, error) {
	if r, ok := m.resources[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResourceRepo) List(_ context.Context, filter repository.ResourceFilter) ([]model.Resource, error) {
	var result []model.Resource
	for _, r := range m.resources {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type < result[j].Type
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockResourceRepo) Update(_ context.Context, res *model.Resource) error {
	old, ok := m.resources[res.ResourceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *res
	cp.TotalQuantity = old.TotalQuantity
	m.resources[res.ResourceID] = &cp
	return nil
}

func (m *mockResourceRepo) Delete(_ context.Context, id string) error {
	delete(m.resources, id)
	return nil
}

func (m *mockResourceRepo) ListAvailable(ctx context.Context) ([]model.Resource, error) {
	return m.List(ctx, repository.ResourceFilter{Status: model.ResourceAvailable})
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	created   []string // 创建顺序
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, s *model.Schedule) error {
	if s.ScheduleID == "" {
		s.ScheduleID = fmt.Sprintf("sch-%d", len(m.created)+1)
	}
	cp := *s
	m.schedules[s.ScheduleID] = &cp
	m.created = append(m.created, s.ScheduleID)
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.SupervisorID != "" && s.SupervisorID != filter.SupervisorID {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignedDate.Before(result[j].AssignedDate) })
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, s *model.Schedule, _ ...string) error {
	if _, ok := m.schedules[s.ScheduleID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	m.schedules[s.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	delete(m.schedules, id)
	return nil
}

// ── Mock WorkAssignmentRepository ──

type mockWorkAssignmentRepo struct {
	assignments map[string]*model.WorkAssignment
	seq         int
}

func newMockWorkAssignmentRepo() *mockWorkAssignmentRepo {
	return &mockWorkAssignmentRepo{assignments: make(map[string]*model.WorkAssignment)}
}

func (m *mockWorkAssignmentRepo) Create(_ context.Context, wa *model.WorkAssignment) error {
	m.seq++
	if wa.WorkAssignmentID == "" {
		wa.WorkAssignmentID = fmt.Sprintf("wa-%d", m.seq)
	}
	if wa.CreatedAt.IsZero() {
		wa.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	}
	cp := *wa
	m.assignments[wa.WorkAssignmentID] = &cp
	return nil
}

func (m *mockWorkAssignmentRepo) GetByID(_ context.Context, id string) (*model.WorkAssignment, error) {
	if wa, ok := m.assignments[id]; ok {
		cp := *wa
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkAssignmentRepo) GetByComplaint(_ context.Context, complaintID string) (*model.WorkAssignment, error) {
	var found *model.WorkAssignment
	for _, wa := range m.assignments {
		if wa.ComplaintID != complaintID {
			continue
		}
		if found == nil || wa.CreatedAt.Before(found.CreatedAt) {
			found = wa
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *mockWorkAssignmentRepo) ListByAssignee(_ context.Context, userID string) ([]model.WorkAssignment, error) {
	var result []model.WorkAssignment
	for _, wa := range m.assignments {
		if wa.AssignedTo == userID {
			result = append(result, *wa)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Deadline.Before(result[j].Deadline) })
	return result, nil
}

func (m *mockWorkAssignmentRepo) ListByAssigner(_ context.Context, userID string) ([]model.WorkAssignment, error) {
	var result []model.WorkAssignment
	for _, wa := range m.assignments {
		if wa.AssignedBy == userID {
			result = append(result, *wa)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockWorkAssignmentRepo) Update(_ context.Context, wa *model.WorkAssignment, _ ...string) error {
	if _, ok := m.assignments[wa.WorkAssignmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *wa
	m.assignments[wa.WorkAssignmentID] = &cp
	return nil
}

func (m *mockWorkAssignmentRepo) Delete(_ context.Context, id string) error {
	delete(m.assignments, id)
	return nil
}

// countFor 投诉关联的工单数
func (m *mockWorkAssignmentRepo) countFor(complaintID string) int {
	n := 0
	for _, wa := range m.assignments {
		if wa.ComplaintID == complaintID {
			n++
		}
	}
	return n
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	activities []model.ComplaintActivity
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{}
}

func (m *mockActivityRepo) Create(_ context.Context, a *model.ComplaintActivity) error {
	a.ActivityID = fmt.Sprintf("act-%d", len(m.activities)+1)
	m.activities = append(m.activities, *a)
	return nil
}

func (m *mockActivityRepo) ListByComplaint(_ context.Context, complaintID string) ([]model.ComplaintActivity, error) {
	var result []model.ComplaintActivity
	for _, a := range m.activities {
		if a.ComplaintID == complaintID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	byStatus   []repository.GroupCount
	bySeverity []repository.GroupCount
	spans      []repository.CompletionSpan
	areas      []repository.AreaRow
	resources  []repository.ResourceGroupRow
	monthly    []repository.MonthlyRow
	lastRange  repository.DateRange
	lastSince  time.Time
}

func (m *mockReportRepo) CountByStatus(_ context.Context, rng repository.DateRange) ([]repository.GroupCount, error) {
	m.lastRange = rng
	return m.byStatus, nil
}

func (m *mockReportRepo) CountBySeverity(_ context.Context, _ repository.DateRange) ([]repository.GroupCount, error) {
	return m.bySeverity, nil
}

func (m *mockReportRepo) CompletionSpans(_ context.Context) ([]repository.CompletionSpan, error) {
	return m.spans, nil
}

func (m *mockReportRepo) AreaBreakdown(_ context.Context) ([]repository.AreaRow, error) {
	return m.areas, nil
}

func (m *mockReportRepo) ResourceGroups(_ context.Context) ([]repository.ResourceGroupRow, error) {
	return m.resources, nil
}

func (m *mockReportRepo) MonthlyTrends(_ context.Context, since time.Time) ([]repository.MonthlyRow, error) {
	m.lastSince = since
	return m.monthly, nil
}

// ── 测试仓储聚合 ──

type mockRepos struct {
	users       *mockUserRepo
	complaints  *mockComplaintRepo
	resources   *mockResourceRepo
	schedules   *mockScheduleRepo
	assignments *mockWorkAssignmentRepo
	activities  *mockActivityRepo
	reports     *mockReportRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:       newMockUserRepo(),
		complaints:  newMockComplaintRepo(),
		resources:   newMockResourceRepo(),
		schedules:   newMockScheduleRepo(),
		assignments: newMockWorkAssignmentRepo(),
		activities:  newMockActivityRepo(),
		reports:     &mockReportRepo{},
	}
	repo := &repository.Repository{
		User:           m.users,
		Complaint:      m.complaints,
		Resource:       m.resources,
		Schedule:       m.schedules,
		WorkAssignment: m.assignments,
		Activity:       m.activities,
		Report:         m.reports,
	}
	return repo, m
}

// addUser 写入测试用户
func (m *mockRepos) addUser(id, name, role string) *model.User {
	u := &model.User{UserID: id, Name: name, Email: id + "@road.test", Phone: "138000" + id, Role: role}
	m.users.users[id] = u
	return u
}
