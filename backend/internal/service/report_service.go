package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/repository"
)

const (
	dateLayout          = "2006-01-02"
	defaultTrendMonths  = 6
	complaintSheetTitle = "投诉列表"
)

// ReportService 统计报表业务接口（只读）
type ReportService interface {
	Statistics(ctx context.Context, req *dto.StatisticsRequest, caller Caller) (*dto.StatisticsResponse, error)
	AreaWise(ctx context.Context, caller Caller) ([]dto.AreaReportItem, error)
	ResourceUtilization(ctx context.Context, caller Caller) ([]dto.ResourceUtilizationItem, error)
	MonthlyTrends(ctx context.Context, req *dto.TrendsRequest, caller Caller) ([]dto.MonthlyTrendItem, error)
	// 导出投诉列表为 Excel，返回文件内容与文件名
	ExportComplaints(ctx context.Context, req *dto.ComplaintListRequest, caller Caller) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 综合统计
// ════════════════════════════════════════════════════════════

func (s *reportService) Statistics(ctx context.Context, req *dto.StatisticsRequest, caller Caller) (*dto.StatisticsResponse, error) {
	if err := caller.require(model.RoleMayor, model.RoleAdministrator, model.RoleSupervisor); err != nil {
		return nil, err
	}
	rng, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.repo.Report.CountByStatus(ctx, rng)
	if err != nil {
		s.logger.Error("按状态统计失败", zap.Error(err))
		return nil, err
	}
	bySeverity, err := s.repo.Report.CountBySeverity(ctx, rng)
	if err != nil {
		s.logger.Error("按严重程度统计失败", zap.Error(err))
		return nil, err
	}
	spans, err := s.repo.Report.CompletionSpans(ctx)
	if err != nil {
		s.logger.Error("查询完工周期失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.StatisticsResponse{
		ByStatus:   toCountItems(byStatus),
		BySeverity: toCountItems(bySeverity),
	}
	for _, g := range byStatus {
		resp.Overview.Total += g.Count
		if g.Key == model.ComplaintCompleted {
			resp.Overview.Completed = g.Count
		}
	}
	// 未完工即视为待处理，与月度趋势口径一致
	resp.Overview.Pending = resp.Overview.Total - resp.Overview.Completed
	resp.Overview.AverageCompletionDays = AverageCompletionDays(spans)
	return resp, nil
}

// AverageCompletionDays 每单取排期到完工的整天数（向上取整）后求均值并四舍五入
func AverageCompletionDays(spans []repository.CompletionSpan) int {
	if len(spans) == 0 {
		return 0
	}
	var sum float64
	for _, sp := range spans {
		sum += math.Ceil(sp.DateCompleted.Sub(sp.DateScheduled).Hours() / 24)
	}
	return int(math.Round(sum / float64(len(spans))))
}

// parseDateRange 解析 YYYY-MM-DD 区间，结束日包含当天；只给一端时不过滤
func parseDateRange(start, end string) (repository.DateRange, error) {
	var rng repository.DateRange
	if start == "" || end == "" {
		return rng, nil
	}
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return rng, ErrInvalidDateRange
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return rng, ErrInvalidDateRange
	}
	if to.Before(from) {
		return rng, ErrInvalidDateRange
	}
	to = to.Add(24*time.Hour - time.Nanosecond)
	rng.From, rng.To = &from, &to
	return rng, nil
}

func toCountItems(rows []repository.GroupCount) []dto.CountItem {
	items := make([]dto.CountItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.CountItem{Key: r.Key, Count: r.Count})
	}
	return items
}

// ════════════════════════════════════════════════════════════
// 区域 / 资源 / 趋势
// ════════════════════════════════════════════════════════════

func (s *reportService) AreaWise(ctx context.Context, caller Caller) ([]dto.AreaReportItem, error) {
	if err := caller.require(model.RoleMayor, model.RoleSupervisor); err != nil {
		return nil, err
	}
	rows, err := s.repo.Report.AreaBreakdown(ctx)
	if err != nil {
		s.logger.Error("区域统计失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.AreaReportItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.AreaReportItem{
			AreaType:     r.AreaType,
			Total:        r.Total,
			Pending:      r.Pending,
			Scheduled:    r.Scheduled,
			InProgress:   r.InProgress,
			Completed:    r.Completed,
			HighSeverity: r.HighSeverity,
		})
	}
	return items, nil
}

func (s *reportService) ResourceUtilization(ctx context.Context, caller Caller) ([]dto.ResourceUtilizationItem, error) {
	if err := caller.require(model.RoleMayor, model.RoleAdministrator); err != nil {
		return nil, err
	}
	rows, err := s.repo.Report.ResourceGroups(ctx)
	if err != nil {
		s.logger.Error("资源利用率统计失败", zap.Error(err))
		return nil, err
	}
	return UtilizationByType(rows), nil
}

// UtilizationByType 按类型聚合数量；利用率 = 在用数量 / 各状态数量之和
func UtilizationByType(rows []repository.ResourceGroupRow) []dto.ResourceUtilizationItem {
	items := []dto.ResourceUtilizationItem{}
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.Type]
		if !ok {
			i = len(items)
			index[r.Type] = i
			items = append(items, dto.ResourceUtilizationItem{Type: r.Type})
		}
		it := &items[i]
		it.Total += r.Quantity
		switch r.Status {
		case model.ResourceAvailable:
			it.Available += r.Quantity
		case model.ResourceInUse:
			it.InUse += r.Quantity
		}
		it.Breakdown = append(it.Breakdown, dto.ResourceStatusSummary{Status: r.Status, Count: r.Count, Quantity: r.Quantity})
	}
	for i := range items {
		if items[i].Total > 0 {
			items[i].UtilizationPercentage = int(math.Round(items[i].InUse / items[i].Total * 100))
		}
	}
	return items
}

func (s *reportService) MonthlyTrends(ctx context.Context, req *dto.TrendsRequest, caller Caller) ([]dto.MonthlyTrendItem, error) {
	if err := caller.require(model.RoleMayor); err != nil {
		return nil, err
	}
	months := req.Months
	if months <= 0 {
		months = defaultTrendMonths
	}

	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	rows, err := s.repo.Report.MonthlyTrends(ctx, since)
	if err != nil {
		s.logger.Error("月度趋势统计失败", zap.Error(err))
		return nil, err
	}
	return fillMonths(since, months, rows), nil
}

// fillMonths 补齐没有投诉的月份
func fillMonths(since time.Time, months int, rows []repository.MonthlyRow) []dto.MonthlyTrendItem {
	byKey := make(map[[2]int]repository.MonthlyRow, len(rows))
	for _, r := range rows {
		byKey[[2]int{r.Year, r.Month}] = r
	}
	items := make([]dto.MonthlyTrendItem, 0, months)
	for i := 0; i < months; i++ {
		m := since.AddDate(0, i, 0)
		r := byKey[[2]int{m.Year(), int(m.Month())}]
		items = append(items, dto.MonthlyTrendItem{
			Year:      m.Year(),
			Month:     int(m.Month()),
			Total:     r.Total,
			Completed: r.Completed,
			Pending:   r.Total - r.Completed,
		})
	}
	return items
}

// ════════════════════════════════════════════════════════════
// 导出
// ════════════════════════════════════════════════════════════

func (s *reportService) ExportComplaints(ctx context.Context, req *dto.ComplaintListRequest, caller Caller) (*bytes.Buffer, string, error) {
	if err := caller.require(model.RoleMayor, model.RoleAdministrator, model.RoleSupervisor); err != nil {
		return nil, "", err
	}
	list, err := s.repo.Complaint.List(ctx, repository.ComplaintFilter{
		Status:   req.Status,
		Severity: req.Severity,
		AreaType: req.AreaType,
	})
	if err != nil {
		s.logger.Error("查询导出投诉失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := complaintSheetTitle
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"编号", "道路", "地址", "严重程度", "区域类型", "优先级", "状态", "资源申请", "上报时间", "排期时间", "完工时间", "主管确认"}
	widths := []float64{12, 20, 30, 10, 12, 8, 12, 14, 18, 18, 18, 10}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheet, col, col, widths[i])
		f.SetCellValue(sheet, cell(col, 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for r, c := range list {
		row := r + 2
		confirmed := "否"
		if c.SupervisorConfirmed {
			confirmed = "是"
		}
		values := []interface{}{
			c.ComplaintNo,
			c.RoadName,
			c.Address,
			c.Severity,
			c.AreaType,
			c.Priority,
			c.Status,
			c.ResourceRequestStatus,
			c.DateRaised.Format("2006-01-02 15:04"),
			formatOptionalTime(c.DateScheduled),
			formatOptionalTime(c.DateCompleted),
			confirmed,
		}
		for i, v := range values {
			f.SetCellValue(sheet, cell(colName(i), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportFailed
	}
	filename := fmt.Sprintf("投诉列表_%s.xlsx", time.Now().UTC().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
