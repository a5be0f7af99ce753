package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// DateRange 按 date_raised 过滤的可选区间
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// GroupCount 单列分组计数
type GroupCount struct {
	Key   string
	Count int64
}

// CompletionSpan 已完工投诉的排期日与完工日
type CompletionSpan struct {
	DateScheduled time.Time
	DateCompleted time.Time
}

// AreaRow 区域维度统计
type AreaRow struct {
	AreaType     string
	Total        int64
	Pending      int64
	Scheduled    int64
	InProgress   int64
	Completed    int64
	HighSeverity int64
}

// ResourceGroupRow 资源按类型×状态聚合
type ResourceGroupRow struct {
	Type     string
	Status   string
	Count    int64
	Quantity float64
}

// MonthlyRow 月度趋势
type MonthlyRow struct {
	Year      int
	Month     int
	Total     int64
	Completed int64
}

// ReportRepository 只读统计查询
type ReportRepository interface {
	CountByStatus(ctx context.Context, rng DateRange) ([]GroupCount, error)
	CountBySeverity(ctx context.Context, rng DateRange) ([]GroupCount, error)
	CompletionSpans(ctx context.Context) ([]CompletionSpan, error)
	AreaBreakdown(ctx context.Context) ([]AreaRow, error)
	ResourceGroups(ctx context.Context) ([]ResourceGroupRow, error)
	MonthlyTrends(ctx context.Context, since time.Time) ([]MonthlyRow, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo 创建 ReportRepository 实例
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) complaints(ctx context.Context, rng DateRange) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Complaint{})
	if rng.From != nil {
		db = db.Where("date_raised >= ?", *rng.From)
	}
	if rng.To != nil {
		db = db.Where("date_raised <= ?", *rng.To)
	}
	return db
}

func (r *reportRepo) CountByStatus(ctx context.Context, rng DateRange) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.complaints(ctx, rng).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) CountBySeverity(ctx context.Context, rng DateRange) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.complaints(ctx, rng).
		Where("severity <> ''").
		Select("severity AS key, COUNT(*) AS count").
		Group("severity").
		Order("severity").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) CompletionSpans(ctx context.Context) ([]CompletionSpan, error) {
	var rows []CompletionSpan
	err := r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Select("date_scheduled, date_completed").
		Where("status = ? AND date_completed IS NOT NULL AND date_scheduled IS NOT NULL", model.ComplaintCompleted).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) AreaBreakdown(ctx context.Context) ([]AreaRow, error) {
	var rows []AreaRow
	err := r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Select(`area_type,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'scheduled') AS scheduled,
			COUNT(*) FILTER (WHERE status = 'in-progress') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE severity = 'high') AS high_severity`).
		Group("area_type").
		Order("total DESC, area_type ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) ResourceGroups(ctx context.Context) ([]ResourceGroupRow, error) {
	var rows []ResourceGroupRow
	err := r.db.WithContext(ctx).
		Model(&model.Resource{}).
		Select("type, status, COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS quantity").
		Group("type, status").
		Order("type, status").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) MonthlyTrends(ctx context.Context, since time.Time) ([]MonthlyRow, error) {
	var rows []MonthlyRow
	err := r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Select(`EXTRACT(YEAR FROM date_raised)::int AS year,
			EXTRACT(MONTH FROM date_raised)::int AS month,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed`).
		Where("date_raised >= ?", since).
		Group("year, month").
		Order("year, month").
		Scan(&rows).Error
	return rows, err
}
