package dto

// ── 统计报表 DTO ──

// StatisticsRequest 统计查询参数（日期格式 2006-01-02，需同时提供）
type StatisticsRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02,required_with=EndDate"`
	EndDate   string `form:"end_date"   binding:"omitempty,datetime=2006-01-02,required_with=StartDate"`
}

// TrendsRequest 月度趋势查询参数
type TrendsRequest struct {
	Months int `form:"months" binding:"omitempty,min=1,max=60"`
}

// CountItem 分组计数
type CountItem struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// StatisticsOverview 总览
type StatisticsOverview struct {
	Total                 int64 `json:"total"`
	Completed             int64 `json:"completed"`
	Pending               int64 `json:"pending"`
	AverageCompletionDays int   `json:"average_completion_days"`
}

// StatisticsResponse 综合统计
type StatisticsResponse struct {
	Overview   StatisticsOverview `json:"overview"`
	ByStatus   []CountItem        `json:"by_status"`
	BySeverity []CountItem        `json:"by_severity"`
}

// AreaReportItem 区域维度统计
type AreaReportItem struct {
	AreaType     string `json:"area_type"`
	Total        int64  `json:"total"`
	Pending      int64  `json:"pending"`
	Scheduled    int64  `json:"scheduled"`
	InProgress   int64  `json:"in_progress"`
	Completed    int64  `json:"completed"`
	HighSeverity int64  `json:"high_severity"`
}

// ResourceUtilizationItem 资源利用率
type ResourceUtilizationItem struct {
	Type                  string                  `json:"type"`
	Total                 float64                 `json:"total"`
	Available             float64                 `json:"available"`
	InUse                 float64                 `json:"in_use"`
	UtilizationPercentage int                     `json:"utilization_percentage"`
	Breakdown             []ResourceStatusSummary `json:"breakdown"`
}

// MonthlyTrendItem 月度趋势
type MonthlyTrendItem struct {
	Year      int   `json:"year"`
	Month     int   `json:"month"`
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}
