package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/service"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 统计报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Statistics 综合统计
// GET /api/v1/reports/statistics?start_date=&end_date=
func (h *ReportHandler) Statistics(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.reportSvc.Statistics(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// AreaWise 区域统计
// GET /api/v1/reports/area-wise
func (h *ReportHandler) AreaWise(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.reportSvc.AreaWise(c.Request.Context(), caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, items)
}

// ResourceUtilization 资源利用率
// GET /api/v1/reports/resource-utilization
func (h *ReportHandler) ResourceUtilization(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.reportSvc.ResourceUtilization(c.Request.Context(), caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, items)
}

// MonthlyTrends 月度趋势
// GET /api/v1/reports/trends?months=6
func (h *ReportHandler) MonthlyTrends(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.TrendsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	items, err := h.reportSvc.MonthlyTrends(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, items)
}

// ExportComplaints 导出投诉列表
// GET /api/v1/reports/export?status=&severity=&area_type=
func (h *ReportHandler) ExportComplaints(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.ComplaintListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.reportSvc.ExportComplaints(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
