package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/service"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/response"
)

// WorkAssignmentHandler 维修工单模块 HTTP 处理器
type WorkAssignmentHandler struct {
	workSvc service.WorkAssignmentService
}

// NewWorkAssignmentHandler 创建 WorkAssignmentHandler
func NewWorkAssignmentHandler(workSvc service.WorkAssignmentService) *WorkAssignmentHandler {
	return &WorkAssignmentHandler{workSvc: workSvc}
}

// ListMine 我的工单（维修人员）
// GET /api/v1/work-assignments/my
func (h *WorkAssignmentHandler) ListMine(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.workSvc.ListMine(c.Request.Context(), caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, list)
}

// ListBySupervisor 我指派的工单（主管）
// GET /api/v1/work-assignments/supervisor
func (h *WorkAssignmentHandler) ListBySupervisor(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.workSvc.ListBySupervisor(c.Request.Context(), caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, list)
}

// Get 工单详情
// GET /api/v1/work-assignments/:id
func (h *WorkAssignmentHandler) Get(c *gin.Context) {
	wa, err := h.workSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, wa)
}

// Create 手动创建工单
// POST /api/v1/work-assignments
func (h *WorkAssignmentHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateWorkAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	wa, err := h.workSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, wa)
}

// UpdateStatus 维修人员更新工单状态
// PUT /api/v1/work-assignments/:id/status
func (h *WorkAssignmentHandler) UpdateStatus(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateWorkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	wa, complaint, err := h.workSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, &dto.WorkStatusResponse{WorkAssignment: wa, Complaint: complaint})
}

// Update 指派人修改工单
// PUT /api/v1/work-assignments/:id
func (h *WorkAssignmentHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateWorkAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	wa, err := h.workSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, wa)
}

// Delete 指派人删除工单
// DELETE /api/v1/work-assignments/:id
func (h *WorkAssignmentHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.workSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// Calendar 工单截止日历订阅
// GET /api/v1/work-assignments/calendar.ics
func (h *WorkAssignmentHandler) Calendar(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	data, err := h.workSvc.Calendar(c.Request.Context(), caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=work-assignments.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}
