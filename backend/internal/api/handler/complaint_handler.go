package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/service"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/response"
)

// ComplaintHandler 投诉模块 HTTP 处理器
type ComplaintHandler struct {
	complaintSvc service.ComplaintService
}

// NewComplaintHandler 创建 ComplaintHandler
func NewComplaintHandler(complaintSvc service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: complaintSvc}
}

// Create 提交投诉
// POST /api/v1/complaints
func (h *ComplaintHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	complaint, err := h.complaintSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, complaint)
}

// List 投诉列表（按角色可见范围过滤）
// GET /api/v1/complaints
func (h *ComplaintHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.ComplaintListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.complaintSvc.List(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, list)
}

// Get 投诉详情
// GET /api/v1/complaints/:id
func (h *ComplaintHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	complaint, err := h.complaintSvc.Get(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, complaint)
}

// Update 修改投诉描述信息
// PUT /api/v1/complaints/:id
func (h *ComplaintHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	complaint, err := h.complaintSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, complaint)
}

// Delete 删除投诉
// DELETE /api/v1/complaints/:id
func (h *ComplaintHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.complaintSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// Assess 主管评估
// PUT /api/v1/complaints/:id/assess
func (h *ComplaintHandler) Assess(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.AssessComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	complaint, err := h.complaintSvc.Assess(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, complaint)
}

// ApproveResources 批准资源申请
// PUT /api/v1/complaints/:id/approve-resources
func (h *ComplaintHandler) ApproveResources(c *gin.Context) {
	h.decide(c, h.complaintSvc.ApproveResources)
}

// RejectResources 驳回资源申请
// PUT /api/v1/complaints/:id/reject-resources
func (h *ComplaintHandler) RejectResources(c *gin.Context) {
	h.decide(c, h.complaintSvc.RejectResources)
}

type decideFunc func(ctx context.Context, id string, req *dto.ResourceDecisionRequest, caller service.Caller) (*model.Complaint, error)

func (h *ComplaintHandler) decide(c *gin.Context, fn decideFunc) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.ResourceDecisionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	complaint, err := fn(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, complaint)
}

// Schedule 排期并指派维修人员
// PUT /api/v1/complaints/:id/schedule
func (h *ComplaintHandler) Schedule(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.ScheduleComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.complaintSvc.Schedule(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// ConfirmCompletion 主管确认完工
// PUT /api/v1/complaints/:id/confirm-completion
func (h *ComplaintHandler) ConfirmCompletion(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.ConfirmCompletionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	complaint, err := h.complaintSvc.ConfirmCompletion(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, complaint)
}

// ListActivities 投诉处理记录
// GET /api/v1/complaints/:id/activities
func (h *ComplaintHandler) ListActivities(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.complaintSvc.ListActivities(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, list)
}
