package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/service"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/response"
)

// ResourceHandler 资源台账 HTTP 处理器
type ResourceHandler struct {
	resourceSvc service.ResourceService
}

// NewResourceHandler 创建 ResourceHandler
func NewResourceHandler(resourceSvc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceSvc: resourceSvc}
}

// List 资源列表
// GET /api/v1/resources
func (h *ResourceHandler) List(c *gin.Context) {
	var req dto.ResourceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.resourceSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, list)
}

// Summary 资源可用性汇总
// GET /api/v1/resources/summary
func (h *ResourceHandler) Summary(c *gin.Context) {
	summary, err := h.resourceSvc.Summary(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, summary)
}

// Get 资源详情
// GET /api/v1/resources/:id
func (h *ResourceHandler) Get(c *gin.Context) {
	res, err := h.resourceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, res)
}

// Create 新建资源
// POST /api/v1/resources
func (h *ResourceHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.resourceSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, res)
}

// Update 修改资源
// PUT /api/v1/resources/:id
func (h *ResourceHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.resourceSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, res)
}

// Delete 删除资源
// DELETE /api/v1/resources/:id
func (h *ResourceHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.resourceSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
