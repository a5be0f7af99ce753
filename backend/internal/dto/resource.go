package dto

// ── 资源台账 DTO ──

// ResourceListRequest 资源列表查询参数
type ResourceListRequest struct {
	Type   string `form:"type"   binding:"omitempty,oneof=material machine manpower"`
	Status string `form:"status" binding:"omitempty,oneof=available in-use maintenance unavailable"`
}

// CreateResourceRequest 新建资源；总量取创建时的数量
type CreateResourceRequest struct {
	Type     string  `json:"type"     binding:"required,oneof=material machine manpower"`
	Name     string  `json:"name"     binding:"required,max=100"`
	Category string  `json:"category" binding:"omitempty,max=100"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit"     binding:"omitempty,max=20"`
	Status   string  `json:"status"   binding:"omitempty,oneof=available in-use maintenance unavailable"`
	Notes    string  `json:"notes"`
}

// UpdateResourceRequest 修改资源（总量不可修改）
type UpdateResourceRequest struct {
	Name     *string  `json:"name"     binding:"omitempty,max=100"`
	Category *string  `json:"category" binding:"omitempty,max=100"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"     binding:"omitempty,max=20"`
	Status   *string  `json:"status"   binding:"omitempty,oneof=available in-use maintenance unavailable"`
	Notes    *string  `json:"notes"`
}

// ResourceStatusSummary 单一状态下的资源计数与数量
type ResourceStatusSummary struct {
	Status   string  `json:"status"`
	Count    int64   `json:"count"`
	Quantity float64 `json:"quantity"`
}

// ResourceTypeSummary 按类型汇总的资源可用性
type ResourceTypeSummary struct {
	Type     string                  `json:"type"`
	Statuses []ResourceStatusSummary `json:"statuses"`
}
