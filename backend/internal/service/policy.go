package service

import (
	"context"
	"strings"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// 优先级与工期
// ════════════════════════════════════════════════════════════

// priorityTable 严重程度 × 区域类型 → 优先级，未列出的区域类型落到 "" 列
var priorityTable = map[string]map[string]int{
	model.SeverityHigh:   {model.AreaCommercial: 10, model.AreaBusy: 9, "": 7},
	model.SeverityMedium: {model.AreaCommercial: 7, model.AreaBusy: 6, "": 5},
	model.SeverityLow:    {model.AreaCommercial: 4, model.AreaBusy: 3, "": 2},
}

const defaultPriority = 5

// ComputePriority 根据严重程度与区域类型计算 1–10 的优先级
func ComputePriority(severity, areaType string) int {
	row, ok := priorityTable[severity]
	if !ok {
		return defaultPriority
	}
	if p, ok := row[areaType]; ok {
		return p
	}
	return row[""]
}

// CompletionDays 按严重程度估算工期天数
func CompletionDays(severity string) int {
	switch severity {
	case model.SeverityHigh:
		return 2
	case model.SeverityMedium:
		return 3
	default:
		return 5
	}
}

// ════════════════════════════════════════════════════════════
// 资源放行策略
// ════════════════════════════════════════════════════════════

// ResourceGate 自动排期前判断投诉的资源估算能否满足
type ResourceGate interface {
	Check(ctx context.Context, estimate *model.ResourceBundle, pool []model.Resource) (bool, error)
}

// Resource gate 配置取值
const (
	GateAlways    = "always"
	GateInventory = "inventory"
)

// NewResourceGate 按配置名构造放行策略，未知取值回落到 AlwaysAvailableGate
func NewResourceGate(name string) ResourceGate {
	if name == GateInventory {
		return InventoryGate{}
	}
	return AlwaysAvailableGate{}
}

// AlwaysAvailableGate 默认策略：无论是否有估算都放行
type AlwaysAvailableGate struct{}

func (AlwaysAvailableGate) Check(context.Context, *model.ResourceBundle, []model.Resource) (bool, error) {
	return true, nil
}

// InventoryGate 按名称核对物料/机械数量，按人力资源总数核对工人+工程师
// 只读取资源池快照，不做预留扣减
type InventoryGate struct{}

func (InventoryGate) Check(_ context.Context, estimate *model.ResourceBundle, pool []model.Resource) (bool, error) {
	if estimate == nil || !estimate.RequestsResources() {
		return true, nil
	}

	stock := make(map[string]float64)
	var manpower float64
	for _, r := range pool {
		if r.Status != model.ResourceAvailable {
			continue
		}
		if r.Type == model.ResourceManpower {
			manpower += r.Quantity
			continue
		}
		stock[stockKey(r.Type, r.Name)] += r.Quantity
	}

	for _, m := range estimate.Materials {
		if stock[stockKey(model.ResourceMaterial, m.Name)] < m.Quantity {
			return false, nil
		}
	}
	for _, m := range estimate.Machines {
		if stock[stockKey(model.ResourceMachine, m.Name)] < m.Quantity {
			return false, nil
		}
	}
	need := float64(estimate.Manpower.Workers + estimate.Manpower.Engineers)
	return manpower >= need, nil
}

func stockKey(typ, name string) string {
	return typ + ":" + strings.ToLower(strings.TrimSpace(name))
}
