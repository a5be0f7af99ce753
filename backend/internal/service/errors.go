package service

import (
	apperrors "github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/errors"
)

// ── 通用业务错误 ──

var (
	ErrForbidden = apperrors.New(apperrors.KindForbidden, 40301, "无权执行此操作")
)

// ── 认证模块 ──

var (
	ErrInvalidCredentials = apperrors.New(apperrors.KindForbidden, 40101, "邮箱或密码错误")
	ErrTokenRevoked       = apperrors.New(apperrors.KindForbidden, 40102, "token 已注销")
	ErrEmailExists        = apperrors.New(apperrors.KindConflict, 40901, "邮箱已被注册")
	ErrUserNotFound       = apperrors.New(apperrors.KindNotFound, 40401, "用户不存在")
	ErrInvalidRole        = apperrors.New(apperrors.KindValidation, 42201, "角色不合法")
)

// ── 投诉模块 ──

var (
	ErrComplaintNotFound    = apperrors.New(apperrors.KindNotFound, 40402, "投诉不存在")
	ErrNotAssessed          = apperrors.New(apperrors.KindPrecondition, 40001, "投诉需先经主管评估才能排期")
	ErrNoPendingRequest     = apperrors.New(apperrors.KindPrecondition, 40002, "当前没有待审批的资源申请")
	ErrSupportPersonInvalid = apperrors.New(apperrors.KindValidation, 42202, "指定的维修人员不存在")
)

// ── 工单模块 ──

var (
	ErrWorkAssignmentNotFound = apperrors.New(apperrors.KindNotFound, 40403, "工单不存在")
	ErrNotAssignee            = apperrors.New(apperrors.KindForbidden, 40302, "只有工单执行人可以更新状态")
	ErrNotAssigner            = apperrors.New(apperrors.KindForbidden, 40303, "只有派单人可以修改或删除工单")
)

// ── 排期模块 ──

var (
	ErrScheduleNotFound    = apperrors.New(apperrors.KindNotFound, 40404, "排期不存在")
	ErrAutoScheduleRunning = apperrors.New(apperrors.KindConflict, 40902, "自动排期正在进行中，请稍后再试")
	ErrInvalidScheduleDate = apperrors.New(apperrors.KindValidation, 42203, "预计完工日期不能早于开工日期")
)

// ── 资源台账 ──

var (
	ErrResourceNotFound = apperrors.New(apperrors.KindNotFound, 40405, "资源不存在")
	ErrResourceQuantity = apperrors.New(apperrors.KindValidation, 42204, "可用数量必须介于 0 与总量之间")
)

// ── 报表 ──

var (
	ErrInvalidDateRange = apperrors.New(apperrors.KindValidation, 42205, "日期区间不合法")
	ErrExportFailed     = apperrors.New(apperrors.KindInternal, 50001, "生成导出文件失败")
)
