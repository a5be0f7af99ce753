package service

import (
	"go.uber.org/zap"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/config"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/repository"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/jwt"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth           AuthService
	Complaint      ComplaintService
	WorkAssignment WorkAssignmentService
	Schedule       ScheduleService
	Resource       ResourceService
	Report         ReportService
}

// NewService 创建 Service 聚合；rdb 为 nil 时黑名单、分布式锁与消息通知退化为本地实现
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var (
		tokens   TokenStore
		locker   Locker
		notifier = NewLogNotifier(logger)
	)
	if rdb != nil {
		tokens = rdb
		locker = rdb
		notifier = NewPublishNotifier(rdb, cfg.Schedule.NotifyChannel, logger)
	}

	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, tokens, logger),
		Complaint:      NewComplaintService(repo, &cfg.Schedule, notifier, logger),
		WorkAssignment: NewWorkAssignmentService(repo, logger),
		Schedule:       NewScheduleService(repo, NewResourceGate(cfg.Schedule.ResourceGate), locker, cfg.Schedule.AutoLockTTL, logger),
		Resource:       NewResourceService(repo, logger),
		Report:         NewReportService(repo, logger),
	}
}
