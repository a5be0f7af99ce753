package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
)

// Notifier 排期通知出口；投诉服务只负责组装载荷
// 实现自行处理失败，不向调用方返回错误
type Notifier interface {
	ComplaintScheduled(ctx context.Context, payload *dto.NotificationPayload)
}

// Publisher 消息发布能力（由 Redis 客户端提供）
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 仅记录日志的通知器
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) ComplaintScheduled(_ context.Context, p *dto.NotificationPayload) {
	fields := []zap.Field{
		zap.String("complaint_no", p.ComplaintNo),
		zap.String("road_name", p.RoadName),
		zap.String("scheduled_date", p.ScheduledDate),
	}
	if p.SupportPerson != nil {
		fields = append(fields, zap.String("support_person", p.SupportPerson.ID))
	}
	n.logger.Info("投诉已排期", fields...)
}

type publishNotifier struct {
	pub     Publisher
	channel string
	logger  *zap.Logger
}

// NewPublishNotifier 将通知载荷以 JSON 发布到指定频道
func NewPublishNotifier(pub Publisher, channel string, logger *zap.Logger) Notifier {
	return &publishNotifier{pub: pub, channel: channel, logger: logger}
}

func (n *publishNotifier) ComplaintScheduled(ctx context.Context, p *dto.NotificationPayload) {
	data, err := json.Marshal(p)
	if err != nil {
		n.logger.Error("序列化排期通知失败", zap.Error(err))
		return
	}
	if err := n.pub.Publish(ctx, n.channel, data); err != nil {
		n.logger.Warn("发布排期通知失败",
			zap.String("channel", n.channel),
			zap.String("complaint_id", p.ComplaintID),
			zap.Error(err),
		)
	}
}
