// orchestrator-service/internal/port/events.go
package port

import (
	"context"

	"agrimart/internal/service/orchestrator/domain"
)

// EventPublisher 把编排器产生的领域事件发往消息总线，
// notification-service 消费这些事件并发送告警邮件。
type EventPublisher interface {
	PublishPromotionExpired(ctx context.Context, event *domain.PromotionExpired) error
	PublishJobFailed(ctx context.Context, event *domain.PostingJobFailed) error
	PublishLowStockCritical(ctx context.Context, event *domain.LowStockCritical) error
}
