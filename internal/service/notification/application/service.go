// notification-service/internal/application/service.go
package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agrimart/internal/pkg/logger"
	"agrimart/internal/service/notification/domain"
	"agrimart/internal/service/notification/port"
)

// NotificationService 把编排器的领域事件翻译成运营告警邮件。
// 投递失败只记日志，事件仍会被提交，靠消费组的重平衡语义保证
// 不会因为一封邮件卡死整个主题。
type NotificationService struct {
	sender     port.EmailSender
	recipients []string
	tracer     trace.Tracer
}

// NewNotificationService 创建通知服务。
func NewNotificationService(sender port.EmailSender, recipients []string, tracer trace.Tracer) *NotificationService {
	return &NotificationService{sender: sender, recipients: recipients, tracer: tracer}
}

// HandlePromotionExpired 处理促销过期事件。
func (s *NotificationService) HandlePromotionExpired(ctx context.Context, event *domain.PromotionExpiredEvent) error {
	ctx, span := s.tracer.Start(ctx, "notification.HandlePromotionExpired")
	defer span.End()
	span.SetAttributes(attribute.String("promotion.id", event.PromotionID))

	subject := fmt.Sprintf("Promotion ended: %s", event.Title)
	body := fmt.Sprintf(
		"<p>Promotion <b>%s</b> ended on %s.</p><p>Pending social posts for it have been cancelled.</p>",
		event.Title, event.EndDate.Format("2006-01-02"),
	)
	return s.send(ctx, subject, body)
}

// HandleJobFailed 处理发帖任务终态失败事件。
func (s *NotificationService) HandleJobFailed(ctx context.Context, event *domain.JobFailedEvent) error {
	ctx, span := s.tracer.Start(ctx, "notification.HandleJobFailed")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", event.JobID))

	subject := fmt.Sprintf("Social post failed after retries (page %s)", event.PageID)
	body := fmt.Sprintf(
		"<p>Posting job <b>%s</b> exhausted its retry budget.</p><p>Last error: %s</p><p>The post needs manual attention.</p>",
		event.JobID, event.LastError,
	)
	return s.send(ctx, subject, body)
}

// HandleLowStock 处理临界低库存事件。
func (s *NotificationService) HandleLowStock(ctx context.Context, event *domain.LowStockEvent) error {
	ctx, span := s.tracer.Start(ctx, "notification.HandleLowStock")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", event.ProductID),
		attribute.String("branch.id", event.BranchID),
	)

	subject := fmt.Sprintf("Out of stock: %s at %s", event.ProductName, event.BranchID)
	body := fmt.Sprintf(
		"<p><b>%s</b> is out of stock at branch <b>%s</b> (threshold %d).</p><p>Reorder immediately.</p>",
		event.ProductName, event.BranchID, event.Threshold,
	)
	return s.send(ctx, subject, body)
}

func (s *NotificationService) send(ctx context.Context, subject, body string) error {
	if len(s.recipients) == 0 {
		logger.Ctx(ctx).Warn().Str("subject", subject).Msg("no alert recipients configured, mail dropped")
		return nil
	}
	messageID, err := s.sender.SendEmail(ctx, s.recipients, subject, body)
	if err != nil {
		return fmt.Errorf("failed to send alert mail: %w", err)
	}
	logger.Ctx(ctx).Info().
		Str("message_id", messageID).
		Str("subject", subject).
		Int("recipients", len(s.recipients)).
		Msg("alert mail sent")
	return nil
}
