// notification-service/internal/infrastructure/kafka_consumer.go
package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"agrimart/internal/pkg/logger"
	"agrimart/internal/pkg/mq"
	"agrimart/internal/service/notification/application"
	"agrimart/internal/service/notification/domain"
)

// 消费的主题名与编排器的生产端保持一致
const (
	TopicPromotionExpired = "promotion.expired"
	TopicJobFailed        = "autopost.job.failed"
	TopicLowStock         = "inventory.lowstock"
)

// EventConsumerAdapter 是一个驱动适配器，监听单个主题并驱动通知服务。
// 每个主题一个适配器实例，由 main 分别启动。
type EventConsumerAdapter struct {
	reader  *kafka.Reader
	appSvc  *application.NotificationService
	wg      sync.WaitGroup
	stopped bool
}

// NewEventConsumerAdapter 创建一个新的 Kafka 消费者适配器。
func NewEventConsumerAdapter(reader *kafka.Reader, appSvc *application.NotificationService) *EventConsumerAdapter {
	return &EventConsumerAdapter{reader: reader, appSvc: appSvc}
}

// Start 开始监听主题。这是一个长期运行的方法。
func (a *EventConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		topic := a.reader.Config().Topic
		logger.Ctx(ctx).Info().Str("topic", topic).Msg("event consumer started")
		for {
			if a.stopped {
				return
			}
			// FetchMessage + 手动提交，处理完才算消费完
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Str("topic", topic).Msg("event consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Str("topic", topic).Msg("could not read message, retrying")
				time.Sleep(1 * time.Second)
				continue
			}

			a.processMessage(ctx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Str("topic", topic).Msg("failed to commit messages")
			}
		}
	}()
}

// Stop 优雅地停止消费者。
func (a *EventConsumerAdapter) Stop() {
	a.stopped = true
	a.reader.Close()
	a.wg.Wait()
}

// processMessage 按主题反序列化事件并调用对应的处理方法。
// 处理失败只记日志并提交，坏消息不会卡住主题。
func (a *EventConsumerAdapter) processMessage(parentCtx context.Context, msg kafka.Message) {
	propagator := otel.GetTextMapPropagator()
	headerCarrier := mq.KafkaHeaderCarrier(msg.Headers)
	ctx := propagator.Extract(parentCtx, &headerCarrier)

	var err error
	switch a.reader.Config().Topic {
	case TopicPromotionExpired:
		var event domain.PromotionExpiredEvent
		if err = json.Unmarshal(msg.Value, &event); err == nil {
			err = a.appSvc.HandlePromotionExpired(ctx, &event)
		}
	case TopicJobFailed:
		var event domain.JobFailedEvent
		if err = json.Unmarshal(msg.Value, &event); err == nil {
			err = a.appSvc.HandleJobFailed(ctx, &event)
		}
	case TopicLowStock:
		var event domain.LowStockEvent
		if err = json.Unmarshal(msg.Value, &event); err == nil {
			err = a.appSvc.HandleLowStock(ctx, &event)
		}
	default:
		logger.Ctx(ctx).Warn().Str("topic", a.reader.Config().Topic).Msg("message from unexpected topic skipped")
		return
	}
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("topic", a.reader.Config().Topic).
			Str("key", string(msg.Key)).
			Msg("failed to handle event")
	}
}
