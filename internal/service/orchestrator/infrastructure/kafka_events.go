// orchestrator-service/internal/infrastructure/kafka_events.go
package infrastructure

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"agrimart/internal/pkg/mq"
	"agrimart/internal/service/orchestrator/domain"
)

// 编排器产生的事件各走各的主题
const (
	TopicPromotionExpired = "promotion.expired"
	TopicJobFailed        = "autopost.job.failed"
	TopicLowStock         = "inventory.lowstock"
)

// KafkaEventPublisher 是 port.EventPublisher 的 Kafka 实现。
// 消息 Key 取聚合根 ID，同一促销/商品的事件保序。
type KafkaEventPublisher struct {
	expiredWriter  *kafka.Writer
	failedWriter   *kafka.Writer
	lowStockWriter *kafka.Writer
}

// NewKafkaEventPublisher 为每个主题创建一个生产者。
func NewKafkaEventPublisher(brokers []string) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		expiredWriter:  mq.NewKafkaWriter(brokers, TopicPromotionExpired),
		failedWriter:   mq.NewKafkaWriter(brokers, TopicJobFailed),
		lowStockWriter: mq.NewKafkaWriter(brokers, TopicLowStock),
	}
}

func (p *KafkaEventPublisher) PublishPromotionExpired(ctx context.Context, event *domain.PromotionExpired) error {
	return p.publish(ctx, p.expiredWriter, event.PromotionID, event)
}

func (p *KafkaEventPublisher) PublishJobFailed(ctx context.Context, event *domain.PostingJobFailed) error {
	return p.publish(ctx, p.failedWriter, event.JobID, event)
}

func (p *KafkaEventPublisher) PublishLowStockCritical(ctx context.Context, event *domain.LowStockCritical) error {
	return p.publish(ctx, p.lowStockWriter, event.ProductID, event)
}

func (p *KafkaEventPublisher) publish(ctx context.Context, writer *kafka.Writer, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal event")
	}
	if err := mq.ProduceMessage(ctx, writer, []byte(key), eventBytes); err != nil {
		return pkgerrors.Wrapf(err, "failed to produce message to %s", writer.Topic)
	}
	return nil
}

// Close 关闭所有生产者连接。
func (p *KafkaEventPublisher) Close() error {
	for _, w := range []*kafka.Writer{p.expiredWriter, p.failedWriter, p.lowStockWriter} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
