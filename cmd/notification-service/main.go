// cmd/notification-service/main.go
package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"agrimart/internal/pkg/bootstrap"
	"agrimart/internal/pkg/httpclient"
	"agrimart/internal/pkg/mq"
	"agrimart/internal/service/notification/application"
	"agrimart/internal/service/notification/infrastructure"
	"agrimart/internal/service/notification/port"
)

const (
	serviceName   = "notification-service"
	servicePort   = 8089
	consumerGroup = "notification-service-group"
)

func main() {
	bootstrap.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	tracer := otel.Tracer(serviceName)

	var sender port.EmailSender
	if cfg.Email.Provider == "recording" {
		sender = infrastructure.NewRecordingEmailSender()
	} else {
		sender = infrastructure.NewHTTPEmailSender(httpclient.NewClient(tracer), cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.From)
	}

	svc := application.NewNotificationService(sender, cfg.Email.Recipients, tracer)

	// 每个主题一个消费者适配器
	topics := []string{
		infrastructure.TopicPromotionExpired,
		infrastructure.TopicJobFailed,
		infrastructure.TopicLowStock,
	}
	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	consumers := make([]*infrastructure.EventConsumerAdapter, 0, len(topics))
	for _, topic := range topics {
		reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, topic, consumerGroup)
		consumer := infrastructure.NewEventConsumerAdapter(reader, svc)
		consumer.Start(consumerCtx)
		consumers = append(consumers, consumer)
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
		OnShutdown: func(ctx context.Context) {
			stopConsumers()
			for _, c := range consumers {
				c.Stop()
			}
		},
	})
}
