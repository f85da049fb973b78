// cmd/alert-gateway/main.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"agrimart/internal/pkg/bootstrap"
	"agrimart/internal/pkg/mq"
)

const (
	serviceName   = "alert-gateway"
	servicePort   = 8088
	consumerGroup = "alert-gateway-group"
)

// 推给仪表盘的主题集合，与编排器的生产端一致
var alertTopics = []string{
	"promotion.expired",
	"autopost.job.failed",
	"inventory.lowstock",
}

// dashboardMessage 是推给前端的统一信封。
type dashboardMessage struct {
	Topic      string          `json:"topic"`
	ReceivedAt time.Time       `json:"received_at"`
	Event      json.RawMessage `json:"event"`
}

func main() {
	bootstrap.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	hub := newHub()
	go hub.run()

	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	readers := make([]*kafka.Reader, 0, len(alertTopics))
	for _, topic := range alertTopics {
		reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, topic, consumerGroup)
		readers = append(readers, reader)
		go pumpTopic(consumerCtx, reader, hub)
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				serveWs(hub, w, r)
			})
		},
		OnShutdown: func(ctx context.Context) {
			stopConsumers()
			for _, r := range readers {
				r.Close()
			}
		},
	})
}

// pumpTopic 把一个主题的事件搬进广播通道。
// 仪表盘推送是尽力而为的，消息读出即提交，不做重投。
func pumpTopic(ctx context.Context, reader *kafka.Reader, hub *Hub) {
	topic := reader.Config().Topic
	log.Printf("Forwarding topic '%s' to dashboard clients", topic)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("ERROR: could not read message from '%s': %v. Retrying...", topic, err)
			time.Sleep(1 * time.Second)
			continue
		}

		envelope, err := json.Marshal(dashboardMessage{
			Topic:      topic,
			ReceivedAt: time.Now().UTC(),
			Event:      msg.Value,
		})
		if err != nil {
			continue
		}
		hub.broadcast <- envelope
	}
}
