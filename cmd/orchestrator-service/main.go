// cmd/orchestrator-service/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"agrimart/internal/pkg/bootstrap"
	"agrimart/internal/pkg/database"
	"agrimart/internal/pkg/httpclient"
	"agrimart/internal/pkg/zookeeper"
	autopostapp "agrimart/internal/service/autopost/application"
	autopostinfra "agrimart/internal/service/autopost/infrastructure"
	autopostport "agrimart/internal/service/autopost/port"
	inventoryapp "agrimart/internal/service/inventory/application"
	inventoryinfra "agrimart/internal/service/inventory/infrastructure"
	"agrimart/internal/service/orchestrator/application"
	"agrimart/internal/service/orchestrator/infrastructure"
	"agrimart/internal/service/orchestrator/interfaces"
	"agrimart/internal/service/orchestrator/port"
	promotioninfra "agrimart/internal/service/promotion/infrastructure"
)

const (
	serviceName = "orchestrator-service"
	servicePort = 8090
)

func main() {
	bootstrap.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	db, err := database.Open(cfg.Infra.Mysql.Addr, cfg.Infra.Mysql.User, cfg.Infra.Mysql.Password, cfg.Infra.Mysql.Database)
	if err != nil {
		log.Fatalf("failed to connect to mysql: %v", err)
	}

	tracer := otel.Tracer(serviceName)

	// 社交平台适配器按配置选择，recording 用于本地联调
	var publisher autopostport.Publisher
	if cfg.Social.Provider == "recording" {
		publisher = autopostinfra.NewRecordingPublisher()
	} else {
		publisher = autopostinfra.NewGraphPublisher(httpclient.NewClient(tracer), cfg.Social.GraphAPIURL, cfg.Social.AccessToken)
	}

	jobs := autopostinfra.NewGormJobRepository(db)
	settings := autopostinfra.NewGormSettingsRepository(db)
	scheduler := autopostapp.NewScheduler(jobs, settings, tracer)
	runner := autopostapp.NewRunner(jobs, publisher, tracer)

	promotions := promotioninfra.NewGormPromotionRepository(db)
	stock := inventoryapp.NewLowStockService(inventoryinfra.NewGormSnapshotRepository(db), tracer)
	events := infrastructure.NewKafkaEventPublisher(cfg.Infra.Kafka.Brokers)

	// 多实例部署时用 Zookeeper 锁保证同一时刻只有一个实例 tick
	var tickLock port.TickLock
	var zkConn *zookeeper.Conn
	if cfg.Orchestrator.DistributedLock {
		zkConn, err = zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
		if err != nil {
			log.Fatalf("failed to connect to zookeeper: %v", err)
		}
		tickLock, err = zookeeper.NewTickLock(zkConn, "orchestrator-tick")
		if err != nil {
			log.Fatalf("failed to initialize tick lock: %v", err)
		}
	}

	orchestrator := application.NewOrchestrator(
		promotions, scheduler, runner, jobs, stock, events, tickLock,
		cfg.Orchestrator.RetentionDays, tracer,
	)
	handler := interfaces.NewTickHandler(orchestrator)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go runTickerLoop(loopCtx, orchestrator, handler, time.Duration(cfg.Orchestrator.TickIntervalSeconds)*time.Second)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			stopLoop()
			if err := events.Close(); err != nil {
				log.Printf("Error closing kafka producers: %v", err)
			}
			if zkConn != nil {
				zkConn.Close()
			}
		},
	})
}

// runTickerLoop 按固定周期驱动编排器，并把最新报告交给 HTTP 层展示。
func runTickerLoop(ctx context.Context, orchestrator *application.Orchestrator, handler *interfaces.TickHandler, interval time.Duration) {
	log.Printf("Orchestrator ticking every %v", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			report := orchestrator.RunTick(ctx, time.Now().UTC())
			handler.RecordReport(report)
		case <-ctx.Done():
			log.Println("Ticker loop stopped.")
			return
		}
	}
}
