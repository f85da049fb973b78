// cmd/promotion-service/main.go
package main

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"net/http"

	"agrimart/internal/pkg/bootstrap"
	"agrimart/internal/pkg/database"
	"agrimart/internal/pkg/redis"
	autopostapp "agrimart/internal/service/autopost/application"
	autopostinfra "agrimart/internal/service/autopost/infrastructure"
	"agrimart/internal/service/promotion/application"
	"agrimart/internal/service/promotion/infrastructure"
	"agrimart/internal/service/promotion/infrastructure/rule"
	"agrimart/internal/service/promotion/interfaces"
)

const (
	serviceName = "promotion-service"
	servicePort = 8087
)

// main 是应用的"组装根" (Composition Root)：创建并组装所有依赖，然后启动。
func main() {
	bootstrap.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	db, err := database.Open(cfg.Infra.Mysql.Addr, cfg.Infra.Mysql.User, cfg.Infra.Mysql.Password, cfg.Infra.Mysql.Database)
	if err != nil {
		log.Fatalf("failed to connect to mysql: %v", err)
	}
	if err := db.AutoMigrate(
		&infrastructure.PromotionModel{},
		&autopostinfra.PostingJobModel{},
		&autopostinfra.PageSettingsModel{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	counter, err := infrastructure.NewRedisUsageCounter(redisClient)
	if err != nil {
		log.Fatalf("failed to initialize usage counter: %v", err)
	}
	ruleEngine, err := rule.NewCELRuleEngine()
	if err != nil {
		log.Fatalf("failed to initialize rule engine: %v", err)
	}

	tracer := otel.Tracer(serviceName)
	repo := infrastructure.NewGormPromotionRepository(db)

	// 促销的生命周期事件直接驱动发帖排期
	scheduler := autopostapp.NewScheduler(
		autopostinfra.NewGormJobRepository(db),
		autopostinfra.NewGormSettingsRepository(db),
		tracer,
	)
	planner := infrastructure.NewAutopostPlannerAdapter(scheduler)

	svc := application.NewPromotionService(repo, counter, ruleEngine, planner, tracer)
	handler := interfaces.NewPromotionHandler(svc)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing redis client: %v", err)
			}
		},
	})
}
