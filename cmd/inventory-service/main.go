// cmd/inventory-service/main.go
package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"agrimart/internal/pkg/bootstrap"
	"agrimart/internal/pkg/database"
	"agrimart/internal/service/inventory/application"
	"agrimart/internal/service/inventory/infrastructure"
	"agrimart/internal/service/inventory/interfaces"
)

const (
	serviceName = "inventory-service"
	servicePort = 8086
)

func main() {
	bootstrap.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	db, err := database.Open(cfg.Infra.Mysql.Addr, cfg.Infra.Mysql.User, cfg.Infra.Mysql.Password, cfg.Infra.Mysql.Database)
	if err != nil {
		log.Fatalf("failed to connect to mysql: %v", err)
	}
	if err := db.AutoMigrate(&infrastructure.InventorySnapshotModel{}); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	repo := infrastructure.NewGormSnapshotRepository(db)
	svc := application.NewLowStockService(repo, otel.Tracer(serviceName))
	handler := interfaces.NewLowStockHandler(svc)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
