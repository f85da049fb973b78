// inventory-service/internal/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"agrimart/internal/service/inventory/application"
	"agrimart/internal/service/inventory/domain"
)

// LowStockHandler 封装了 inventory 服务的 HTTP 处理器
type LowStockHandler struct {
	service *application.LowStockService
}

// NewLowStockHandler 创建一个新的 HTTP 处理器实例
func NewLowStockHandler(service *application.LowStockService) *LowStockHandler {
	return &LowStockHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *LowStockHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/low_stock_report", h.handleReport)
}

func (h *LowStockHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var (
		report *application.Report
		err    error
	)
	if branchID := r.URL.Query().Get("branch_id"); branchID != "" {
		report, err = h.service.BranchReport(ctx, branchID, time.Now().UTC())
	} else {
		report, err = h.service.Report(ctx, time.Now().UTC())
	}
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNegativeQuantity) {
			statusCode = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
