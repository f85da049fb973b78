// orchestrator-service/internal/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"agrimart/internal/service/orchestrator/application"
	"agrimart/internal/service/orchestrator/domain"
)

// TickHandler 暴露手动触发 tick 和查询上次结果的接口。
type TickHandler struct {
	orchestrator *application.Orchestrator

	mu         sync.RWMutex
	lastReport *domain.TickReport
}

// NewTickHandler 创建一个新的 HTTP 处理器实例
func NewTickHandler(orchestrator *application.Orchestrator) *TickHandler {
	return &TickHandler{orchestrator: orchestrator}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *TickHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/run_tick", h.handleRunTick)
	mux.HandleFunc("/last_tick", h.handleLastTick)
}

// RecordReport 记录后台循环产生的最新报告，供 /last_tick 查询。
func (h *TickHandler) RecordReport(report *domain.TickReport) {
	h.mu.Lock()
	h.lastReport = report
	h.mu.Unlock()
}

func (h *TickHandler) handleRunTick(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	report := h.orchestrator.RunTick(ctx, time.Now().UTC())
	h.RecordReport(report)

	w.Header().Set("Content-Type", "application/json")
	if report.Skipped {
		w.WriteHeader(http.StatusConflict)
	}
	json.NewEncoder(w).Encode(report)
}

func (h *TickHandler) handleLastTick(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	report := h.lastReport
	h.mu.RUnlock()

	if report == nil {
		http.Error(w, "no tick has run yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
