// promotion-service/internal/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"agrimart/internal/service/promotion/application"
	"agrimart/internal/service/promotion/domain"
)

// PromotionHandler 封装了 promotion 服务的 HTTP 处理器
type PromotionHandler struct {
	service *application.PromotionService
}

// NewPromotionHandler 创建一个新的 HTTP 处理器实例
func NewPromotionHandler(service *application.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *PromotionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/create_promotion", h.handleCreate)
	mux.HandleFunc("/update_promotion", h.handleUpdate)
	mux.HandleFunc("/delete_promotion", h.handleDelete)
	mux.HandleFunc("/list_promotions", h.handleList)
	mux.HandleFunc("/redeem_promotion", h.handleRedeem)
}

func (h *PromotionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.CreatePromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.service.CreatePromotion(ctx, &req)
	if err != nil {
		http.Error(w, err.Error(), statusCodeFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(view)
}

func (h *PromotionHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.UpdatePromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	view, err := h.service.UpdatePromotion(ctx, &req)
	if err != nil {
		http.Error(w, err.Error(), statusCodeFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (h *PromotionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.DeletePromotion(ctx, id); err != nil {
		http.Error(w, err.Error(), statusCodeFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Promotion deleted and pending posts cancelled.",
	})
}

func (h *PromotionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	views, err := h.service.ListPromotions(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

func (h *PromotionHandler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Redeem(ctx, &req)
	if err != nil {
		http.Error(w, err.Error(), statusCodeFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// statusCodeFor 根据错误类型返回不同的 HTTP 状态码
func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPromotionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPromotionNotActive),
		errors.Is(err, domain.ErrNotApplicable),
		errors.Is(err, domain.ErrUsageCapReached):
		return http.StatusForbidden // 客户端请求有效，但服务器拒绝执行
	case errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidDiscount),
		errors.Is(err, domain.ErrUnknownDiscountKind),
		errors.Is(err, domain.ErrInvalidUsageCap):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
