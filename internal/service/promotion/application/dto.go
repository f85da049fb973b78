// promotion-service/internal/application/dto.go
package application

import "time"

// CreatePromotionRequest 是创建促销的请求体
type CreatePromotionRequest struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	DiscountKind     string    `json:"discount_kind"`
	DiscountValue    float64   `json:"discount_value"`
	TargetProductIDs []string  `json:"target_product_ids"`
	TargetCategories []string  `json:"target_categories"`
	TargetRule       string    `json:"target_rule"`
	ShowInPWA        bool      `json:"show_in_pwa"`
	AutoPost         bool      `json:"auto_post"`
	UsageCap         int64     `json:"usage_cap"`
}

// UpdatePromotionRequest 是更新促销的请求体
type UpdatePromotionRequest struct {
	ID string `json:"id"`
	CreatePromotionRequest
}

// RedeemRequest 是销售时点核销促销的请求体
type RedeemRequest struct {
	PromotionID string  `json:"promotion_id"`
	ProductID   string  `json:"product_id"`
	Category    string  `json:"category"`
	BranchID    string  `json:"branch_id"`
	Subtotal    float64 `json:"subtotal"`
}

// RedeemResponse 是核销促销的响应体
type RedeemResponse struct {
	Success        bool    `json:"success"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	UsageCount     int64   `json:"usage_count"`
}

// PromotionView 是列表/详情接口返回的促销视图，
// status 字段总是按请求时刻现算，绝不直接回显缓存列。
type PromotionView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	DiscountKind  string    `json:"discount_kind"`
	DiscountValue float64   `json:"discount_value"`
	Status        string    `json:"status"`
	ShowInPWA     bool      `json:"show_in_pwa"`
	AutoPost      bool      `json:"auto_post"`
	UsageCap      int64     `json:"usage_cap"`
	UsageCount    int64     `json:"usage_count"`
}
