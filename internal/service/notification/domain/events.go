// notification-service/internal/domain/events.go
package domain

import "time"

// 下面的结构对应编排器发到各主题的事件体。
// notification 只依赖事件的 JSON 形状，不反向依赖编排器的包。

// PromotionExpiredEvent 来自 promotion.expired 主题。
type PromotionExpiredEvent struct {
	PromotionID string    `json:"promotion_id"`
	Title       string    `json:"title"`
	EndDate     time.Time `json:"end_date"`
	ExpiredAt   time.Time `json:"expired_at"`
}

// JobFailedEvent 来自 autopost.job.failed 主题。
type JobFailedEvent struct {
	JobID       string    `json:"job_id"`
	PageID      string    `json:"page_id"`
	PromotionID string    `json:"promotion_id,omitempty"`
	LastError   string    `json:"last_error"`
	FailedAt    time.Time `json:"failed_at"`
}

// LowStockEvent 来自 inventory.lowstock 主题。
type LowStockEvent struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	BranchID    string    `json:"branch_id"`
	Available   int64     `json:"available"`
	Threshold   int64     `json:"threshold"`
	DetectedAt  time.Time `json:"detected_at"`
}
