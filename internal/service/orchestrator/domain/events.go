// orchestrator-service/internal/domain/events.go
package domain

import "time"

// PromotionExpired 在编排器把促销的缓存状态推进到 EXPIRED 时发出。
type PromotionExpired struct {
	PromotionID string    `json:"promotion_id"`
	Title       string    `json:"title"`
	EndDate     time.Time `json:"end_date"`
	ExpiredAt   time.Time `json:"expired_at"`
}

// PostingJobFailed 在发帖任务耗尽重试预算、进入终态失败时发出。
type PostingJobFailed struct {
	JobID       string    `json:"job_id"`
	PageID      string    `json:"page_id"`
	PromotionID string    `json:"promotion_id,omitempty"`
	LastError   string    `json:"last_error"`
	FailedAt    time.Time `json:"failed_at"`
}

// LowStockCritical 在某商品在某门店的可用数量降到临界档时发出。
type LowStockCritical struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	BranchID    string    `json:"branch_id"`
	Available   int64     `json:"available"`
	Threshold   int64     `json:"threshold"`
	DetectedAt  time.Time `json:"detected_at"`
}
