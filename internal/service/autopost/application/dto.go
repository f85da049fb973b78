// autopost-service/internal/application/dto.go
package application

import (
	"time"

	"agrimart/internal/service/autopost/domain"
)

// PromotionInfo 是排期时需要的促销字段。
// autopost 不反向依赖 promotion 包，由调用方（promotion 服务、编排器）
// 把促销实体映射成这个结构传进来。
type PromotionInfo struct {
	ID            string
	Title         string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	DiscountKind  string
	DiscountValue float64
	AutoPost      bool
}

func (p PromotionInfo) templateData() domain.TemplateData {
	return domain.TemplateData{
		Title:         p.Title,
		Description:   p.Description,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		DiscountLabel: domain.DiscountLabel(p.DiscountKind, p.DiscountValue),
	}
}

// JobResult 是 Runner 对单个任务一次执行的结果。
type JobResult struct {
	JobID       string           `json:"job_id"`
	PageID      string           `json:"page_id"`
	PromotionID string           `json:"promotion_id,omitempty"`
	Status      domain.JobStatus `json:"status"`
	Error       string           `json:"error,omitempty"`
}
