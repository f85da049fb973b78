// promotion-service/internal/infrastructure/autopost_planner.go
package infrastructure

import (
	"context"
	"time"

	autopostapp "agrimart/internal/service/autopost/application"
	"agrimart/internal/service/promotion/domain"
)

// AutopostPlannerAdapter 把 port.PostPlanner 适配到 autopost 服务的 Scheduler。
// 促销实体到 PromotionInfo 的映射收敛在这一个地方。
type AutopostPlannerAdapter struct {
	scheduler *autopostapp.Scheduler
}

// NewAutopostPlannerAdapter 创建一个新的适配器实例。
func NewAutopostPlannerAdapter(scheduler *autopostapp.Scheduler) *AutopostPlannerAdapter {
	return &AutopostPlannerAdapter{scheduler: scheduler}
}

func (a *AutopostPlannerAdapter) PlanAnnouncement(ctx context.Context, promo *domain.Promotion, now time.Time) (int, error) {
	return a.scheduler.PlanAnnouncement(ctx, toPromotionInfo(promo), now)
}

func (a *AutopostPlannerAdapter) RefreshPendingContent(ctx context.Context, promo *domain.Promotion) (int, error) {
	return a.scheduler.RefreshPendingContent(ctx, toPromotionInfo(promo))
}

func (a *AutopostPlannerAdapter) CancelForPromotion(ctx context.Context, promotionID string) (int, error) {
	return a.scheduler.CancelForPromotion(ctx, promotionID)
}

func toPromotionInfo(p *domain.Promotion) autopostapp.PromotionInfo {
	return autopostapp.PromotionInfo{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		DiscountKind:  string(p.DiscountKind),
		DiscountValue: p.DiscountValue,
		AutoPost:      p.AutoPost,
	}
}
