// promotion-service/internal/port/planner.go
package port

import (
	"context"
	"time"

	"agrimart/internal/service/promotion/domain"
)

// PostPlanner 是促销服务对自动发帖排期能力的依赖。
// 由 autopost 服务的 Scheduler 实现（见 infrastructure 里的适配器），
// 促销的创建/更新/删除通过它驱动里程碑任务的排期与级联取消。
type PostPlanner interface {
	PlanAnnouncement(ctx context.Context, promo *domain.Promotion, now time.Time) (int, error)
	RefreshPendingContent(ctx context.Context, promo *domain.Promotion) (int, error)
	CancelForPromotion(ctx context.Context, promotionID string) (int, error)
}
