// promotion-service/internal/domain/repository.go
package domain

import (
	"context"
	"time"
)

// PromotionRepository 定义了促销数据的持久化接口
// 这是领域层与基础设施层之间的“插座”
type PromotionRepository interface {
	Create(ctx context.Context, promo *Promotion) error
	Save(ctx context.Context, promo *Promotion) error
	FindByID(ctx context.Context, id string) (*Promotion, error)
	// FindAll 返回所有未软删的促销。
	FindAll(ctx context.Context) ([]*Promotion, error)
	// FindEndingBetween 返回结束时间落在 (from, to] 区间内的促销，
	// 编排器用它找出进入提醒窗口的活动。
	FindEndingBetween(ctx context.Context, from, to time.Time) ([]*Promotion, error)
	// FindStatusDrift 返回 cached_status 与按 now 推导的状态不一致的促销。
	FindStatusDrift(ctx context.Context, now time.Time) ([]*Promotion, error)
	UpdateCachedStatus(ctx context.Context, id string, status Status) error
	// RecordUsage 把 Redis 里的权威计数回写到 MySQL（只增不减）。
	RecordUsage(ctx context.Context, id string, count int64) error
	SoftDelete(ctx context.Context, id string) error
}

// RuleEngine 评估一条规则表达式是否命中给定事实。
type RuleEngine interface {
	Evaluate(rule string, fact Fact) (bool, error)
}

// UsageCounter 是核销计数器的端口。实现必须保证 "检查上限 + 递增"
// 是原子的，否则并发核销会把计数打穿上限（这正是 Redis Lua 实现存在的理由）。
type UsageCounter interface {
	// Incr 在 cap 限制内递增一次，cap 为 0 表示不限量。
	// 返回是否允许本次核销，以及递增后的计数。
	Incr(ctx context.Context, promotionID string, cap int64) (allowed bool, count int64, err error)
}
