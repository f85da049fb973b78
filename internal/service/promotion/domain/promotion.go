// promotion-service/internal/domain/promotion.go
package domain

import (
	"math"
	"time"
)

// Status 是促销活动的生命周期状态。
// 注意：状态永远不是持久化的事实，而是由 (StartDate, EndDate, now)
// 推导出来的。数据库里的 cached_status 列只是一份可以随时重建的缓存，
// 所有读取方（接口层、编排器、核销逻辑）都必须通过 ComputeStatus 取状态。
type Status string

const (
	StatusUpcoming Status = "UPCOMING" // 未开始
	StatusActive   Status = "ACTIVE"   // 进行中
	StatusExpired  Status = "EXPIRED"  // 已结束
)

// DiscountKind 定义了优惠的计算方式。
type DiscountKind string

const (
	DiscountFlat       DiscountKind = "FLAT"       // 立减固定金额
	DiscountPercentage DiscountKind = "PERCENTAGE" // 按比例折扣
)

// ComputeStatus 是整个子系统的核心纯函数：
// now < start => UPCOMING; start <= now <= end => ACTIVE; now > end => EXPIRED。
// 对任意 end > start 的输入都返回且仅返回三态之一，且随 now 单调推进。
func ComputeStatus(start, end, now time.Time) Status {
	if now.Before(start) {
		return StatusUpcoming
	}
	if now.After(end) {
		return StatusExpired
	}
	return StatusActive
}

// Promotion 是一个有时间边界的折扣定义。
type Promotion struct {
	ID          string
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time

	DiscountKind  DiscountKind
	DiscountValue float64

	// 适用范围：显式的商品/分类集合，或一条 CEL 规则表达式。
	// 三者都为空时表示全场适用。
	TargetProductIDs []string
	TargetCategories []string
	TargetRule       string

	ShowInPWA  bool  // 是否在商城前端展示
	AutoPost   bool  // 是否参与社交平台自动发帖
	UsageCap   int64 // 0 表示不限量
	UsageCount int64

	// CachedStatus 仅用于列表查询加速，见 Status 的说明。
	CachedStatus Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusAt 按给定时刻重新推导状态。
func (p *Promotion) StatusAt(now time.Time) Status {
	return ComputeStatus(p.StartDate, p.EndDate, now)
}

// Validate 校验创建/更新时的不变量，违反时返回对应的校验错误。
// 校验错误同步抛给调用方，不进入任何重试路径。
func (p *Promotion) Validate() error {
	if !p.EndDate.After(p.StartDate) {
		return ErrInvalidDateRange
	}
	switch p.DiscountKind {
	case DiscountFlat:
		if p.DiscountValue <= 0 {
			return ErrInvalidDiscount
		}
	case DiscountPercentage:
		if p.DiscountValue <= 0 || p.DiscountValue > 100 {
			return ErrInvalidDiscount
		}
	default:
		return ErrUnknownDiscountKind
	}
	if p.UsageCap < 0 {
		return ErrInvalidUsageCap
	}
	return nil
}

// DiscountAmount 计算给定小计金额下的优惠额，结果不会超过小计本身。
func (p *Promotion) DiscountAmount(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	var discount float64
	switch p.DiscountKind {
	case DiscountFlat:
		discount = p.DiscountValue
	case DiscountPercentage:
		discount = subtotal * p.DiscountValue / 100
	}
	return math.Min(discount, subtotal)
}

// Fact 是规则引擎评估适用性时的输入事实。
type Fact struct {
	ProductID string  `json:"product_id"`
	Category  string  `json:"category"`
	BranchID  string  `json:"branch_id"`
	Subtotal  float64 `json:"subtotal"`
}

// AppliesTo 判断促销是否适用于给定的商品事实。
// 配置了 CEL 规则时以规则为准，否则退回到显式的集合匹配。
func (p *Promotion) AppliesTo(fact Fact, engine RuleEngine) (bool, error) {
	if p.TargetRule != "" {
		if engine == nil {
			return false, ErrRuleEngineRequired
		}
		return engine.Evaluate(p.TargetRule, fact)
	}
	if len(p.TargetProductIDs) == 0 && len(p.TargetCategories) == 0 {
		return true, nil
	}
	for _, id := range p.TargetProductIDs {
		if id == fact.ProductID {
			return true, nil
		}
	}
	for _, c := range p.TargetCategories {
		if c == fact.Category {
			return true, nil
		}
	}
	return false, nil
}
