// promotion-service/internal/application/service.go
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agrimart/internal/pkg/logger"
	"agrimart/internal/service/promotion/domain"
	"agrimart/internal/service/promotion/port"
)

// PromotionService 定义了促销服务提供的所有业务用例
type PromotionService struct {
	repo       domain.PromotionRepository
	counter    domain.UsageCounter
	ruleEngine domain.RuleEngine
	planner    port.PostPlanner
	tracer     trace.Tracer
}

// NewPromotionService 创建一个新的促销服务实例
func NewPromotionService(
	repo domain.PromotionRepository,
	counter domain.UsageCounter,
	ruleEngine domain.RuleEngine,
	planner port.PostPlanner,
	tracer trace.Tracer,
) *PromotionService {
	return &PromotionService{
		repo:       repo,
		counter:    counter,
		ruleEngine: ruleEngine,
		planner:    planner,
		tracer:     tracer,
	}
}

// CreatePromotion 创建促销，校验通过后立即为其排公告帖。
func (s *PromotionService) CreatePromotion(ctx context.Context, req *CreatePromotionRequest) (*PromotionView, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreatePromotion")
	defer span.End()

	now := time.Now().UTC()
	promo := &domain.Promotion{
		ID:               uuid.New().String(),
		Title:            req.Title,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		DiscountKind:     domain.DiscountKind(req.DiscountKind),
		DiscountValue:    req.DiscountValue,
		TargetProductIDs: req.TargetProductIDs,
		TargetCategories: req.TargetCategories,
		TargetRule:       req.TargetRule,
		ShowInPWA:        req.ShowInPWA,
		AutoPost:         req.AutoPost,
		UsageCap:         req.UsageCap,
		CachedStatus:     domain.ComputeStatus(req.StartDate, req.EndDate, now),
		CreatedAt:        now,
	}
	if err := promo.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to persist promotion: %w", err)
	}
	span.SetAttributes(attribute.String("promotion.id", promo.ID))

	// 公告帖排期失败不回滚促销本身，后续 tick 会补排
	if n, err := s.planner.PlanAnnouncement(ctx, promo, now); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("promotion_id", promo.ID).Msg("failed to plan announcement jobs")
	} else if n > 0 {
		logger.Ctx(ctx).Info().Str("promotion_id", promo.ID).Int("jobs", n).Msg("announcement jobs planned")
	}

	return toView(promo, now), nil
}

// UpdatePromotion 更新促销，并重渲染其尚未发出的帖子文案。
func (s *PromotionService) UpdatePromotion(ctx context.Context, req *UpdatePromotionRequest) (*PromotionView, error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdatePromotion")
	defer span.End()
	span.SetAttributes(attribute.String("promotion.id", req.ID))

	promo, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := time.Now().UTC()
	promo.Title = req.Title
	promo.Description = req.Description
	promo.StartDate = req.StartDate
	promo.EndDate = req.EndDate
	promo.DiscountKind = domain.DiscountKind(req.DiscountKind)
	promo.DiscountValue = req.DiscountValue
	promo.TargetProductIDs = req.TargetProductIDs
	promo.TargetCategories = req.TargetCategories
	promo.TargetRule = req.TargetRule
	promo.ShowInPWA = req.ShowInPWA
	promo.AutoPost = req.AutoPost
	promo.UsageCap = req.UsageCap
	promo.CachedStatus = promo.StatusAt(now)

	if err := promo.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.repo.Save(ctx, promo); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save promotion: %w", err)
	}

	// 终态任务不动，只刷新还在排队的
	if _, err := s.planner.RefreshPendingContent(ctx, promo); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("promotion_id", promo.ID).Msg("failed to refresh pending job content")
	}
	return toView(promo, now), nil
}

// DeletePromotion 软删除促销并级联取消其待发任务。
func (s *PromotionService) DeletePromotion(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "service.DeletePromotion")
	defer span.End()
	span.SetAttributes(attribute.String("promotion.id", id))

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete promotion: %w", err)
	}
	cancelled, err := s.planner.CancelForPromotion(ctx, id)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("promotion_id", id).Msg("failed to cancel jobs for deleted promotion")
		return nil // 促销已删除，任务取消留给下个 tick 兜底
	}
	logger.Ctx(ctx).Info().Str("promotion_id", id).Int("jobs_cancelled", cancelled).Msg("promotion deleted")
	return nil
}

// ListPromotions 返回全部促销，状态按当前时刻现算。
func (s *PromotionService) ListPromotions(ctx context.Context) ([]*PromotionView, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListPromotions")
	defer span.End()

	promos, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	now := time.Now().UTC()
	views := make([]*PromotionView, len(promos))
	for i, p := range promos {
		views[i] = toView(p, now)
	}
	return views, nil
}

// Redeem 是销售时点应用促销的核心用例。
// 上限检查和计数递增必须原子完成，这里依赖 Redis Lua 脚本实现的
// UsageCounter；MySQL 中的计数只是事后回写的镜像。
func (s *PromotionService) Redeem(ctx context.Context, req *RedeemRequest) (*RedeemResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.Redeem")
	defer span.End()
	span.SetAttributes(
		attribute.String("promotion.id", req.PromotionID),
		attribute.String("product.id", req.ProductID),
	)

	promo, err := s.repo.FindByID(ctx, req.PromotionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 1. 状态永远现算，不信任缓存列
	now := time.Now().UTC()
	if promo.StatusAt(now) != domain.StatusActive {
		return nil, domain.ErrPromotionNotActive
	}

	// 2. 适用范围检查（显式集合或 CEL 规则）
	fact := domain.Fact{
		ProductID: req.ProductID,
		Category:  req.Category,
		BranchID:  req.BranchID,
		Subtotal:  req.Subtotal,
	}
	ok, err := promo.AppliesTo(fact, s.ruleEngine)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to evaluate target rule: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotApplicable
	}

	// 3. 原子递增使用计数，超限即拒绝
	allowed, count, err := s.counter.Incr(ctx, promo.ID, promo.UsageCap)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("usage counter unavailable: %w", err)
	}
	if !allowed {
		return nil, domain.ErrUsageCapReached
	}

	// 4. 回写镜像计数，失败只记日志（Redis 是计数的权威来源）
	if err := s.repo.RecordUsage(ctx, promo.ID, count); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("promotion_id", promo.ID).Msg("failed to mirror usage count")
	}

	discount := promo.DiscountAmount(req.Subtotal)
	logger.Ctx(ctx).Info().
		Str("promotion_id", promo.ID).
		Float64("discount", discount).
		Int64("usage_count", count).
		Msg("promotion redeemed")

	return &RedeemResponse{
		Success:        true,
		DiscountAmount: discount,
		FinalAmount:    req.Subtotal - discount,
		UsageCount:     count,
	}, nil
}

func toView(p *domain.Promotion, now time.Time) *PromotionView {
	return &PromotionView{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		DiscountKind:  string(p.DiscountKind),
		DiscountValue: p.DiscountValue,
		Status:        string(p.StatusAt(now)),
		ShowInPWA:     p.ShowInPWA,
		AutoPost:      p.AutoPost,
		UsageCap:      p.UsageCap,
		UsageCount:    p.UsageCount,
	}
}
