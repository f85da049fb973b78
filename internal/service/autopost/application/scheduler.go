// autopost-service/internal/application/scheduler.go
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agrimart/internal/pkg/logger"
	"agrimart/internal/service/autopost/domain"
)

// 里程碑相对结束时间的偏移。提醒在结束前 3 天和 1 天各发一次，
// 倒计时帖在结束前 1 天发。
const (
	reminderLeadLong  = 72 * time.Hour
	reminderLeadShort = 24 * time.Hour
	endingSoonLead    = 24 * time.Hour
)

// Scheduler 负责把促销生命周期事件和页面配置翻译成 PostingJob。
type Scheduler struct {
	jobs     domain.JobRepository
	settings domain.SettingsRepository
	tracer   trace.Tracer
}

// NewScheduler 创建一个新的排期器实例。
func NewScheduler(jobs domain.JobRepository, settings domain.SettingsRepository, tracer trace.Tracer) *Scheduler {
	return &Scheduler{jobs: jobs, settings: settings, tracer: tracer}
}

// PlanAnnouncement 在促销创建时为每个启用自动发帖的页面排一条公告，
// 立即到期。重复调用是幂等的。
func (s *Scheduler) PlanAnnouncement(ctx context.Context, promo PromotionInfo, now time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "scheduler.PlanAnnouncement")
	defer span.End()
	span.SetAttributes(attribute.String("promotion.id", promo.ID))

	if !promo.AutoPost {
		return 0, nil
	}
	return s.planMilestone(ctx, promo, domain.KindAnnouncement, now, now)
}

// PlanMilestones 为进入提醒窗口的促销补齐里程碑任务。
// 已经过去的时刻直接跳过，不做回填。
func (s *Scheduler) PlanMilestones(ctx context.Context, promo PromotionInfo, now time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "scheduler.PlanMilestones")
	defer span.End()
	span.SetAttributes(attribute.String("promotion.id", promo.ID))

	if !promo.AutoPost {
		return 0, nil
	}

	type milestone struct {
		kind domain.JobKind
		at   time.Time
	}
	milestones := []milestone{
		{domain.KindReminder, promo.EndDate.Add(-reminderLeadLong)},
		{domain.KindReminder, promo.EndDate.Add(-reminderLeadShort)},
		{domain.KindEndingSoon, promo.EndDate.Add(-endingSoonLead)},
	}

	created := 0
	for _, m := range milestones {
		if !m.at.After(now) {
			continue // 时刻已过，静默跳过
		}
		n, err := s.planMilestone(ctx, promo, m.kind, m.at, now)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// planMilestone 给每个启用的页面排一条指定类型的任务。
func (s *Scheduler) planMilestone(ctx context.Context, promo PromotionInfo, kind domain.JobKind, at, now time.Time) (int, error) {
	pages, err := s.settings.FindEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load page settings: %w", err)
	}

	created := 0
	for _, page := range pages {
		exists, err := s.jobs.ExistsForMilestone(ctx, promo.ID, kind, page.PageID, at)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		tpl, ok := domain.DefaultTemplates[kind]
		if !ok {
			tpl = domain.DefaultTemplates[domain.KindAnnouncement]
		}
		job := &domain.PostingJob{
			ID:          uuid.New().String(),
			PageID:      page.PageID,
			Kind:        kind,
			Content:     domain.RenderTemplate(tpl, promo.templateData()),
			PromotionID: promo.ID,
			ScheduledAt: at,
			Status:      domain.JobPending,
			CreatedAt:   now,
		}
		if err := s.jobs.Create(ctx, job); err != nil {
			return created, fmt.Errorf("failed to create %s job for page %s: %w", kind, page.PageID, err)
		}
		created++
	}
	if created > 0 {
		logger.Ctx(ctx).Info().
			Str("promotion_id", promo.ID).
			Str("kind", string(kind)).
			Int("jobs", created).
			Msg("milestone jobs enqueued")
	}
	return created, nil
}

// RefreshPendingContent 在促销更新后重渲染其所有 PENDING 任务的文案。
// 终态任务不动。
func (s *Scheduler) RefreshPendingContent(ctx context.Context, promo PromotionInfo) (int, error) {
	ctx, span := s.tracer.Start(ctx, "scheduler.RefreshPendingContent")
	defer span.End()

	pending, err := s.jobs.FindPendingByPromotion(ctx, promo.ID)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, job := range pending {
		tpl, ok := domain.DefaultTemplates[job.Kind]
		if !ok {
			continue
		}
		job.Content = domain.RenderTemplate(tpl, promo.templateData())
		if err := s.jobs.Save(ctx, job); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// CancelForPromotion 级联取消某促销下所有 PENDING 任务，
// 用于促销过期或被删除时。正在执行中的任务不打断。
func (s *Scheduler) CancelForPromotion(ctx context.Context, promotionID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "scheduler.CancelForPromotion")
	defer span.End()
	span.SetAttributes(attribute.String("promotion.id", promotionID))

	pending, err := s.jobs.FindPendingByPromotion(ctx, promotionID)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, job := range pending {
		if err := job.Cancel(); err != nil {
			continue // 状态在并发中变了，跳过即可
		}
		if err := s.jobs.Save(ctx, job); err != nil {
			return cancelled, err
		}
		cancelled++
	}
	if cancelled > 0 {
		logger.Ctx(ctx).Info().
			Str("promotion_id", promotionID).
			Int("jobs", cancelled).
			Msg("pending jobs cancelled for promotion")
	}
	return cancelled, nil
}

// EnqueueRecurring 按页面配置排下一条周期任务。
// 每个页面同一时刻最多只有一条待执行的周期任务。
func (s *Scheduler) EnqueueRecurring(ctx context.Context, now time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "scheduler.EnqueueRecurring")
	defer span.End()

	pages, err := s.settings.FindEnabled(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, page := range pages {
		exists, err := s.jobs.ExistsPendingRecurring(ctx, page.PageID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		fireAt, err := domain.NextFireTime(*page, now)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("page_id", page.PageID).Msg("invalid posting settings, page skipped")
			continue
		}
		job := &domain.PostingJob{
			ID:          uuid.New().String(),
			PageID:      page.PageID,
			Kind:        domain.KindRecurring,
			Content:     page.ContentTemplate,
			ScheduledAt: fireAt,
			Status:      domain.JobPending,
			CreatedAt:   now,
		}
		if err := s.jobs.Create(ctx, job); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
