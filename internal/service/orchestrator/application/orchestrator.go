// orchestrator-service/internal/application/orchestrator.go
package application

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agrimart/internal/pkg/logger"
	autopostapp "agrimart/internal/service/autopost/application"
	autopostdomain "agrimart/internal/service/autopost/domain"
	inventoryapp "agrimart/internal/service/inventory/application"
	inventorydomain "agrimart/internal/service/inventory/domain"
	"agrimart/internal/service/orchestrator/domain"
	"agrimart/internal/service/orchestrator/port"
	promotiondomain "agrimart/internal/service/promotion/domain"
)

const (
	// 提醒窗口的前瞻宽度，覆盖最早的里程碑（结束前 3 天）
	milestoneLookahead = 72 * time.Hour
	// 互动数据只回看最近一周发布的帖子
	insightsWindow = 7 * 24 * time.Hour
)

// PostPlanner 是编排器需要的排期能力。
type PostPlanner interface {
	PlanMilestones(ctx context.Context, promo autopostapp.PromotionInfo, now time.Time) (int, error)
	EnqueueRecurring(ctx context.Context, now time.Time) (int, error)
	CancelForPromotion(ctx context.Context, promotionID string) (int, error)
}

// JobRunner 是编排器需要的任务执行能力。
type JobRunner interface {
	RunDueJobs(ctx context.Context, now time.Time) ([]autopostapp.JobResult, error)
	RefreshInsights(ctx context.Context, since, now time.Time) (int, error)
}

// JobPruner 清理超过保留期的任务历史。
type JobPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// StockReporter 生成低库存报表。
type StockReporter interface {
	Report(ctx context.Context, now time.Time) (*inventoryapp.Report, error)
}

// Orchestrator 按固定节拍驱动整个促销生命周期：
// 状态对账、里程碑排期、任务执行、互动刷新、历史清理、库存告警。
// 各阶段相互隔离，一个阶段失败不影响其余阶段。
type Orchestrator struct {
	promotions promotiondomain.PromotionRepository
	planner    PostPlanner
	runner     JobRunner
	pruner     JobPruner
	stock      StockReporter
	events     port.EventPublisher
	lock       port.TickLock // 可选，多实例部署时防止重复 tick
	tracer     trace.Tracer

	retentionDays int
	running       atomic.Bool
}

// NewOrchestrator 创建编排器。lock 传 nil 表示单实例部署，不走分布式锁。
func NewOrchestrator(
	promotions promotiondomain.PromotionRepository,
	planner PostPlanner,
	runner JobRunner,
	pruner JobPruner,
	stock StockReporter,
	events port.EventPublisher,
	lock port.TickLock,
	retentionDays int,
	tracer trace.Tracer,
) *Orchestrator {
	return &Orchestrator{
		promotions:    promotions,
		planner:       planner,
		runner:        runner,
		pruner:        pruner,
		stock:         stock,
		events:        events,
		lock:          lock,
		retentionDays: retentionDays,
		tracer:        tracer,
	}
}

// RunTick 执行一轮完整编排并返回结构化报告。
// 上一轮还没结束时，本轮直接跳过并在报告里说明，绝不排队。
func (o *Orchestrator) RunTick(ctx context.Context, now time.Time) *domain.TickReport {
	report := &domain.TickReport{StartedAt: now}

	if !o.running.CompareAndSwap(false, true) {
		report.Skipped = true
		report.SkipReason = "tick already in progress"
		report.FinishedAt = time.Now().UTC()
		ticksTotal.WithLabelValues("skipped").Inc()
		return report
	}
	defer o.running.Store(false)

	if o.lock != nil {
		acquired, err := o.lock.TryLock()
		if err != nil {
			// 锁服务不可用时退回进程内保护，单实例部署不受影响
			logger.Ctx(ctx).Warn().Err(err).Msg("tick lock unavailable, proceeding with local guard only")
		} else if !acquired {
			report.Skipped = true
			report.SkipReason = "another instance holds the tick lock"
			report.FinishedAt = time.Now().UTC()
			ticksTotal.WithLabelValues("skipped").Inc()
			return report
		} else {
			defer func() {
				if err := o.lock.Unlock(); err != nil {
					logger.Ctx(ctx).Warn().Err(err).Msg("failed to release tick lock")
				}
			}()
		}
	}

	timer := prometheus.NewTimer(tickDuration)
	defer timer.ObserveDuration()

	ctx, span := o.tracer.Start(ctx, "orchestrator.RunTick")
	defer span.End()

	o.stage(ctx, report, "promotion_status_cascade", func() (int, error) {
		return o.reconcilePromotionStatus(ctx, now)
	})
	o.stage(ctx, report, "milestone_enqueue", func() (int, error) {
		return o.enqueueUpcomingPosts(ctx, now)
	})
	o.stage(ctx, report, "run_due_jobs", func() (int, error) {
		return o.runDueJobs(ctx, now)
	})
	o.stage(ctx, report, "refresh_insights", func() (int, error) {
		return o.runner.RefreshInsights(ctx, now.Add(-insightsWindow), now)
	})
	o.stage(ctx, report, "prune_history", func() (int, error) {
		pruned, err := o.pruner.DeleteOlderThan(ctx, now.AddDate(0, 0, -o.retentionDays))
		return int(pruned), err
	})
	o.stage(ctx, report, "low_stock_alerts", func() (int, error) {
		return o.emitLowStockAlerts(ctx, now)
	})

	report.FinishedAt = time.Now().UTC()
	span.SetAttributes(attribute.Int("tick.failed_stages", report.FailedStages()))
	if report.FailedStages() > 0 {
		ticksTotal.WithLabelValues("partial").Inc()
	} else {
		ticksTotal.WithLabelValues("ok").Inc()
	}
	return report
}

// stage 运行单个阶段并把结果记入报告。阶段错误只记录，不向上传播。
func (o *Orchestrator) stage(ctx context.Context, report *domain.TickReport, name string, fn func() (int, error)) {
	count, err := fn()
	if err != nil {
		stageErrors.WithLabelValues(name).Inc()
		logger.Ctx(ctx).Error().Err(err).Str("stage", name).Msg("tick stage failed")
	}
	report.AddStage(name, count, err)
}

// reconcilePromotionStatus 把缓存状态与按当前时刻推导的状态对齐。
// 新过期的促销级联取消其待发任务并发出过期事件。
func (o *Orchestrator) reconcilePromotionStatus(ctx context.Context, now time.Time) (int, error) {
	drifted, err := o.promotions.FindStatusDrift(ctx, now)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, promo := range drifted {
		newStatus := promo.StatusAt(now)
		if err := o.promotions.UpdateCachedStatus(ctx, promo.ID, newStatus); err != nil {
			return changed, err
		}
		changed++

		if newStatus != promotiondomain.StatusExpired {
			continue
		}
		cancelled, err := o.planner.CancelForPromotion(ctx, promo.ID)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("promotion_id", promo.ID).Msg("failed to cancel jobs for expired promotion")
		} else {
			jobsCancelled.Add(float64(cancelled))
		}
		event := &domain.PromotionExpired{
			PromotionID: promo.ID,
			Title:       promo.Title,
			EndDate:     promo.EndDate,
			ExpiredAt:   now,
		}
		if err := o.events.PublishPromotionExpired(ctx, event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("promotion_id", promo.ID).Msg("failed to publish expiry event")
		}
	}
	return changed, nil
}

// enqueueUpcomingPosts 为进入提醒窗口的促销补排里程碑任务，
// 并按页面配置排下一条周期任务。
func (o *Orchestrator) enqueueUpcomingPosts(ctx context.Context, now time.Time) (int, error) {
	ending, err := o.promotions.FindEndingBetween(ctx, now, now.Add(milestoneLookahead))
	if err != nil {
		return 0, err
	}

	created := 0
	for _, promo := range ending {
		n, err := o.planner.PlanMilestones(ctx, toPromotionInfo(promo), now)
		if err != nil {
			return created, err
		}
		created += n
	}

	n, err := o.planner.EnqueueRecurring(ctx, now)
	created += n
	return created, err
}

// runDueJobs 执行到期任务，统计结果并为终态失败的任务发事件。
func (o *Orchestrator) runDueJobs(ctx context.Context, now time.Time) (int, error) {
	results, err := o.runner.RunDueJobs(ctx, now)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, res := range results {
		switch res.Status {
		case autopostdomain.JobPublished:
			published++
			jobsPublished.Inc()
		case autopostdomain.JobFailed:
			jobsFailed.Inc()
			event := &domain.PostingJobFailed{
				JobID:       res.JobID,
				PageID:      res.PageID,
				PromotionID: res.PromotionID,
				LastError:   res.Error,
				FailedAt:    now,
			}
			if err := o.events.PublishJobFailed(ctx, event); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("job_id", res.JobID).Msg("failed to publish job failure event")
			}
		}
	}
	return published, nil
}

// emitLowStockAlerts 重算低库存报表并为临界条目发告警事件。
func (o *Orchestrator) emitLowStockAlerts(ctx context.Context, now time.Time) (int, error) {
	stockReport, err := o.stock.Report(ctx, now)
	if err != nil {
		return 0, err
	}
	lowStockCriticalGauge.Set(float64(stockReport.Metrics.CriticalItems))

	emitted := 0
	for _, item := range stockReport.Items {
		if item.Urgency != inventorydomain.UrgencyCritical {
			continue
		}
		event := &domain.LowStockCritical{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			BranchID:    item.BranchID,
			Available:   item.Available,
			Threshold:   item.Threshold,
			DetectedAt:  now,
		}
		if err := o.events.PublishLowStockCritical(ctx, event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("product_id", item.ProductID).Msg("failed to publish low stock event")
			continue
		}
		emitted++
	}
	return emitted, nil
}

func toPromotionInfo(p *promotiondomain.Promotion) autopostapp.PromotionInfo {
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
