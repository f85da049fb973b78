// autopost-service/internal/application/runner.go
package application

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"agrimart/internal/pkg/logger"
	"agrimart/internal/service/autopost/domain"
	"agrimart/internal/service/autopost/port"
)

const (
	// 单次对外部平台调用的超时上限，防止一个卡死的下游拖垮整个 tick
	externalCallTimeout = 30 * time.Second
	// 一次 tick 最多处理的到期任务数
	dueBatchSize = 100
	// 互动数据刷新的并发度
	insightsConcurrency = 4
)

// Runner 执行到期的发帖任务并落实重试策略。
// 任务之间相互独立：单个任务失败只会写进它自己的记录，
// 不会中断、也不会回滚其他任务。
type Runner struct {
	jobs      domain.JobRepository
	publisher port.Publisher
	tracer    trace.Tracer
}

// NewRunner 创建一个新的任务执行器。
func NewRunner(jobs domain.JobRepository, publisher port.Publisher, tracer trace.Tracer) *Runner {
	return &Runner{jobs: jobs, publisher: publisher, tracer: tracer}
}

// RunDueJobs 执行所有到期任务，逐个处理并返回每个任务的结果。
func (r *Runner) RunDueJobs(ctx context.Context, now time.Time) ([]JobResult, error) {
	ctx, span := r.tracer.Start(ctx, "runner.RunDueJobs")
	defer span.End()

	due, err := r.jobs.FindDue(ctx, now, dueBatchSize)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("jobs.due", len(due)))

	results := make([]JobResult, 0, len(due))
	for _, job := range due {
		results = append(results, r.runOne(ctx, job, now))
	}
	return results, nil
}

// runOne 执行单个任务的一次尝试。
func (r *Runner) runOne(ctx context.Context, job *domain.PostingJob, now time.Time) JobResult {
	ctx, span := r.tracer.Start(ctx, "runner.runOne")
	defer span.End()
	span.SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.String("job.kind", string(job.Kind)),
		attribute.Int("job.retry_count", job.RetryCount),
	)

	result := JobResult{JobID: job.ID, PageID: job.PageID, PromotionID: job.PromotionID}

	// 先占住任务再发布，保证同一任务不会被并发尝试
	if err := job.MarkProcessing(now); err != nil {
		result.Status = job.Status
		result.Error = err.Error()
		return result
	}
	if err := r.jobs.Save(ctx, job); err != nil {
		result.Status = job.Status
		result.Error = err.Error()
		return result
	}

	callCtx, cancel := context.WithTimeout(ctx, externalCallTimeout)
	postID, err := r.publisher.CreatePost(callCtx, job.PageID, job.Content)
	cancel()

	if err != nil {
		span.RecordError(err)
		status, trErr := job.RecordFailure(err.Error(), now)
		if trErr != nil {
			result.Status = job.Status
			result.Error = trErr.Error()
			return result
		}
		if saveErr := r.jobs.Save(ctx, job); saveErr != nil {
			result.Status = status
			result.Error = saveErr.Error()
			return result
		}
		if status == domain.JobFailed {
			logger.Ctx(ctx).Error().
				Str("job_id", job.ID).
				Str("last_error", job.LastError).
				Msg("posting job exhausted retry budget")
		}
		result.Status = status
		result.Error = err.Error()
		return result
	}

	if trErr := job.MarkPublished(postID, now); trErr != nil {
		result.Status = job.Status
		result.Error = trErr.Error()
		return result
	}
	if saveErr := r.jobs.Save(ctx, job); saveErr != nil {
		result.Status = job.Status
		result.Error = saveErr.Error()
		return result
	}

	logger.Ctx(ctx).Info().
		Str("job_id", job.ID).
		Str("post_id", postID).
		Str("page_id", job.PageID).
		Msg("post published")
	result.Status = domain.JobPublished
	return result
}

// RefreshInsights 刷新近期发布帖子的互动数据。
// 各帖子之间没有顺序要求，用有界并发拉取。
func (r *Runner) RefreshInsights(ctx context.Context, since, now time.Time) (int, error) {
	ctx, span := r.tracer.Start(ctx, "runner.RefreshInsights")
	defer span.End()

	published, err := r.jobs.FindPublishedSince(ctx, since)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(insightsConcurrency)
	var refreshed atomic.Int64
	for _, job := range published {
		job := job
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, externalCallTimeout)
			insights, err := r.publisher.GetPostInsights(callCtx, job.PageID, job.ExternalPostID)
			cancel()
			if err != nil {
				// 单条刷新失败不阻塞其他帖子，下个 tick 还会再来
				logger.Ctx(gctx).Warn().Err(err).Str("job_id", job.ID).Msg("failed to refresh insights")
				return nil
			}
			insights.RefreshedAt = now
			if err := job.RefreshInsights(insights); err != nil {
				return nil
			}
			if err := r.jobs.Save(gctx, job); err != nil {
				return err
			}
			refreshed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(refreshed.Load()), err
	}
	span.SetAttributes(attribute.Int("insights.refreshed", int(refreshed.Load())))
	return int(refreshed.Load()), nil
}
