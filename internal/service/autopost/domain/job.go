// autopost-service/internal/domain/job.go
package domain

import "time"

// JobStatus 定义了发帖任务的生命周期状态。
type JobStatus string

const (
	JobPending    JobStatus = "PENDING"    // 等待调度
	JobProcessing JobStatus = "PROCESSING" // 正在发布
	JobPublished  JobStatus = "PUBLISHED"  // 已发布（终态，分析字段除外不可变）
	JobFailed     JobStatus = "FAILED"     // 重试耗尽（终态）
	JobCancelled  JobStatus = "CANCELLED"  // 被取消（终态）
)

// JobKind 区分任务的来源。
type JobKind string

const (
	KindAnnouncement JobKind = "ANNOUNCEMENT" // 活动创建时的首发公告
	KindReminder     JobKind = "REMINDER"     // 结束前 N 天的提醒
	KindEndingSoon   JobKind = "ENDING_SOON"  // 结束前 1 天的倒计时
	KindRecurring    JobKind = "RECURRING"    // 页面配置驱动的周期发帖
)

const (
	// MaxRetries 是单个任务允许的最大重试次数。
	// 第 4 次失败（retryCount 已到 3）直接终态化，不再排期。
	MaxRetries = 3
	// RetryDelay 是失败后重新排期的固定延迟。
	RetryDelay = 5 * time.Minute
)

// PostingJob 是一条待发布或重试中的社交发帖任务。
// 状态迁移只能通过下面的方法进行，非法迁移（比如 PUBLISHED 再回
// PENDING）会返回 ErrIllegalTransition，而不是悄悄改字段。
type PostingJob struct {
	ID          string
	PageID      string
	Kind        JobKind
	Content     string
	PromotionID string // 里程碑任务关联的促销，周期任务为空
	ScheduledAt time.Time
	Status      JobStatus

	RetryCount    int
	LastError     string
	LastAttemptAt time.Time

	// 发布成功后由平台回填
	ExternalPostID string
	PublishedAt    time.Time
	Insights       Insights

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Insights 是发布后的互动数据，刷新属于分析字段，不算状态变更。
type Insights struct {
	Reach       int64
	Engagement  int64
	Likes       int64
	Comments    int64
	Shares      int64
	Clicks      int64
	RefreshedAt time.Time
}

// IsTerminal 判断任务是否已经到达终态。
func (j *PostingJob) IsTerminal() bool {
	switch j.Status {
	case JobPublished, JobFailed, JobCancelled:
		return true
	}
	return false
}

// IsDue 判断任务在 now 时刻是否到期可执行。
func (j *PostingJob) IsDue(now time.Time) bool {
	return j.Status == JobPending && !j.ScheduledAt.After(now)
}

// MarkProcessing 占住任务，防止同一任务被并发执行。
func (j *PostingJob) MarkProcessing(now time.Time) error {
	if j.Status != JobPending {
		return ErrIllegalTransition
	}
	j.Status = JobProcessing
	j.LastAttemptAt = now
	return nil
}

// MarkPublished 记录一次成功发布。
func (j *PostingJob) MarkPublished(externalPostID string, now time.Time) error {
	if j.Status != JobProcessing {
		return ErrIllegalTransition
	}
	j.Status = JobPublished
	j.ExternalPostID = externalPostID
	j.PublishedAt = now
	j.LastError = ""
	return nil
}

// RecordFailure 记录一次失败尝试：未超出重试预算时退回 PENDING 并
// 顺延 RetryDelay，超出后进入 FAILED 终态。返回任务落到的状态。
func (j *PostingJob) RecordFailure(cause string, now time.Time) (JobStatus, error) {
	if j.Status != JobProcessing {
		return j.Status, ErrIllegalTransition
	}
	j.RetryCount++
	j.LastError = cause
	if j.RetryCount > MaxRetries {
		// 超出预算，回退计数到上限并终态化
		j.RetryCount = MaxRetries
		j.Status = JobFailed
		return JobFailed, nil
	}
	j.Status = JobPending
	j.ScheduledAt = now.Add(RetryDelay)
	return JobPending, nil
}

// Cancel 取消一个还未执行的任务。对终态任务取消是非法迁移；
// 正在 PROCESSING 的任务不打断，取消只在阶段边界生效。
func (j *PostingJob) Cancel() error {
	if j.Status != JobPending {
		return ErrIllegalTransition
	}
	j.Status = JobCancelled
	return nil
}

// RefreshInsights 更新分析字段，只允许在 PUBLISHED 终态上调用。
func (j *PostingJob) RefreshInsights(in Insights) error {
	if j.Status != JobPublished {
		return ErrIllegalTransition
	}
	j.Insights = in
	return nil
}
