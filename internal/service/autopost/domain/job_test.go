package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimart/internal/service/autopost/domain"
)

func pendingJob(scheduledAt time.Time) *domain.PostingJob {
	return &domain.PostingJob{
		ID:          "job-1",
		PageID:      "page-1",
		Kind:        domain.KindAnnouncement,
		Content:     "hello",
		ScheduledAt: scheduledAt,
		Status:      domain.JobPending,
	}
}

func TestJob_HappyPath(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	job := pendingJob(now.Add(-time.Minute))

	assert.True(t, job.IsDue(now))
	require.NoError(t, job.MarkProcessing(now))
	require.NoError(t, job.MarkPublished("fb_123", now))

	assert.Equal(t, domain.JobPublished, job.Status)
	assert.Equal(t, "fb_123", job.ExternalPostID)
	assert.True(t, job.IsTerminal())
}

func TestJob_RetryReschedulesWithDelay(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	job := pendingJob(now)

	require.NoError(t, job.MarkProcessing(now))
	status, err := job.RecordFailure("rate limited", now)
	require.NoError(t, err)

	assert.Equal(t, domain.JobPending, status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, "rate limited", job.LastError)
	assert.Equal(t, now.Add(domain.RetryDelay), job.ScheduledAt)
	assert.False(t, job.IsDue(now))
}

func TestJob_FourthFailureIsTerminal(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	job := pendingJob(now)

	for i := 0; i < 3; i++ {
		require.NoError(t, job.MarkProcessing(now))
		status, err := job.RecordFailure("boom", now)
		require.NoError(t, err)
		assert.Equal(t, domain.JobPending, status)
		now = job.ScheduledAt
	}
	assert.Equal(t, 3, job.RetryCount)

	require.NoError(t, job.MarkProcessing(now))
	status, err := job.RecordFailure("boom", now)
	require.NoError(t, err)

	assert.Equal(t, domain.JobFailed, status)
	assert.Equal(t, 3, job.RetryCount, "retry count stays at the cap after terminal failure")
	assert.True(t, job.IsTerminal())
}

func TestJob_IllegalTransitions(t *testing.T) {
	now := time.Now().UTC()

	published := pendingJob(now)
	require.NoError(t, published.MarkProcessing(now))
	require.NoError(t, published.MarkPublished("fb_1", now))

	assert.ErrorIs(t, published.MarkProcessing(now), domain.ErrIllegalTransition)
	assert.ErrorIs(t, published.Cancel(), domain.ErrIllegalTransition)
	_, err := published.RecordFailure("late", now)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	// 未发布的任务不能刷新互动数据
	pending := pendingJob(now)
	assert.ErrorIs(t, pending.RefreshInsights(domain.Insights{Likes: 3}), domain.ErrIllegalTransition)

	// PROCESSING 中的任务不可取消
	processing := pendingJob(now)
	require.NoError(t, processing.MarkProcessing(now))
	assert.ErrorIs(t, processing.Cancel(), domain.ErrIllegalTransition)
}

func TestJob_CancelPending(t *testing.T) {
	job := pendingJob(time.Now().UTC())
	require.NoError(t, job.Cancel())
	assert.Equal(t, domain.JobCancelled, job.Status)
	assert.True(t, job.IsTerminal())
}

func TestJob_RefreshInsightsOnPublished(t *testing.T) {
	now := time.Now().UTC()
	job := pendingJob(now)
	require.NoError(t, job.MarkProcessing(now))
	require.NoError(t, job.MarkPublished("fb_1", now))

	in := domain.Insights{Reach: 1000, Likes: 42, RefreshedAt: now}
	require.NoError(t, job.RefreshInsights(in))
	assert.Equal(t, in, job.Insights)
	assert.Equal(t, domain.JobPublished, job.Status, "refresh is not a state change")
}
