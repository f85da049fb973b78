package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"agrimart/internal/service/autopost/application"
	"agrimart/internal/service/autopost/domain"
	"agrimart/internal/service/autopost/infrastructure"
)

func newRunner(jobs *mockJobRepo, publisher *infrastructure.RecordingPublisher) *application.Runner {
	return application.NewRunner(jobs, publisher, noop.NewTracerProvider().Tracer("test"))
}

func dueJob(id string, now time.Time) *domain.PostingJob {
	return &domain.PostingJob{
		ID:          id,
		PageID:      "page-1",
		Kind:        domain.KindAnnouncement,
		Content:     "post content",
		PromotionID: "promo-1",
		ScheduledAt: now.Add(-time.Minute),
		Status:      domain.JobPending,
		CreatedAt:   now.Add(-time.Hour),
	}
}

func TestRunDueJobs_PublishesDueJob(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	publisher := infrastructure.NewRecordingPublisher()
	require.NoError(t, jobs.Create(context.Background(), dueJob("job-1", now)))

	results, err := newRunner(jobs, publisher).RunDueJobs(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.JobPublished, results[0].Status)

	saved, err := jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobPublished, saved.Status)
	assert.NotEmpty(t, saved.ExternalPostID)
	assert.Len(t, publisher.Posts, 1)
}

func TestRunDueJobs_TwoFailuresThenSuccess(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	publisher := infrastructure.NewRecordingPublisher()
	publisher.FailNext = 2
	require.NoError(t, jobs.Create(context.Background(), dueJob("job-1", now)))
	runner := newRunner(jobs, publisher)

	// 两轮失败，每轮任务退回 PENDING 并顺延 5 分钟
	for i := 1; i <= 2; i++ {
		results, err := runner.RunDueJobs(context.Background(), now)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, domain.JobPending, results[0].Status)

		saved, _ := jobs.FindByID(context.Background(), "job-1")
		assert.Equal(t, i, saved.RetryCount)
		now = saved.ScheduledAt
	}

	// 第三次尝试成功
	results, err := runner.RunDueJobs(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.JobPublished, results[0].Status)

	saved, _ := jobs.FindByID(context.Background(), "job-1")
	assert.Equal(t, domain.JobPublished, saved.Status)
	assert.Equal(t, 2, saved.RetryCount)
}

func TestRunDueJobs_FourFailuresExhaustBudget(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	publisher := infrastructure.NewRecordingPublisher()
	publisher.FailNext = 4
	require.NoError(t, jobs.Create(context.Background(), dueJob("job-1", now)))
	runner := newRunner(jobs, publisher)

	for i := 0; i < 4; i++ {
		results, err := runner.RunDueJobs(context.Background(), now)
		require.NoError(t, err)
		require.Len(t, results, 1)
		saved, _ := jobs.FindByID(context.Background(), "job-1")
		now = saved.ScheduledAt.Add(time.Second)
	}

	saved, _ := jobs.FindByID(context.Background(), "job-1")
	assert.Equal(t, domain.JobFailed, saved.Status)
	assert.Equal(t, 3, saved.RetryCount, "retry count is capped at the budget")
	assert.Equal(t, "simulated publish failure", saved.LastError)

	// 终态任务不再被调度
	results, err := runner.RunDueJobs(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunDueJobs_JobsAreIndependent(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	publisher := infrastructure.NewRecordingPublisher()
	publisher.FailNext = 1 // 只有第一个任务失败
	require.NoError(t, jobs.Create(context.Background(), dueJob("job-a", now)))
	require.NoError(t, jobs.Create(context.Background(), dueJob("job-b", now)))

	results, err := newRunner(jobs, publisher).RunDueJobs(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, results, 2)

	savedA, _ := jobs.FindByID(context.Background(), "job-a")
	savedB, _ := jobs.FindByID(context.Background(), "job-b")
	assert.Equal(t, domain.JobPending, savedA.Status, "failed job is rescheduled")
	assert.Equal(t, domain.JobPublished, savedB.Status, "other jobs are unaffected")
}

func TestRunDueJobs_FutureJobsNotTouched(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	future := dueJob("job-1", now)
	future.ScheduledAt = now.Add(time.Hour)
	require.NoError(t, jobs.Create(context.Background(), future))

	results, err := newRunner(jobs, infrastructure.NewRecordingPublisher()).RunDueJobs(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRefreshInsights_UpdatesPublishedJobs(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	publisher := infrastructure.NewRecordingPublisher()
	publisher.InsightsFn = func(pageID, postID string) (domain.Insights, error) {
		return domain.Insights{Reach: 500, Likes: 21}, nil
	}
	require.NoError(t, jobs.Create(context.Background(), dueJob("job-1", now)))
	runner := newRunner(jobs, publisher)

	_, err := runner.RunDueJobs(context.Background(), now)
	require.NoError(t, err)

	refreshed, err := runner.RefreshInsights(context.Background(), now.Add(-24*time.Hour), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	saved, _ := jobs.FindByID(context.Background(), "job-1")
	assert.Equal(t, int64(500), saved.Insights.Reach)
	assert.Equal(t, int64(21), saved.Insights.Likes)
}
