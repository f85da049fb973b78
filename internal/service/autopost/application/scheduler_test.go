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
)

func newScheduler(jobs *mockJobRepo, settings *mockSettingsRepo) *application.Scheduler {
	return application.NewScheduler(jobs, settings, noop.NewTracerProvider().Tracer("test"))
}

func enabledPage(pageID string) *domain.PageSettings {
	return &domain.PageSettings{
		PageID:          pageID,
		Enabled:         true,
		Frequency:       domain.FreqDaily,
		PostTime:        "09:00",
		ContentTemplate: "Visit us today!",
	}
}

func promoInfo(end time.Time) application.PromotionInfo {
	return application.PromotionInfo{
		ID:            "promo-1",
		Title:         "Planting Season Sale",
		Description:   "All seeds discounted.",
		StartDate:     end.AddDate(0, 0, -10),
		EndDate:       end,
		DiscountKind:  "PERCENTAGE",
		DiscountValue: 20,
		AutoPost:      true,
	}
}

func TestPlanAnnouncement_OneJobPerEnabledPage(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	settings := &mockSettingsRepo{pages: []*domain.PageSettings{
		enabledPage("page-1"),
		enabledPage("page-2"),
		{PageID: "page-off", Enabled: false},
	}}
	scheduler := newScheduler(jobs, settings)

	created, err := scheduler.PlanAnnouncement(context.Background(), promoInfo(now.AddDate(0, 0, 10)), now)
	require.NoError(t, err)
	assert.Equal(t, 2, created, "disabled pages get no announcement")

	// 重复排期是幂等的
	created, err = scheduler.PlanAnnouncement(context.Background(), promoInfo(now.AddDate(0, 0, 10)), now)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestPlanAnnouncement_SkipsWhenAutoPostDisabled(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	settings := &mockSettingsRepo{pages: []*domain.PageSettings{enabledPage("page-1")}}

	promo := promoInfo(now.AddDate(0, 0, 10))
	promo.AutoPost = false

	created, err := newScheduler(jobs, settings).PlanAnnouncement(context.Background(), promo, now)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestPlanMilestones_SkipsPastMoments(t *testing.T) {
	// 促销 2 天后结束：end-3d 已经过去，只剩 end-1d 的提醒和倒计时
	now := time.Date(2026, 3, 18, 8, 0, 0, 0, time.UTC)
	end := now.Add(48 * time.Hour)
	jobs := newMockJobRepo()
	settings := &mockSettingsRepo{pages: []*domain.PageSettings{enabledPage("page-1")}}

	created, err := newScheduler(jobs, settings).PlanMilestones(context.Background(), promoInfo(end), now)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	pending, _ := jobs.FindPendingByPromotion(context.Background(), "promo-1")
	kinds := make(map[domain.JobKind]int)
	for _, job := range pending {
		kinds[job.Kind]++
		assert.Equal(t, end.Add(-24*time.Hour), job.ScheduledAt)
	}
	assert.Equal(t, 1, kinds[domain.KindReminder])
	assert.Equal(t, 1, kinds[domain.KindEndingSoon])
}

func TestPlanMilestones_FullWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 10)
	jobs := newMockJobRepo()
	settings := &mockSettingsRepo{pages: []*domain.PageSettings{enabledPage("page-1")}}
	scheduler := newScheduler(jobs, settings)

	created, err := scheduler.PlanMilestones(context.Background(), promoInfo(end), now)
	require.NoError(t, err)
	assert.Equal(t, 3, created, "two reminders plus one ending-soon")

	// 同一促销再排一遍不会产生重复任务
	created, err = scheduler.PlanMilestones(context.Background(), promoInfo(end), now)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestCancelForPromotion_CancelsAllPending(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	settings := &mockSettingsRepo{pages: []*domain.PageSettings{
		enabledPage("page-1"),
		enabledPage("page-2"),
	}}
	scheduler := newScheduler(jobs, settings)

	_, err := scheduler.PlanAnnouncement(context.Background(), promoInfo(now.AddDate(0, 0, 10)), now)
	require.NoError(t, err)

	cancelled, err := scheduler.CancelForPromotion(context.Background(), "promo-1")
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)

	pending, _ := jobs.FindPendingByPromotion(context.Background(), "promo-1")
	assert.Empty(t, pending)
	assert.Len(t, jobs.byStatus(domain.JobCancelled), 2)
}

func TestRefreshPendingContent_RewritesPendingOnly(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	settings := &mockSettingsRepo{pages: []*domain.PageSettings{enabledPage("page-1")}}
	scheduler := newScheduler(jobs, settings)

	promo := promoInfo(now.AddDate(0, 0, 10))
	_, err := scheduler.PlanAnnouncement(context.Background(), promo, now)
	require.NoError(t, err)

	promo.Title = "Extended Planting Season Sale"
	updated, err := scheduler.RefreshPendingContent(context.Background(), promo)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	pending, _ := jobs.FindPendingByPromotion(context.Background(), "promo-1")
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].Content, "Extended Planting Season Sale")
}

func TestEnqueueRecurring_OnePendingPerPage(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	jobs := newMockJobRepo()
	settings := &mockSettingsRepo{pages: []*domain.PageSettings{enabledPage("page-1")}}
	scheduler := newScheduler(jobs, settings)

	created, err := scheduler.EnqueueRecurring(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// 已有待执行的周期任务时不再排新的
	created, err = scheduler.EnqueueRecurring(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, created)

	pending := jobs.byStatus(domain.JobPending)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.KindRecurring, pending[0].Kind)
	assert.Equal(t, "Visit us today!", pending[0].Content)
	assert.Equal(t, time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC), pending[0].ScheduledAt)
}
