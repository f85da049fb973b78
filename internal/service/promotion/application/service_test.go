package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"agrimart/internal/service/promotion/application"
	"agrimart/internal/service/promotion/domain"
)

// --- Mock Promotion Repository ---

type mockPromotionRepo struct {
	mu     sync.Mutex
	promos map[string]*domain.Promotion
}

func newMockPromotionRepo() *mockPromotionRepo {
	return &mockPromotionRepo{promos: make(map[string]*domain.Promotion)}
}

func (m *mockPromotionRepo) Create(_ context.Context, p *domain.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *p
	m.promos[p.ID] = &clone
	return nil
}

func (m *mockPromotionRepo) Save(_ context.Context, p *domain.Promotion) error {
	return m.Create(context.Background(), p)
}

func (m *mockPromotionRepo) FindByID(_ context.Context, id string) (*domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok {
		return nil, domain.ErrPromotionNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockPromotionRepo) FindAll(_ context.Context) ([]*domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*domain.Promotion
	for _, p := range m.promos {
		clone := *p
		all = append(all, &clone)
	}
	return all, nil
}

func (m *mockPromotionRepo) FindEndingBetween(_ context.Context, from, to time.Time) ([]*domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Promotion
	for _, p := range m.promos {
		if p.EndDate.After(from) && !p.EndDate.After(to) {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockPromotionRepo) FindStatusDrift(_ context.Context, now time.Time) ([]*domain.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var drifted []*domain.Promotion
	for _, p := range m.promos {
		if p.StatusAt(now) != p.CachedStatus {
			clone := *p
			drifted = append(drifted, &clone)
		}
	}
	return drifted, nil
}

func (m *mockPromotionRepo) UpdateCachedStatus(_ context.Context, id string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.promos[id]; ok {
		p.CachedStatus = status
	}
	return nil
}

func (m *mockPromotionRepo) RecordUsage(_ context.Context, id string, count int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.promos[id]; ok && p.UsageCount < count {
		p.UsageCount = count
	}
	return nil
}

func (m *mockPromotionRepo) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.promos, id)
	return nil
}

// --- Mock Usage Counter ---

type mockCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMockCounter() *mockCounter {
	return &mockCounter{counts: make(map[string]int64)}
}

func (m *mockCounter) Incr(_ context.Context, promotionID string, cap int64) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, 0, m.err
	}
	current := m.counts[promotionID]
	if cap > 0 && current >= cap {
		return false, current, nil
	}
	current++
	m.counts[promotionID] = current
	return true, current, nil
}

// --- Mock Post Planner ---

type mockPlanner struct {
	announced []string
	refreshed []string
	cancelled []string
	err       error
}

func (m *mockPlanner) PlanAnnouncement(_ context.Context, p *domain.Promotion, _ time.Time) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.announced = append(m.announced, p.ID)
	return 1, nil
}

func (m *mockPlanner) RefreshPendingContent(_ context.Context, p *domain.Promotion) (int, error) {
	m.refreshed = append(m.refreshed, p.ID)
	return 1, nil
}

func (m *mockPlanner) CancelForPromotion(_ context.Context, promotionID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.cancelled = append(m.cancelled, promotionID)
	return 2, nil
}

// --- Helpers ---

func newTestService(repo *mockPromotionRepo, counter *mockCounter, planner *mockPlanner) *application.PromotionService {
	return application.NewPromotionService(repo, counter, nil, planner, noop.NewTracerProvider().Tracer("test"))
}

func activeRequest() *application.CreatePromotionRequest {
	now := time.Now().UTC()
	return &application.CreatePromotionRequest{
		Title:         "Planting Season Sale",
		Description:   "All seeds discounted.",
		StartDate:     now.Add(-24 * time.Hour),
		EndDate:       now.Add(5 * 24 * time.Hour),
		DiscountKind:  "FLAT",
		DiscountValue: 50,
		AutoPost:      true,
	}
}

// --- Tests ---

func TestCreatePromotion_PlansAnnouncement(t *testing.T) {
	repo := newMockPromotionRepo()
	planner := &mockPlanner{}
	svc := newTestService(repo, newMockCounter(), planner)

	view, err := svc.CreatePromotion(context.Background(), activeRequest())
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), view.Status)
	assert.Equal(t, []string{view.ID}, planner.announced)
}

func TestCreatePromotion_ValidationFailureDoesNotPersist(t *testing.T) {
	repo := newMockPromotionRepo()
	planner := &mockPlanner{}
	svc := newTestService(repo, newMockCounter(), planner)

	req := activeRequest()
	req.EndDate = req.StartDate.Add(-time.Hour)

	_, err := svc.CreatePromotion(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.Empty(t, repo.promos)
	assert.Empty(t, planner.announced)
}

func TestCreatePromotion_PlannerFailureIsNotFatal(t *testing.T) {
	repo := newMockPromotionRepo()
	planner := &mockPlanner{err: errors.New("settings store down")}
	svc := newTestService(repo, newMockCounter(), planner)

	view, err := svc.CreatePromotion(context.Background(), activeRequest())
	require.NoError(t, err, "promotion creation must not roll back on planner errors")
	assert.Len(t, repo.promos, 1)
	assert.NotEmpty(t, view.ID)
}

func TestDeletePromotion_CascadesCancellation(t *testing.T) {
	repo := newMockPromotionRepo()
	planner := &mockPlanner{}
	svc := newTestService(repo, newMockCounter(), planner)

	view, err := svc.CreatePromotion(context.Background(), activeRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeletePromotion(context.Background(), view.ID))
	assert.Equal(t, []string{view.ID}, planner.cancelled)
	assert.Empty(t, repo.promos)
}

func TestUpdatePromotion_RefreshesPendingContent(t *testing.T) {
	repo := newMockPromotionRepo()
	planner := &mockPlanner{}
	svc := newTestService(repo, newMockCounter(), planner)

	view, err := svc.CreatePromotion(context.Background(), activeRequest())
	require.NoError(t, err)

	req := &application.UpdatePromotionRequest{ID: view.ID, CreatePromotionRequest: *activeRequest()}
	req.Title = "Extended Sale"

	updated, err := svc.UpdatePromotion(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Extended Sale", updated.Title)
	assert.Equal(t, []string{view.ID}, planner.refreshed)
}

func TestRedeem_Success(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestService(repo, newMockCounter(), &mockPlanner{})

	view, err := svc.CreatePromotion(context.Background(), activeRequest())
	require.NoError(t, err)

	resp, err := svc.Redeem(context.Background(), &application.RedeemRequest{
		PromotionID: view.ID,
		ProductID:   "seed-001",
		Subtotal:    200,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 50.0, resp.DiscountAmount)
	assert.Equal(t, 150.0, resp.FinalAmount)
	assert.Equal(t, int64(1), resp.UsageCount)

	// 镜像计数回写到了仓储
	saved, _ := repo.FindByID(context.Background(), view.ID)
	assert.Equal(t, int64(1), saved.UsageCount)
}

func TestRedeem_UsageCapEnforced(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestService(repo, newMockCounter(), &mockPlanner{})

	req := activeRequest()
	req.UsageCap = 2
	view, err := svc.CreatePromotion(context.Background(), req)
	require.NoError(t, err)

	redeem := &application.RedeemRequest{PromotionID: view.ID, ProductID: "seed-001", Subtotal: 100}
	for i := 0; i < 2; i++ {
		_, err := svc.Redeem(context.Background(), redeem)
		require.NoError(t, err)
	}

	_, err = svc.Redeem(context.Background(), redeem)
	assert.ErrorIs(t, err, domain.ErrUsageCapReached)
}

func TestRedeem_NotActive(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestService(repo, newMockCounter(), &mockPlanner{})

	req := activeRequest()
	req.StartDate = time.Now().UTC().Add(24 * time.Hour)
	req.EndDate = req.StartDate.Add(5 * 24 * time.Hour)
	view, err := svc.CreatePromotion(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), &application.RedeemRequest{PromotionID: view.ID, Subtotal: 100})
	assert.ErrorIs(t, err, domain.ErrPromotionNotActive)
}

func TestRedeem_NotApplicable(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestService(repo, newMockCounter(), &mockPlanner{})

	req := activeRequest()
	req.TargetCategories = []string{"Fertilizers"}
	view, err := svc.CreatePromotion(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), &application.RedeemRequest{
		PromotionID: view.ID,
		ProductID:   "tool-009",
		Category:    "Tools",
		Subtotal:    100,
	})
	assert.ErrorIs(t, err, domain.ErrNotApplicable)
}

func TestRedeem_CounterUnavailable(t *testing.T) {
	repo := newMockPromotionRepo()
	counter := newMockCounter()
	counter.err = errors.New("redis gone")
	svc := newTestService(repo, counter, &mockPlanner{})

	view, err := svc.CreatePromotion(context.Background(), activeRequest())
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), &application.RedeemRequest{PromotionID: view.ID, Subtotal: 100})
	assert.Error(t, err)
}

func TestListPromotions_StatusAlwaysRecomputed(t *testing.T) {
	repo := newMockPromotionRepo()
	svc := newTestService(repo, newMockCounter(), &mockPlanner{})

	view, err := svc.CreatePromotion(context.Background(), activeRequest())
	require.NoError(t, err)

	// 把缓存列改坏，列表接口也必须返回现算的状态
	repo.mu.Lock()
	repo.promos[view.ID].CachedStatus = domain.StatusExpired
	repo.mu.Unlock()

	views, err := svc.ListPromotions(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, string(domain.StatusActive), views[0].Status)
}
