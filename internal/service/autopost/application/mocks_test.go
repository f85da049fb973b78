package application_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"agrimart/internal/service/autopost/domain"
)

// --- Mock Job Repository ---

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.PostingJob
	// 注入仓储错误
	failFind error
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*domain.PostingJob)}
}

func (m *mockJobRepo) Create(_ context.Context, job *domain.PostingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *mockJobRepo) Save(_ context.Context, job *domain.PostingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *mockJobRepo) FindByID(_ context.Context, id string) (*domain.PostingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

func (m *mockJobRepo) FindDue(_ context.Context, now time.Time, limit int) ([]*domain.PostingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	var due []*domain.PostingJob
	for _, job := range m.jobs {
		if job.IsDue(now) {
			clone := *job
			due = append(due, &clone)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *mockJobRepo) FindPendingByPromotion(_ context.Context, promotionID string) ([]*domain.PostingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*domain.PostingJob
	for _, job := range m.jobs {
		if job.PromotionID == promotionID && job.Status == domain.JobPending {
			clone := *job
			pending = append(pending, &clone)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

func (m *mockJobRepo) ExistsForMilestone(_ context.Context, promotionID string, kind domain.JobKind, pageID string, scheduledAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.PromotionID == promotionID && job.Kind == kind && job.PageID == pageID && job.ScheduledAt.Equal(scheduledAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockJobRepo) ExistsPendingRecurring(_ context.Context, pageID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.PageID == pageID && job.Kind == domain.KindRecurring && job.Status == domain.JobPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockJobRepo) FindPublishedSince(_ context.Context, since time.Time) ([]*domain.PostingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var published []*domain.PostingJob
	for _, job := range m.jobs {
		if job.Status == domain.JobPublished && job.PublishedAt.After(since) {
			clone := *job
			published = append(published, &clone)
		}
	}
	return published, nil
}

func (m *mockJobRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, job := range m.jobs {
		if job.IsTerminal() && job.CreatedAt.Before(cutoff) {
			delete(m.jobs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockJobRepo) byStatus(status domain.JobStatus) []*domain.PostingJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.PostingJob
	for _, job := range m.jobs {
		if job.Status == status {
			clone := *job
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- Mock Settings Repository ---

type mockSettingsRepo struct {
	pages []*domain.PageSettings
}

func (m *mockSettingsRepo) FindEnabled(_ context.Context) ([]*domain.PageSettings, error) {
	var enabled []*domain.PageSettings
	for _, p := range m.pages {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled, nil
}

func (m *mockSettingsRepo) FindByPageID(_ context.Context, pageID string) (*domain.PageSettings, error) {
	for _, p := range m.pages {
		if p.PageID == pageID {
			return p, nil
		}
	}
	return nil, domain.ErrSettingsNotFound
}

func (m *mockSettingsRepo) Save(_ context.Context, settings *domain.PageSettings) error {
	for i, p := range m.pages {
		if p.PageID == settings.PageID {
			m.pages[i] = settings
			return nil
		}
	}
	m.pages = append(m.pages, settings)
	return nil
}
