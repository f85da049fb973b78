// autopost-service/internal/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"agrimart/internal/service/autopost/domain"
)

// GormJobRepository 是 domain.JobRepository 的 GORM 实现
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository 创建一个新的 GORM 仓储实例
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

func (r *GormJobRepository) Create(ctx context.Context, job *domain.PostingJob) error {
	model := FromDomainJob(job)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return pkgerrors.Wrap(err, "failed to insert posting job")
	}
	return nil
}

func (r *GormJobRepository) Save(ctx context.Context, job *domain.PostingJob) error {
	model := FromDomainJob(job)
	// Save 覆盖整行，任务记录不大，保持简单
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrapf(err, "failed to save posting job %s", job.ID)
	}
	return nil
}

func (r *GormJobRepository) FindByID(ctx context.Context, id string) (*domain.PostingJob, error) {
	var model PostingJobModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return ToDomainJob(&model), nil
}

func (r *GormJobRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.PostingJob, error) {
	var models []*PostingJobModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", domain.JobPending, now).
		Order("scheduled_at asc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query due jobs")
	}
	return toDomainJobs(models), nil
}

func (r *GormJobRepository) FindPendingByPromotion(ctx context.Context, promotionID string) ([]*domain.PostingJob, error) {
	var models []*PostingJobModel
	err := r.db.WithContext(ctx).
		Where("promotion_id = ? AND status = ?", promotionID, domain.JobPending).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query pending jobs by promotion")
	}
	return toDomainJobs(models), nil
}

func (r *GormJobRepository) ExistsForMilestone(ctx context.Context, promotionID string, kind domain.JobKind, pageID string, scheduledAt time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PostingJobModel{}).
		Where("promotion_id = ? AND kind = ? AND page_id = ? AND scheduled_at = ?", promotionID, kind, pageID, scheduledAt).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to check milestone existence")
	}
	return count > 0, nil
}

func (r *GormJobRepository) ExistsPendingRecurring(ctx context.Context, pageID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PostingJobModel{}).
		Where("page_id = ? AND kind = ? AND status = ?", pageID, domain.KindRecurring, domain.JobPending).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to check pending recurring job")
	}
	return count > 0, nil
}

func (r *GormJobRepository) FindPublishedSince(ctx context.Context, since time.Time) ([]*domain.PostingJob, error) {
	var models []*PostingJobModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND published_at >= ?", domain.JobPublished, since).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query published jobs")
	}
	return toDomainJobs(models), nil
}

func (r *GormJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	// 只清理终态记录，PENDING/PROCESSING 永远保留
	res := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]domain.JobStatus{domain.JobPublished, domain.JobFailed, domain.JobCancelled}, cutoff).
		Delete(&PostingJobModel{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(res.Error, "failed to prune job history")
	}
	return res.RowsAffected, nil
}

func toDomainJobs(models []*PostingJobModel) []*domain.PostingJob {
	jobs := make([]*domain.PostingJob, len(models))
	for i, m := range models {
		jobs[i] = ToDomainJob(m)
	}
	return jobs
}

// GormSettingsRepository 是 domain.SettingsRepository 的 GORM 实现
type GormSettingsRepository struct {
	db *gorm.DB
}

func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) FindEnabled(ctx context.Context) ([]*domain.PageSettings, error) {
	var models []*PageSettingsModel
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query enabled page settings")
	}
	settings := make([]*domain.PageSettings, len(models))
	for i, m := range models {
		settings[i] = ToDomainSettings(m)
	}
	return settings, nil
}

func (r *GormSettingsRepository) FindByPageID(ctx context.Context, pageID string) (*domain.PageSettings, error) {
	var model PageSettingsModel
	err := r.db.WithContext(ctx).Where("page_id = ?", pageID).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}
	return ToDomainSettings(&model), nil
}

func (r *GormSettingsRepository) Save(ctx context.Context, settings *domain.PageSettings) error {
	model := &PageSettingsModel{
		PageID:          settings.PageID,
		Enabled:         settings.Enabled,
		Frequency:       string(settings.Frequency),
		PostTime:        settings.PostTime,
		Timezone:        settings.Timezone,
		ExcludeWeekends: settings.ExcludeWeekends,
		ContentTemplate: settings.ContentTemplate,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrapf(err, "failed to save page settings %s", settings.PageID)
	}
	return nil
}
