// autopost-service/internal/infrastructure/mapper.go
package infrastructure

import (
	"database/sql"
	"time"

	"agrimart/internal/service/autopost/domain"
)

// ToDomainJob 将数据库模型转换为领域模型
func ToDomainJob(model *PostingJobModel) *domain.PostingJob {
	if model == nil {
		return nil
	}
	return &domain.PostingJob{
		ID:             model.ID,
		PageID:         model.PageID,
		Kind:           domain.JobKind(model.Kind),
		Content:        model.Content,
		PromotionID:    model.PromotionID,
		ScheduledAt:    model.ScheduledAt,
		Status:         model.Status,
		RetryCount:     model.RetryCount,
		LastError:      model.LastError,
		LastAttemptAt:  model.LastAttemptAt.Time,
		ExternalPostID: model.ExternalPostID,
		PublishedAt:    model.PublishedAt.Time,
		Insights: domain.Insights{
			Reach:       model.InsightsReach,
			Engagement:  model.InsightsEngagement,
			Likes:       model.InsightsLikes,
			Comments:    model.InsightsComments,
			Shares:      model.InsightsShares,
			Clicks:      model.InsightsClicks,
			RefreshedAt: model.InsightsRefreshedAt.Time,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// FromDomainJob 将领域模型转换为数据库模型
func FromDomainJob(job *domain.PostingJob) *PostingJobModel {
	if job == nil {
		return nil
	}
	return &PostingJobModel{
		ID:                  job.ID,
		PageID:              job.PageID,
		Kind:                string(job.Kind),
		Content:             job.Content,
		PromotionID:         job.PromotionID,
		ScheduledAt:         job.ScheduledAt,
		Status:              job.Status,
		RetryCount:          job.RetryCount,
		LastError:           job.LastError,
		LastAttemptAt:       nullTime(job.LastAttemptAt),
		ExternalPostID:      job.ExternalPostID,
		PublishedAt:         nullTime(job.PublishedAt),
		InsightsReach:       job.Insights.Reach,
		InsightsEngagement:  job.Insights.Engagement,
		InsightsLikes:       job.Insights.Likes,
		InsightsComments:    job.Insights.Comments,
		InsightsShares:      job.Insights.Shares,
		InsightsClicks:      job.Insights.Clicks,
		InsightsRefreshedAt: nullTime(job.Insights.RefreshedAt),
		CreatedAt:           job.CreatedAt,
	}
}

// ToDomainSettings 将数据库模型转换为领域模型
func ToDomainSettings(model *PageSettingsModel) *domain.PageSettings {
	if model == nil {
		return nil
	}
	return &domain.PageSettings{
		PageID:          model.PageID,
		Enabled:         model.Enabled,
		Frequency:       domain.Frequency(model.Frequency),
		PostTime:        model.PostTime,
		Timezone:        model.Timezone,
		ExcludeWeekends: model.ExcludeWeekends,
		ContentTemplate: model.ContentTemplate,
		UpdatedAt:       model.UpdatedAt,
	}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
