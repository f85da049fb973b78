// autopost-service/internal/domain/repository.go
package domain

import (
	"context"
	"time"
)

// JobRepository 定义了发帖任务的持久化接口。
type JobRepository interface {
	Create(ctx context.Context, job *PostingJob) error
	Save(ctx context.Context, job *PostingJob) error
	FindByID(ctx context.Context, id string) (*PostingJob, error)
	// FindDue 返回 PENDING 且 scheduled_at <= now 的任务。
	FindDue(ctx context.Context, now time.Time, limit int) ([]*PostingJob, error)
	// FindPendingByPromotion 返回某促销下所有仍为 PENDING 的任务。
	FindPendingByPromotion(ctx context.Context, promotionID string) ([]*PostingJob, error)
	// ExistsForMilestone 判断某促销在某页面、某时刻的某类里程碑任务
	// 是否已经排过（任意状态都算），编排器靠它保证 tick 幂等。
	ExistsForMilestone(ctx context.Context, promotionID string, kind JobKind, pageID string, scheduledAt time.Time) (bool, error)
	// ExistsPendingRecurring 判断某页面是否已有待执行的周期任务。
	ExistsPendingRecurring(ctx context.Context, pageID string) (bool, error)
	// FindPublishedSince 返回 published_at 在 since 之后的任务，用于刷新互动数据。
	FindPublishedSince(ctx context.Context, since time.Time) ([]*PostingJob, error)
	// DeleteOlderThan 清理超过保留期的终态任务，返回删除条数。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SettingsRepository 定义了页面发帖配置的持久化接口。
type SettingsRepository interface {
	FindEnabled(ctx context.Context) ([]*PageSettings, error)
	FindByPageID(ctx context.Context, pageID string) (*PageSettings, error)
	Save(ctx context.Context, settings *PageSettings) error
}
