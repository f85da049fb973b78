// autopost-service/internal/infrastructure/gorm_model.go
package infrastructure

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	"agrimart/internal/service/autopost/domain"
)

// PostingJobModel 对应数据库中的 posting_job 表
type PostingJobModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	PageID      string `gorm:"index"`
	Kind        string `gorm:"size:20"`
	Content     string `gorm:"type:text"`
	PromotionID string `gorm:"index"`
	ScheduledAt time.Time
	Status      domain.JobStatus `gorm:"size:20;index"`

	RetryCount    int
	LastError     string `gorm:"type:text"`
	LastAttemptAt sql.NullTime

	ExternalPostID string
	PublishedAt    sql.NullTime

	InsightsReach       int64
	InsightsEngagement  int64
	InsightsLikes       int64
	InsightsComments    int64
	InsightsShares      int64
	InsightsClicks      int64
	InsightsRefreshedAt sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定 GORM 应该使用的表名
func (PostingJobModel) TableName() string {
	return "posting_job"
}

// PageSettingsModel 对应数据库中的 page_posting_settings 表
type PageSettingsModel struct {
	PageID          string `gorm:"primaryKey;size:64"`
	Enabled         bool
	Frequency       string `gorm:"size:10"`
	PostTime        string `gorm:"size:5"`
	Timezone        string `gorm:"size:64"`
	ExcludeWeekends bool
	ContentTemplate string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName 指定 GORM 应该使用的表名
func (PageSettingsModel) TableName() string {
	return "page_posting_settings"
}
