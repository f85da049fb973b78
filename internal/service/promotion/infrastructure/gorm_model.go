// promotion-service/internal/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"

	"agrimart/internal/service/promotion/domain"
)

// PromotionModel 对应数据库中的 promotion 表
type PromotionModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string
	Description string `gorm:"type:text"`
	StartDate   time.Time
	EndDate     time.Time `gorm:"index"`

	DiscountKind  string  `gorm:"size:12"`
	DiscountValue float64 `gorm:"type:decimal(10,2)"`

	// 集合字段以逗号分隔存储，读写经由 mapper 转换
	TargetProductIDs string `gorm:"type:text"`
	TargetCategories string `gorm:"type:text"`
	TargetRule       string `gorm:"type:text"`

	ShowInPWA  bool
	AutoPost   bool
	UsageCap   int64
	UsageCount int64

	// 可重建的状态缓存，见 domain.Status 的说明
	CachedStatus domain.Status `gorm:"size:10;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定 GORM 应该使用的表名
func (PromotionModel) TableName() string {
	return "promotion"
}
