// promotion-service/internal/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"agrimart/internal/service/promotion/domain"
)

// GormPromotionRepository 是 domain.PromotionRepository 的 GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository 创建一个新的 GORM 仓储实例
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

func (r *GormPromotionRepository) Create(ctx context.Context, promo *domain.Promotion) error {
	if err := r.db.WithContext(ctx).Create(FromDomainPromotion(promo)).Error; err != nil {
		return pkgerrors.Wrap(err, "failed to insert promotion")
	}
	return nil
}

func (r *GormPromotionRepository) Save(ctx context.Context, promo *domain.Promotion) error {
	// 使用 map 指定更新字段，避免覆盖 usage_count 这类并发写入的列
	updateData := map[string]interface{}{
		"title":              promo.Title,
		"description":        promo.Description,
		"start_date":         promo.StartDate,
		"end_date":           promo.EndDate,
		"discount_kind":      string(promo.DiscountKind),
		"discount_value":     promo.DiscountValue,
		"target_product_ids": joinList(promo.TargetProductIDs),
		"target_categories":  joinList(promo.TargetCategories),
		"target_rule":        promo.TargetRule,
		"show_in_pwa":        promo.ShowInPWA,
		"auto_post":          promo.AutoPost,
		"usage_cap":          promo.UsageCap,
		"cached_status":      promo.CachedStatus,
	}
	err := r.db.WithContext(ctx).Model(&PromotionModel{}).Where("id = ?", promo.ID).Updates(updateData).Error
	return pkgerrors.Wrapf(err, "failed to save promotion %s", promo.ID)
}

func (r *GormPromotionRepository) FindByID(ctx context.Context, id string) (*domain.Promotion, error) {
	var model PromotionModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPromotionNotFound
		}
		return nil, err
	}
	return ToDomainPromotion(&model), nil
}

func (r *GormPromotionRepository) FindAll(ctx context.Context) ([]*domain.Promotion, error) {
	var models []*PromotionModel
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query promotions")
	}
	return toDomainPromotions(models), nil
}

func (r *GormPromotionRepository) FindEndingBetween(ctx context.Context, from, to time.Time) ([]*domain.Promotion, error) {
	var models []*PromotionModel
	err := r.db.WithContext(ctx).
		Where("end_date > ? AND end_date <= ?", from, to).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query promotions by end window")
	}
	return toDomainPromotions(models), nil
}

// FindStatusDrift 找出缓存状态和按 now 推导的状态不一致的促销。
// 推导逻辑和 domain.ComputeStatus 是同一条规则的 SQL 表达。
func (r *GormPromotionRepository) FindStatusDrift(ctx context.Context, now time.Time) ([]*domain.Promotion, error) {
	var models []*PromotionModel
	err := r.db.WithContext(ctx).
		Where("(start_date > ? AND cached_status <> ?)", now, domain.StatusUpcoming).
		Or("(start_date <= ? AND end_date >= ? AND cached_status <> ?)", now, now, domain.StatusActive).
		Or("(end_date < ? AND cached_status <> ?)", now, domain.StatusExpired).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query status drift")
	}
	return toDomainPromotions(models), nil
}

func (r *GormPromotionRepository) UpdateCachedStatus(ctx context.Context, id string, status domain.Status) error {
	err := r.db.WithContext(ctx).Model(&PromotionModel{}).
		Where("id = ?", id).
		Update("cached_status", status).Error
	return pkgerrors.Wrapf(err, "failed to update cached status for promotion %s", id)
}

// RecordUsage 只允许计数前进，防止镜像回写把新计数覆盖成旧值。
func (r *GormPromotionRepository) RecordUsage(ctx context.Context, id string, count int64) error {
	err := r.db.WithContext(ctx).Model(&PromotionModel{}).
		Where("id = ? AND usage_count < ?", id, count).
		Update("usage_count", count).Error
	return pkgerrors.Wrapf(err, "failed to record usage for promotion %s", id)
}

func (r *GormPromotionRepository) SoftDelete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PromotionModel{}).Error
	return pkgerrors.Wrapf(err, "failed to soft delete promotion %s", id)
}

func toDomainPromotions(models []*PromotionModel) []*domain.Promotion {
	promos := make([]*domain.Promotion, len(models))
	for i, m := range models {
		promos[i] = ToDomainPromotion(m)
	}
	return promos
}
