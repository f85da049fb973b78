// promotion-service/internal/infrastructure/mapper.go
package infrastructure

import (
	"strings"

	"agrimart/internal/service/promotion/domain"
)

// ToDomainPromotion 将数据库模型转换为领域模型
func ToDomainPromotion(model *PromotionModel) *domain.Promotion {
	if model == nil {
		return nil
	}
	return &domain.Promotion{
		ID:               model.ID,
		Title:            model.Title,
		Description:      model.Description,
		StartDate:        model.StartDate,
		EndDate:          model.EndDate,
		DiscountKind:     domain.DiscountKind(model.DiscountKind),
		DiscountValue:    model.DiscountValue,
		TargetProductIDs: splitList(model.TargetProductIDs),
		TargetCategories: splitList(model.TargetCategories),
		TargetRule:       model.TargetRule,
		ShowInPWA:        model.ShowInPWA,
		AutoPost:         model.AutoPost,
		UsageCap:         model.UsageCap,
		UsageCount:       model.UsageCount,
		CachedStatus:     model.CachedStatus,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// FromDomainPromotion 将领域模型转换为数据库模型
func FromDomainPromotion(p *domain.Promotion) *PromotionModel {
	if p == nil {
		return nil
	}
	return &PromotionModel{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		DiscountKind:     string(p.DiscountKind),
		DiscountValue:    p.DiscountValue,
		TargetProductIDs: joinList(p.TargetProductIDs),
		TargetCategories: joinList(p.TargetCategories),
		TargetRule:       p.TargetRule,
		ShowInPWA:        p.ShowInPWA,
		AutoPost:         p.AutoPost,
		UsageCap:         p.UsageCap,
		UsageCount:       p.UsageCount,
		CachedStatus:     p.CachedStatus,
		CreatedAt:        p.CreatedAt,
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}
