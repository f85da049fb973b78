// promotion-service/internal/domain/errors.go
package domain

import "errors"

var (
	ErrPromotionNotFound   = errors.New("promotion not found")
	ErrInvalidDateRange    = errors.New("promotion end date must be after start date")
	ErrInvalidDiscount     = errors.New("discount value is out of range")
	ErrUnknownDiscountKind = errors.New("unknown discount kind")
	ErrInvalidUsageCap     = errors.New("usage cap must not be negative")
	ErrPromotionNotActive  = errors.New("promotion is not active")
	ErrNotApplicable       = errors.New("promotion does not apply to this item")
	ErrUsageCapReached     = errors.New("promotion usage cap reached")
	ErrRuleEngineRequired  = errors.New("promotion has a target rule but no rule engine is configured")
)
