// inventory-service/internal/domain/snapshot.go
package domain

import (
	"context"
	"errors"
	"time"
)

// Urgency 是库存告急程度的四级分类。
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
)

// Rank 返回紧急度的数值序，用于聚合时取最大值。
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 4
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	default:
		return 1
	}
}

// TierFor 是紧急度的判定规则，纯函数：
// available=0 => CRITICAL；available/threshold <= 0.25 => HIGH；
// <= 0.5 => MEDIUM；其余 LOW。threshold=0 且有库存时视为 LOW。
func TierFor(available, threshold int64) Urgency {
	if available == 0 {
		return UrgencyCritical
	}
	if threshold <= 0 {
		return UrgencyLow
	}
	ratio := float64(available) / float64(threshold)
	switch {
	case ratio <= 0.25:
		return UrgencyHigh
	case ratio <= 0.5:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// InventorySnapshot 是某商品在某门店的一次库存快照。
// 本服务只读快照，库存变更属于外部的库存主数据系统。
type InventorySnapshot struct {
	ProductID    string
	ProductName  string
	Category     string
	BranchID     string
	SupplierID   string
	SupplierName string

	Available int64
	Threshold int64
	UnitCost  float64

	// LastOrderAt 参与"最近一次订货"的取最大值，必须按时间值比较，
	// 不能按展示字符串比较。
	LastOrderAt time.Time
	UpdatedAt   time.Time
}

// ErrNegativeQuantity 是聚合输入的校验错误。
var ErrNegativeQuantity = errors.New("inventory quantity must not be negative")

// SnapshotRepository 定义了库存快照的读取接口。
type SnapshotRepository interface {
	FindAll(ctx context.Context) ([]InventorySnapshot, error)
	FindByBranch(ctx context.Context, branchID string) ([]InventorySnapshot, error)
}
