// inventory-service/internal/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"database/sql"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"agrimart/internal/service/inventory/domain"
)

// InventorySnapshotModel 对应数据库中的 inventory_snapshot 表
type InventorySnapshotModel struct {
	ProductID    string `gorm:"primaryKey;size:36"`
	BranchID     string `gorm:"primaryKey;size:36"`
	ProductName  string
	Category     string `gorm:"index"`
	SupplierID   string `gorm:"index"`
	SupplierName string
	Available    int64
	Threshold    int64
	UnitCost     float64 `gorm:"type:decimal(10,2)"`
	LastOrderAt  sql.NullTime
	UpdatedAt    time.Time
}

// TableName 指定 GORM 应该使用的表名
func (InventorySnapshotModel) TableName() string {
	return "inventory_snapshot"
}

// GormSnapshotRepository 是 domain.SnapshotRepository 的 GORM 实现
type GormSnapshotRepository struct {
	db *gorm.DB
}

func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

func (r *GormSnapshotRepository) FindAll(ctx context.Context) ([]domain.InventorySnapshot, error) {
	var models []InventorySnapshotModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load inventory snapshots")
	}
	return toDomainSnapshots(models), nil
}

func (r *GormSnapshotRepository) FindByBranch(ctx context.Context, branchID string) ([]domain.InventorySnapshot, error) {
	var models []InventorySnapshotModel
	if err := r.db.WithContext(ctx).Where("branch_id = ?", branchID).Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to load snapshots for branch %s", branchID)
	}
	return toDomainSnapshots(models), nil
}

func toDomainSnapshots(models []InventorySnapshotModel) []domain.InventorySnapshot {
	snapshots := make([]domain.InventorySnapshot, len(models))
	for i, m := range models {
		snapshots[i] = domain.InventorySnapshot{
			ProductID:    m.ProductID,
			ProductName:  m.ProductName,
			Category:     m.Category,
			BranchID:     m.BranchID,
			SupplierID:   m.SupplierID,
			SupplierName: m.SupplierName,
			Available:    m.Available,
			Threshold:    m.Threshold,
			UnitCost:     m.UnitCost,
			LastOrderAt:  m.LastOrderAt.Time,
			UpdatedAt:    m.UpdatedAt,
		}
	}
	return snapshots
}
