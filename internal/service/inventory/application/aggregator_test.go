package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimart/internal/service/inventory/application"
	"agrimart/internal/service/inventory/domain"
)

func snapshot(productID, name, category, branch string, available, threshold int64, unitCost float64) domain.InventorySnapshot {
	return domain.InventorySnapshot{
		ProductID:    productID,
		ProductName:  name,
		Category:     category,
		BranchID:     branch,
		SupplierID:   "sup-1",
		SupplierName: "AgriSupply Co",
		Available:    available,
		Threshold:    threshold,
		UnitCost:     unitCost,
	}
}

func TestAggregate_RejectsNegativeQuantity(t *testing.T) {
	snapshots := []domain.InventorySnapshot{
		snapshot("p1", "Urea", "Fertilizers", "b1", 5, 10, 100),
		snapshot("p2", "Hoe", "Tools", "b1", -1, 10, 50),
	}
	report, err := application.Aggregate(snapshots, time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrNegativeQuantity)
	assert.Nil(t, report, "no partial output on invalid input")
}

func TestAggregate_FiltersHealthyStock(t *testing.T) {
	snapshots := []domain.InventorySnapshot{
		snapshot("p1", "Urea", "Fertilizers", "b1", 100, 10, 1),
		snapshot("p2", "Hoe", "Tools", "b1", 2, 10, 1),
	}
	report, err := application.Aggregate(snapshots, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "p2", report.Items[0].ProductID)
}

func TestAggregate_CategoryRollup(t *testing.T) {
	// Fertilizers：一条 0 库存（临界）和一条 8×100=800 的条目
	snapshots := []domain.InventorySnapshot{
		snapshot("p1", "Urea", "Fertilizers", "b1", 0, 20, 55),
		snapshot("p2", "Compost", "Fertilizers", "b1", 8, 40, 100),
	}
	report, err := application.Aggregate(snapshots, time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, report.ByCategory, 1)
	cat := report.ByCategory[0]
	assert.Equal(t, "Fertilizers", cat.Category)
	assert.Equal(t, 2, cat.Items)
	assert.Equal(t, 800.0, cat.TotalValue)
	assert.Equal(t, domain.UrgencyCritical, cat.MaxUrgency)

	assert.Equal(t, 1, report.Metrics.CriticalItems)
	assert.Equal(t, 2, report.Metrics.TotalItems)
}

func TestAggregate_DepletionEstimate(t *testing.T) {
	snapshots := []domain.InventorySnapshot{
		snapshot("p1", "Urea", "Fertilizers", "b1", 14, 40, 10),
		snapshot("p2", "Compost", "Fertilizers", "b1", 0, 40, 10),
	}
	report, err := application.Aggregate(snapshots, time.Now().UTC())
	require.NoError(t, err)

	byProduct := make(map[string]application.ItemAlert)
	for _, item := range report.Items {
		byProduct[item.ProductID] = item
	}

	// 14 件按 14 天窗口估算：日均 1，还能撑 14 天
	assert.Equal(t, int64(1), byProduct["p1"].AvgDailyUsage)
	assert.Equal(t, int64(14), byProduct["p1"].DaysUntilEmpty)
	// 零库存意味着已经空了
	assert.Equal(t, int64(0), byProduct["p2"].DaysUntilEmpty)
}

func TestAggregate_SortValueDescThenNameAsc(t *testing.T) {
	snapshots := []domain.InventorySnapshot{
		snapshot("p1", "Urea", "Fertilizers", "b1", 4, 10, 100), // 400
		snapshot("p2", "Hoe", "Tools", "b2", 4, 10, 200),        // 800
		snapshot("p3", "Seeds", "Seeds", "b3", 4, 10, 100),      // 400，与 Fertilizers 同值
	}
	report, err := application.Aggregate(snapshots, time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, report.ByCategory, 3)
	assert.Equal(t, "Tools", report.ByCategory[0].Category)
	// 同值时按名称升序
	assert.Equal(t, "Fertilizers", report.ByCategory[1].Category)
	assert.Equal(t, "Seeds", report.ByCategory[2].Category)
}

func TestAggregate_ItemsSortedByUrgency(t *testing.T) {
	snapshots := []domain.InventorySnapshot{
		snapshot("p1", "Urea", "Fertilizers", "b1", 5, 10, 1),   // MEDIUM
		snapshot("p2", "Hoe", "Tools", "b1", 0, 10, 1),          // CRITICAL
		snapshot("p3", "Seeds", "Seeds", "b1", 2, 10, 1),        // HIGH
	}
	report, err := application.Aggregate(snapshots, time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, report.Items, 3)
	assert.Equal(t, domain.UrgencyCritical, report.Items[0].Urgency)
	assert.Equal(t, domain.UrgencyHigh, report.Items[1].Urgency)
	assert.Equal(t, domain.UrgencyMedium, report.Items[2].Urgency)
}

func TestAggregate_BranchRollup(t *testing.T) {
	snapshots := []domain.InventorySnapshot{
		snapshot("p1", "Urea", "Fertilizers", "b1", 0, 10, 10),
		snapshot("p2", "Hoe", "Tools", "b1", 2, 10, 10),
		snapshot("p3", "Seeds", "Seeds", "b2", 5, 10, 10),
	}
	report, err := application.Aggregate(snapshots, time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, report.ByBranch, 2)
	byBranch := make(map[string]application.BranchAggregate)
	for _, b := range report.ByBranch {
		byBranch[b.BranchID] = b
	}
	assert.Equal(t, 1, byBranch["b1"].Critical)
	assert.Equal(t, 1, byBranch["b1"].High)
	assert.Equal(t, 1, byBranch["b2"].Medium)
}
