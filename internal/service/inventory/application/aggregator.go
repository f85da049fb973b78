// inventory-service/internal/application/aggregator.go
package application

import (
	"fmt"
	"math"
	"sort"
	"time"

	"agrimart/internal/service/inventory/domain"
)

// 平均日耗的启发式：没有销售历史信号时，假设现有库存大约够用 14 天。
const depletionWindowDays = 14

// ItemAlert 是单个商品×门店的低库存条目。
type ItemAlert struct {
	domain.InventorySnapshot
	Urgency        domain.Urgency `json:"urgency"`
	AvgDailyUsage  int64          `json:"avg_daily_usage"`
	DaysUntilEmpty int64          `json:"days_until_empty"`
	ValueAtRisk    float64        `json:"value_at_risk"`
}

// CategoryAggregate 是按分类的汇总。
type CategoryAggregate struct {
	Category   string         `json:"category"`
	Items      int            `json:"items"`
	TotalValue float64        `json:"total_value"`
	MaxUrgency domain.Urgency `json:"max_urgency"`
}

// BranchAggregate 是按门店的汇总。
type BranchAggregate struct {
	BranchID    string  `json:"branch_id"`
	Critical    int     `json:"critical"`
	High        int     `json:"high"`
	Medium      int     `json:"medium"`
	Low         int     `json:"low"`
	ValueAtRisk float64 `json:"value_at_risk"`
}

// SupplierAggregate 是按供应商的汇总。
type SupplierAggregate struct {
	SupplierID  string    `json:"supplier_id"`
	Name        string    `json:"name"`
	Items       int       `json:"items"`
	TotalValue  float64   `json:"total_value"`
	LastOrderAt time.Time `json:"last_order_at"`
}

// Metrics 是整份报表的头部指标。
type Metrics struct {
	TotalItems       int     `json:"total_items"`
	CriticalItems    int     `json:"critical_items"`
	TotalValueAtRisk float64 `json:"total_value_at_risk"`
}

// Report 是一次低库存聚合的完整输出。
// 聚合结果每次重算，不持久化。
type Report struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Items       []ItemAlert         `json:"items"`
	ByCategory  []CategoryAggregate `json:"by_category"`
	ByBranch    []BranchAggregate   `json:"by_branch"`
	BySupplier  []SupplierAggregate `json:"by_supplier"`
	Metrics     Metrics             `json:"metrics"`
}

// Aggregate 把库存快照汇总成按分类/门店/供应商分组的补货报表。
// 输入含负库存时返回校验错误，不做任何部分输出。
func Aggregate(snapshots []domain.InventorySnapshot, now time.Time) (*Report, error) {
	for _, s := range snapshots {
		if s.Available < 0 {
			return nil, fmt.Errorf("%w: product %s at branch %s has available=%d",
				domain.ErrNegativeQuantity, s.ProductID, s.BranchID, s.Available)
		}
	}

	report := &Report{GeneratedAt: now}
	categories := make(map[string]*CategoryAggregate)
	branches := make(map[string]*BranchAggregate)
	suppliers := make(map[string]*SupplierAggregate)

	for _, s := range snapshots {
		urgency := domain.TierFor(s.Available, s.Threshold)
		// 只有低于阈值（含临界）的条目才进入报表
		if urgency == domain.UrgencyLow && s.Available > s.Threshold {
			continue
		}

		avgDaily := int64(math.Max(1, math.Round(float64(s.Available)/depletionWindowDays)))
		var daysLeft int64
		if s.Available > 0 {
			daysLeft = int64(math.Ceil(float64(s.Available) / float64(avgDaily)))
		}
		value := float64(s.Available) * s.UnitCost

		report.Items = append(report.Items, ItemAlert{
			InventorySnapshot: s,
			Urgency:           urgency,
			AvgDailyUsage:     avgDaily,
			DaysUntilEmpty:    daysLeft,
			ValueAtRisk:       value,
		})

		cat, ok := categories[s.Category]
		if !ok {
			cat = &CategoryAggregate{Category: s.Category, MaxUrgency: urgency}
			categories[s.Category] = cat
		}
		cat.Items++
		cat.TotalValue += value
		if urgency.Rank() > cat.MaxUrgency.Rank() {
			cat.MaxUrgency = urgency
		}

		br, ok := branches[s.BranchID]
		if !ok {
			br = &BranchAggregate{BranchID: s.BranchID}
			branches[s.BranchID] = br
		}
		switch urgency {
		case domain.UrgencyCritical:
			br.Critical++
		case domain.UrgencyHigh:
			br.High++
		case domain.UrgencyMedium:
			br.Medium++
		default:
			br.Low++
		}
		br.ValueAtRisk += value

		sup, ok := suppliers[s.SupplierID]
		if !ok {
			sup = &SupplierAggregate{SupplierID: s.SupplierID, Name: s.SupplierName}
			suppliers[s.SupplierID] = sup
		}
		sup.Items++
		sup.TotalValue += value
		if s.LastOrderAt.After(sup.LastOrderAt) {
			sup.LastOrderAt = s.LastOrderAt
		}

		report.Metrics.TotalItems++
		if urgency == domain.UrgencyCritical {
			report.Metrics.CriticalItems++
		}
		report.Metrics.TotalValueAtRisk += value
	}

	// 排序：价值降序，同值时名称升序，保证输出稳定
	for _, c := range categories {
		report.ByCategory = append(report.ByCategory, *c)
	}
	sort.Slice(report.ByCategory, func(i, j int) bool {
		a, b := report.ByCategory[i], report.ByCategory[j]
		if a.TotalValue != b.TotalValue {
			return a.TotalValue > b.TotalValue
		}
		return a.Category < b.Category
	})

	for _, b := range branches {
		report.ByBranch = append(report.ByBranch, *b)
	}
	sort.Slice(report.ByBranch, func(i, j int) bool {
		a, b := report.ByBranch[i], report.ByBranch[j]
		if a.ValueAtRisk != b.ValueAtRisk {
			return a.ValueAtRisk > b.ValueAtRisk
		}
		return a.BranchID < b.BranchID
	})

	for _, s := range suppliers {
		report.BySupplier = append(report.BySupplier, *s)
	}
	sort.Slice(report.BySupplier, func(i, j int) bool {
		a, b := report.BySupplier[i], report.BySupplier[j]
		if a.TotalValue != b.TotalValue {
			return a.TotalValue > b.TotalValue
		}
		return a.Name < b.Name
	})

	// 条目按紧急度降序、剩余天数升序排列，最需要补货的排最前
	sort.Slice(report.Items, func(i, j int) bool {
		a, b := report.Items[i], report.Items[j]
		if a.Urgency.Rank() != b.Urgency.Rank() {
			return a.Urgency.Rank() > b.Urgency.Rank()
		}
		return a.DaysUntilEmpty < b.DaysUntilEmpty
	})

	return report, nil
}
