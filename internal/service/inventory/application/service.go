// inventory-service/internal/application/service.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agrimart/internal/pkg/logger"
	"agrimart/internal/service/inventory/domain"
)

// LowStockService 对外提供低库存报表用例。
type LowStockService struct {
	snapshots domain.SnapshotRepository
	tracer    trace.Tracer
}

// NewLowStockService 创建一个新的服务实例。
func NewLowStockService(snapshots domain.SnapshotRepository, tracer trace.Tracer) *LowStockService {
	return &LowStockService{snapshots: snapshots, tracer: tracer}
}

// Report 拉取全量快照并聚合成补货报表。
func (s *LowStockService) Report(ctx context.Context, now time.Time) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "service.LowStockReport")
	defer span.End()

	rows, err := s.snapshots.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	report, err := Aggregate(rows, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("lowstock.items", report.Metrics.TotalItems),
		attribute.Int("lowstock.critical", report.Metrics.CriticalItems),
	)
	logger.Ctx(ctx).Info().
		Int("items", report.Metrics.TotalItems).
		Int("critical", report.Metrics.CriticalItems).
		Msg("low stock report generated")
	return report, nil
}

// BranchReport 只聚合单个门店的快照。
func (s *LowStockService) BranchReport(ctx context.Context, branchID string, now time.Time) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "service.LowStockBranchReport")
	defer span.End()
	span.SetAttributes(attribute.String("branch.id", branchID))

	rows, err := s.snapshots.FindByBranch(ctx, branchID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return Aggregate(rows, now)
}
