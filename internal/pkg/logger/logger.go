// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Init 初始化全局 zerolog 配置，所有服务在启动时调用一次。
// 日志里统一带上 service 字段，便于在日志平台按服务筛选。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 从 context 中取出 logger。
// 如果当前 context 里有活跃的 Span，会自动附加 trace_id，
// 这样业务日志和 Jaeger 里的链路可以互相关联。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zlog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &zlog.Logger
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasTraceID() {
		withTrace := l.With().Str("trace_id", spanCtx.TraceID().String()).Logger()
		return &withTrace
	}
	return l
}

// WithContext 把带 trace_id 的 logger 注入 context，
// 通常在 HTTP 中间件或 Kafka 消费入口调用。
func WithContext(ctx context.Context) context.Context {
	return Ctx(ctx).WithContext(ctx)
}
