// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// 全局 Logger 实例，Init 之前使用默认配置输出到 stderr。
var global = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init 根据服务名初始化全局 Logger。
// 所有服务在启动时（bootstrap.Init）调用一次。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339
	global = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// L 返回全局 Logger。
func L() *zerolog.Logger {
	return &global
}

// Ctx 返回一个绑定了当前追踪上下文的 Logger。
// 如果 ctx 中存在有效的 Span，会自动附加 trace_id / span_id 字段，
// 便于在日志系统中和 Jaeger 链路互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &global
	}
	l := global.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
