package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lifesync/pkg/trace"
)

// NewLogger 生产环境 JSON 日志，每条带 service 字段
func NewLogger(service string) *zap.Logger {
	l, err := zap.NewProduction(zap.Fields(zap.String("service", service)))
	if err != nil {
		panic(err)
	}
	return l
}

// NewDevelopment 用于 CLI：输出到 stderr，便于与 JSON 结果分离
func NewDevelopment(level zapcore.Level) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l
}

// WithTrace 从 context 中提取 trace_id 并添加到 logger
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
