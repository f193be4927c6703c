package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/snowlink/internal/handlers"
	"go.uber.org/zap"
)

// AccessLog logs one line per request once the handler has written its
// response. It must run after RequestMeta to pick up the request id.
func AccessLog(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		meta := handlers.RequestMetaFromContext(ctx.Context())

		logger.Info("request handled",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.URL().Path),
			zap.Int("status", ctx.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", meta.RequestID),
			zap.String("clientIp", meta.ClientIP),
		)
	}
}
