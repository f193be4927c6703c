package middleware

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/snowlink/internal/handlers"
	"github.com/serroba/snowlink/internal/messaging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestMeta is a middleware that adds a request id, client IP, user-agent,
// and referrer to the request context. The request id also becomes the
// correlation id of any event published while serving the request.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		requestID := strings.TrimSpace(ctx.Header(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		meta := handlers.RequestMeta{
			RequestID: requestID,
			ClientIP:  extractClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		newCtx = messaging.WithCorrelationID(newCtx, requestID)
		ctx = huma.WithContext(ctx, newCtx)

		ctx.SetHeader(RequestIDHeader, requestID)

		next(ctx)
	}
}

func extractClientIP(ctx huma.Context) string {
	// Check X-Forwarded-For first (may contain multiple IPs)
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		// Take the first IP (original client)
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP
	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to remote addr
	host := ctx.RemoteAddr()
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}

	return host
}
