package store

import (
	"context"

	"github.com/serroba/snowlink/internal/analytics"
	"github.com/serroba/snowlink/internal/messaging"
	"go.uber.org/zap"
)

// Log is an analytics.Store that writes every event to a structured logger.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new logging analytics store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveMappingCreated(ctx context.Context, event *analytics.MappingCreatedEvent) error {
	l.logger.Info("mapping created event received",
		zap.String("code", event.Code),
		zap.String("longUrl", event.LongURL),
		zap.Bool("custom", event.Custom),
		zap.String("ownerId", event.OwnerID),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("correlationId", messaging.CorrelationIDFromContext(ctx)),
	)

	return nil
}

func (l *Log) SaveMappingResolved(ctx context.Context, event *analytics.MappingResolvedEvent) error {
	l.logger.Info("mapping resolved event received",
		zap.String("code", event.Code),
		zap.Time("resolvedAt", event.ResolvedAt),
		zap.String("referrer", event.Referrer),
		zap.String("correlationId", messaging.CorrelationIDFromContext(ctx)),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Log)(nil)
