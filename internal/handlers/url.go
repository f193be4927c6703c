package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/serroba/snowlink/internal/analytics"
	"github.com/serroba/snowlink/internal/messaging"
	"github.com/serroba/snowlink/internal/metrics"
	"github.com/serroba/snowlink/internal/shortener"
	"go.uber.org/zap"
)

const (
	redirectCacheControl = "private, max-age=90"
	redirectRobotsTag    = "noindex"
)

// URLHandler handles URL shortening operations.
type URLHandler struct {
	allocator       *shortener.Allocator
	baseURL         string
	publishCreated  messaging.Publish[analytics.MappingCreatedEvent]
	publishResolved messaging.Publish[analytics.MappingResolvedEvent]
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// NewURLHandler creates a new URL handler. baseURL is the public address
// short URLs are built from and the host refused as a shorten target.
func NewURLHandler(
	allocator *shortener.Allocator,
	baseURL string,
	publishCreated messaging.Publish[analytics.MappingCreatedEvent],
	publishResolved messaging.Publish[analytics.MappingResolvedEvent],
	m *metrics.Metrics,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		allocator:       allocator,
		baseURL:         baseURL,
		publishCreated:  publishCreated,
		publishResolved: publishResolved,
		metrics:         m,
		logger:          logger,
	}
}

func (h *URLHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	allocation, err := h.allocator.Allocate(ctx, shortener.Request{
		LongURL:     req.Body.LongURL,
		CustomAlias: req.Body.CustomAlias,
		OwnerID:     req.OwnerID,
		BaseURL:     h.baseURL,
	})
	if err != nil {
		kind := shortener.KindOf(err)
		h.metrics.AllocationFailures.WithLabelValues(kind.String()).Inc()

		if kind == shortener.KindUnknown {
			h.logger.Error("failed to allocate short code", zap.Error(err))
		}

		return nil, toHTTPError(err)
	}

	mapping := allocation.Mapping

	switch {
	case allocation.Existing:
		h.metrics.Allocations.WithLabelValues(metrics.OutcomeExisting).Inc()
	case mapping.Custom:
		h.metrics.Allocations.WithLabelValues(metrics.OutcomeCustom).Inc()
	default:
		h.metrics.Allocations.WithLabelValues(metrics.OutcomeCreated).Inc()
	}

	if !allocation.Existing {
		meta := RequestMetaFromContext(ctx)
		event := &analytics.MappingCreatedEvent{
			Code:      string(mapping.Code),
			LongURL:   mapping.LongURL,
			Custom:    mapping.Custom,
			OwnerID:   mapping.Owner(),
			CreatedAt: mapping.CreatedAt,
			ClientIP:  meta.ClientIP,
			UserAgent: meta.UserAgent,
		}

		if err := h.publishCreated(ctx, event); err != nil {
			h.logger.Error("failed to publish mapping created event",
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}
	}

	resp := &ShortenResponse{}
	resp.Body.ShortCode = string(mapping.Code)
	resp.Body.ShortURL = ShortURL(h.baseURL, mapping.Code)
	resp.Body.CreatedAt = mapping.CreatedAt

	return resp, nil
}

func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	longURL, err := h.allocator.Resolve(ctx, req.Code)
	if err != nil {
		if shortener.KindOf(err) == shortener.KindNotFound {
			h.metrics.Resolves.WithLabelValues(metrics.OutcomeNotFound).Inc()
		} else {
			h.metrics.Resolves.WithLabelValues(metrics.OutcomeError).Inc()
			h.logger.Error("failed to resolve short code",
				zap.String("code", req.Code),
				zap.Error(err),
			)
		}

		return nil, toHTTPError(err)
	}

	h.metrics.Resolves.WithLabelValues(metrics.OutcomeFound).Inc()

	meta := RequestMetaFromContext(ctx)
	event := &analytics.MappingResolvedEvent{
		Code:       req.Code,
		LongURL:    longURL,
		ResolvedAt: time.Now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err = h.publishResolved(ctx, event); err != nil {
		h.logger.Error("failed to publish mapping resolved event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:       http.StatusMovedPermanently,
		Location:     longURL,
		CacheControl: redirectCacheControl,
		RobotsTag:    redirectRobotsTag,
	}, nil
}

func (h *URLHandler) UserMetrics(ctx context.Context, _ *struct{}) (*UserMetricsResponse, error) {
	counts, err := h.allocator.MetricsByOwner(ctx)
	if err != nil {
		h.logger.Error("failed to count mappings by owner", zap.Error(err))

		return nil, toHTTPError(err)
	}

	resp := &UserMetricsResponse{Body: make([]UserMetric, 0, len(counts))}
	for _, c := range counts {
		resp.Body = append(resp.Body, UserMetric{UserID: c.OwnerID, Count: c.Count})
	}

	return resp, nil
}

// Inspect decodes a generated short code. Aliases outside the base62
// alphabet are rejected; aliases inside it decode to meaningless ids.
func (h *URLHandler) Inspect(_ context.Context, req *InspectRequest) (*InspectResponse, error) {
	id, err := shortener.DecodeCode(shortener.Code(req.Code))
	if err != nil {
		return nil, toHTTPError(err)
	}

	resp := &InspectResponse{}
	resp.Body.Code = req.Code
	resp.Body.ID = id.String()
	resp.Body.Timestamp = id.Timestamp()
	resp.Body.DatacenterID = id.DatacenterID()
	resp.Body.MachineID = id.MachineID()
	resp.Body.Sequence = id.Sequence()

	return resp, nil
}

// ShortURL joins baseURL and code with exactly one slash.
func ShortURL(baseURL string, code shortener.Code) string {
	return strings.TrimRight(baseURL, "/") + "/" + string(code)
}
