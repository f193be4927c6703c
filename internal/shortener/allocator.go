package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serroba/snowlink/internal/base62"
	"github.com/serroba/snowlink/internal/snowflake"
	"go.uber.org/zap"
)

// MaxGenerateAttempts bounds the generated code path. Collisions found by the
// existence check and uniqueness violations on save both consume an attempt.
const MaxGenerateAttempts = 3

// IDGenerator issues strictly increasing identifiers.
type IDGenerator interface {
	NextID() (snowflake.ID, error)
}

// Request is one shorten call.
type Request struct {
	LongURL     string
	CustomAlias string
	OwnerID     string
	// BaseURL is the service's own base URL, used to refuse self references.
	BaseURL string
}

// Allocation is the outcome of Allocate. Existing is set when the long URL
// was already mapped and nothing was written.
type Allocation struct {
	Mapping  *Mapping
	Existing bool
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithNow replaces the clock used for CreatedAt. Readings are truncated to
// microseconds, the finest precision every store keeps.
func WithNow(now func() time.Time) Option {
	return func(a *Allocator) {
		a.now = now
	}
}

// Allocator turns long URLs into durable short codes. It is the only writer
// of mappings.
type Allocator struct {
	store  Repository
	ids    IDGenerator
	logger *zap.Logger
	now    func() time.Time
}

// NewAllocator creates an allocator over store and ids.
func NewAllocator(store Repository, ids IDGenerator, logger *zap.Logger, opts ...Option) *Allocator {
	a := &Allocator{
		store:  store,
		ids:    ids,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Allocate returns the short code for req.LongURL, creating a mapping when
// the normalized URL is not mapped yet. An existing mapping wins over a
// requested alias.
func (a *Allocator) Allocate(ctx context.Context, req Request) (*Allocation, error) {
	longURL, err := NormalizeURL(req.LongURL)
	if err != nil {
		return nil, err
	}

	if IsSelfReference(longURL, req.BaseURL) {
		return nil, newError(KindInvalidURL,
			"cannot shorten a url from this service, provide the original long url", nil)
	}

	existing, err := a.store.FindByLongURL(ctx, longURL)
	if err == nil {
		a.logger.Debug("long url already mapped",
			zap.String("code", string(existing.Code)),
		)

		return &Allocation{Mapping: existing, Existing: true}, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find by long url: %w", err)
	}

	owner := normalizeOwner(req.OwnerID)

	if alias := strings.TrimSpace(req.CustomAlias); alias != "" {
		return a.reserveAlias(ctx, Code(alias), longURL, owner)
	}

	return a.generate(ctx, longURL, owner)
}

// Resolve returns the long URL stored for code, exactly as stored.
func (a *Allocator) Resolve(ctx context.Context, code string) (string, error) {
	mapping, err := a.store.GetByCode(ctx, Code(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", newError(KindNotFound, "short code not found: "+code, nil)
		}

		return "", fmt.Errorf("get by code: %w", err)
	}

	return mapping.LongURL, nil
}

// MetricsByOwner counts mappings per owner. Mappings without an owner are
// not reported.
func (a *Allocator) MetricsByOwner(ctx context.Context) ([]OwnerCount, error) {
	counts, err := a.store.CountByOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by owner: %w", err)
	}

	return counts, nil
}

// DecodeCode turns a generated short code back into its identifier.
func DecodeCode(code Code) (snowflake.ID, error) {
	n, err := base62.Decode(string(code))
	if err != nil {
		return 0, newError(KindInvalidSymbol, "short code is not a generated code", err)
	}

	return snowflake.ID(n), nil
}

func (a *Allocator) reserveAlias(ctx context.Context, alias Code, longURL string, owner *string) (*Allocation, error) {
	if err := ValidateAlias(string(alias)); err != nil {
		return nil, err
	}

	taken, err := a.store.ExistsByCode(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("exists by code: %w", err)
	}

	if taken {
		return nil, newError(KindAliasConflict, "alias already in use", nil)
	}

	mapping := &Mapping{
		Code:      alias,
		LongURL:   longURL,
		CreatedAt: a.stamp(),
		Custom:    true,
		OwnerID:   owner,
	}

	if err := a.store.Save(ctx, mapping); err != nil {
		if errors.Is(err, ErrCodeTaken) {
			return nil, newError(KindAliasConflict, "alias already in use", err)
		}

		return nil, fmt.Errorf("save mapping: %w", err)
	}

	return &Allocation{Mapping: mapping}, nil
}

func (a *Allocator) stamp() time.Time {
	return a.now().UTC().Truncate(time.Microsecond)
}

func (a *Allocator) generate(ctx context.Context, longURL string, owner *string) (*Allocation, error) {
	for attempt := 1; attempt <= MaxGenerateAttempts; attempt++ {
		id, err := a.ids.NextID()
		if err != nil {
			if errors.Is(err, snowflake.ErrClockRegression) {
				a.logger.Error("identifier generator refused to issue", zap.Error(err))

				return nil, newError(KindClockRegression, "identifier generator refused to issue", err)
			}

			return nil, fmt.Errorf("next id: %w", err)
		}

		code := Code(base62.Encode(uint64(id)))

		taken, err := a.store.ExistsByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exists by code: %w", err)
		}

		if taken {
			a.logger.Warn("generated short code collides",
				zap.String("code", string(code)),
				zap.Int("attempt", attempt),
			)

			continue
		}

		mapping := &Mapping{
			Code:      code,
			LongURL:   longURL,
			CreatedAt: a.stamp(),
			Custom:    false,
			OwnerID:   owner,
		}

		err = a.store.Save(ctx, mapping)
		if err == nil {
			return &Allocation{Mapping: mapping}, nil
		}

		if !errors.Is(err, ErrCodeTaken) {
			return nil, fmt.Errorf("save mapping: %w", err)
		}

		a.logger.Warn("short code taken on save",
			zap.String("code", string(code)),
			zap.Int("attempt", attempt),
		)
	}

	a.logger.Error("short code space exhausted",
		zap.Int("attempts", MaxGenerateAttempts),
	)

	return nil, newError(KindExhaustedRetries,
		fmt.Sprintf("failed to generate unique short code after %d attempts", MaxGenerateAttempts), nil)
}

func normalizeOwner(ownerID string) *string {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return nil
	}

	return &owner
}
