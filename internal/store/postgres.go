package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/snowlink/internal/shortener"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
// short_code is the primary key, so uniqueness holds across processes.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed mapping store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM url_mappings WHERE short_code = $1)`

	var exists bool

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(&exists)

	return exists, err
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	query := `
		SELECT short_code, long_url, created_at, is_custom, owner_id
		FROM url_mappings
		WHERE short_code = $1
	`

	return scanMapping(p.pool.QueryRow(ctx, query, string(code)))
}

// FindByLongURL returns the oldest mapping; concurrent first submissions of
// the same URL may have left more than one.
func (p *PostgresStore) FindByLongURL(ctx context.Context, longURL string) (*shortener.Mapping, error) {
	query := `
		SELECT short_code, long_url, created_at, is_custom, owner_id
		FROM url_mappings
		WHERE long_url = $1
		ORDER BY created_at, short_code
		LIMIT 1
	`

	return scanMapping(p.pool.QueryRow(ctx, query, longURL))
}

// Save truncates mapping.CreatedAt to microseconds, the precision of
// TIMESTAMPTZ, so the caller holds what later reads return.
func (p *PostgresStore) Save(ctx context.Context, mapping *shortener.Mapping) error {
	mapping.CreatedAt = mapping.CreatedAt.Truncate(time.Microsecond)

	query := `
		INSERT INTO url_mappings (short_code, long_url, created_at, is_custom, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (short_code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(mapping.Code),
		mapping.LongURL,
		mapping.CreatedAt,
		mapping.Custom,
		mapping.OwnerID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrCodeTaken
	}

	return nil
}

func (p *PostgresStore) CountByOwner(ctx context.Context) ([]shortener.OwnerCount, error) {
	query := `
		SELECT owner_id, COUNT(*)
		FROM url_mappings
		WHERE owner_id IS NOT NULL
		GROUP BY owner_id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shortener.OwnerCount, error) {
		var c shortener.OwnerCount
		err := row.Scan(&c.OwnerID, &c.Count)

		return c, err
	})
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func scanMapping(row pgx.Row) (*shortener.Mapping, error) {
	var m shortener.Mapping

	err := row.Scan(
		&m.Code,
		&m.LongURL,
		&m.CreatedAt,
		&m.Custom,
		&m.OwnerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	m.CreatedAt = m.CreatedAt.UTC()

	return &m, nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
