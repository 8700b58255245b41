package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ratesvc/internal/model"

	"go.uber.org/zap"
)

// PostgresRateStore keeps the rate record in the rate_cache table.
type PostgresRateStore struct {
	db     *sql.DB
	key    string
	logger *zap.SugaredLogger
}

// NewPostgresRateStore creates a PostgresRateStore under CacheKey.
func NewPostgresRateStore(db *sql.DB, logger *zap.SugaredLogger) *PostgresRateStore {
	return &PostgresRateStore{db: db, key: CacheKey, logger: logger}
}

// Load reads the stored table. Missing or undecodable records yield (nil, nil).
func (s *PostgresRateStore) Load(ctx context.Context) (*model.RateTable, error) {
	var rec struct {
		payload   []byte
		fetchedAt sql.NullTime
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM rate_cache WHERE cache_key = $1`, s.key,
	).Scan(&rec.payload, &rec.fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rate record: %w", err)
	}

	table, err := decodePayload(rec.payload, rec.fetchedAt.Time.UTC())
	if err != nil {
		s.logger.Warnw("Discarding unreadable rate record", "key", s.key, "error", err)
		return nil, nil
	}
	return table, nil
}

// Save upserts the stored record.
func (s *PostgresRateStore) Save(ctx context.Context, table *model.RateTable) error {
	payload, err := encodePayload(table)
	if err != nil {
		return err
	}
	query := `INSERT INTO rate_cache (cache_key, pivot, payload, fetched_at)
              VALUES ($1, $2, $3::jsonb, $4)
              ON CONFLICT (cache_key)
              DO UPDATE SET pivot = EXCLUDED.pivot, payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at`
	if _, err := s.db.ExecContext(ctx, query, s.key, table.Pivot(), string(payload), table.FetchedAt().UTC()); err != nil {
		return fmt.Errorf("save rate record: %w", err)
	}
	return nil
}

// Clear removes the stored record.
func (s *PostgresRateStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rate_cache WHERE cache_key = $1`, s.key); err != nil {
		return fmt.Errorf("clear rate record: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *PostgresRateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// PostgresFavoritesStore keeps favorite codes in the favorite_currencies table.
type PostgresFavoritesStore struct {
	db *sql.DB
}

// NewPostgresFavoritesStore creates a PostgresFavoritesStore.
func NewPostgresFavoritesStore(db *sql.DB) *PostgresFavoritesStore {
	return &PostgresFavoritesStore{db: db}
}

// List returns the stored codes in insertion order.
func (s *PostgresFavoritesStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code FROM favorite_currencies ORDER BY added_at, code`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return codes, nil
}

// Add inserts code inside a transaction that locks the table against concurrent adds.
func (s *PostgresFavoritesStore) Add(ctx context.Context, code string, limit int) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add favorite: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `LOCK TABLE favorite_currencies IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock favorites: %w", err)
	}

	var exists bool
	if err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorite_currencies WHERE code = $1)`, code,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check favorite: %w", err)
	}
	if exists {
		return tx.Commit()
	}

	var n int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorite_currencies`).Scan(&n); err != nil {
		return fmt.Errorf("count favorites: %w", err)
	}
	if n >= limit {
		err = ErrFavoritesFull
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO favorite_currencies (code) VALUES ($1) ON CONFLICT (code) DO NOTHING`, code,
	); err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit favorite: %w", err)
	}
	return nil
}

// Remove deletes code. Removing an absent code is a no-op.
func (s *PostgresFavoritesStore) Remove(ctx context.Context, code string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM favorite_currencies WHERE code = $1`, code); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}
