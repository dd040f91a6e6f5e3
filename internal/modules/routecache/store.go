// README: Cache store contract and the Postgres implementation.
package routecache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("cache entry not found")

// Store is the persistence boundary for cached provider responses.
// Implementations must make Touch atomic so hit_count never regresses
// under concurrent lookups.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Upsert(ctx context.Context, e Entry) error
	Touch(ctx context.Context, key string, at time.Time) (hitCount int64, err error)
	SetStale(ctx context.Context, key string, stale bool) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Stats(ctx context.Context) (Stats, error)
}

// PostgresStore persists entries in the route_cache table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	row := s.db.QueryRow(ctx, `
		SELECT key, schema_version, params, payload, first_seen, last_seen, hit_count, stale
		FROM route_cache
		WHERE key = $1`, key,
	)

	var e Entry
	var params []byte
	err := row.Scan(&e.Key, &e.SchemaVersion, &params, &e.Payload,
		&e.FirstSeen, &e.LastSeen, &e.HitCount, &e.Stale)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &e.Params); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, e Entry) error {
	params, err := json.Marshal(e.Params)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO route_cache (key, schema_version, params, payload, first_seen, last_seen, hit_count, stale)
		VALUES ($1, $2, $3, $4, $5, $6, 0, FALSE)
		ON CONFLICT (key) DO UPDATE
		SET schema_version = EXCLUDED.schema_version,
		    params = EXCLUDED.params,
		    payload = EXCLUDED.payload,
		    last_seen = EXCLUDED.last_seen,
		    stale = FALSE`,
		e.Key, e.SchemaVersion, params, e.Payload, e.FirstSeen, e.LastSeen,
	)
	return err
}

func (s *PostgresStore) Touch(ctx context.Context, key string, at time.Time) (int64, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE route_cache
		SET hit_count = hit_count + 1,
		    last_seen = GREATEST(last_seen, $2)
		WHERE key = $1
		RETURNING hit_count`, key, at,
	)
	var n int64
	if err := row.Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return n, nil
}

func (s *PostgresStore) SetStale(ctx context.Context, key string, stale bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE route_cache SET stale = $2 WHERE key = $1`, key, stale)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM route_cache WHERE last_seen < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(hit_count), 0), MIN(first_seen), MAX(first_seen)
		FROM route_cache`,
	)
	var st Stats
	if err := row.Scan(&st.TotalEntries, &st.TotalHits, &st.OldestFirstSeen, &st.NewestFirstSeen); err != nil {
		return Stats{}, err
	}
	return st, nil
}
