package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const migrationLockKey int64 = 0x67657761

const (
	schemaSQL = `
    CREATE TABLE IF NOT EXISTS quote_samples (
        id          BIGSERIAL PRIMARY KEY,
        session_id  TEXT,
        item_id     INTEGER     NOT NULL,
        item_name   TEXT        NOT NULL,
        source      TEXT        NOT NULL,
        sampled_at  TIMESTAMPTZ NOT NULL,
        low         BIGINT,
        high        BIGINT,
        low_volume  BIGINT,
        high_volume BIGINT,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (item_id, source, sampled_at)
    );
    CREATE INDEX IF NOT EXISTS quote_samples_item_time_idx ON quote_samples (item_id, sampled_at DESC);

    CREATE TABLE IF NOT EXISTS alerts (
        id         BIGSERIAL PRIMARY KEY,
        session_id TEXT        NOT NULL,
        item_id    INTEGER     NOT NULL,
        item_name  TEXT        NOT NULL,
        rule       TEXT        NOT NULL,
        direction  TEXT        NOT NULL,
        target     BIGINT      NOT NULL,
        price      BIGINT      NOT NULL,
        channels   TEXT[]      NOT NULL DEFAULT '{}',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE INDEX IF NOT EXISTS alerts_item_time_idx ON alerts (item_id, created_at DESC);`

	advisoryXactLockSQL = `SELECT pg_advisory_xact_lock($1);`

	upsertSampleSQL = `INSERT INTO quote_samples (
        session_id,
        item_id,
        item_name,
        source,
        sampled_at,
        low,
        high,
        low_volume,
        high_volume
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
    )
    ON CONFLICT (item_id, source, sampled_at) DO UPDATE
    SET
        session_id  = EXCLUDED.session_id,
        item_name   = EXCLUDED.item_name,
        low         = EXCLUDED.low,
        high        = EXCLUDED.high,
        low_volume  = EXCLUDED.low_volume,
        high_volume = EXCLUDED.high_volume;`

	sampleColumns = `id, session_id, item_id, item_name, source, sampled_at, low, high, low_volume, high_volume, created_at`

	listSamplesBetweenSQL = `SELECT ` + sampleColumns + `
    FROM quote_samples
    WHERE item_id = $1
      AND sampled_at >= $2
      AND sampled_at < $3
    ORDER BY sampled_at;`

	listRecentSamplesSQL = `SELECT ` + sampleColumns + `
    FROM quote_samples
    WHERE item_id = $1
    ORDER BY sampled_at DESC
    LIMIT $2;`

	countSamplesSQL = `SELECT COUNT(*) FROM quote_samples WHERE item_id = $1;`

	insertAlertSQL = `INSERT INTO alerts (
        session_id,
        item_id,
        item_name,
        rule,
        direction,
        target,
        price,
        channels,
        created_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,COALESCE($9, NOW())
    )
    RETURNING id, created_at;`

	listRecentAlertsSQL = `SELECT
        id,
        session_id,
        item_id,
        item_name,
        rule,
        direction,
        target,
        price,
        channels,
        created_at
    FROM alerts
    WHERE item_id = $1
    ORDER BY created_at DESC
    LIMIT $2;`

	deleteSamplesBeforeSQL = `DELETE FROM quote_samples WHERE sampled_at < $1;`
)

// SampleStore defines operations for quote history persistence.
type SampleStore interface {
	InsertSample(ctx context.Context, sample Sample) error
	UpsertSamples(ctx context.Context, samples []Sample) (int, error)
	ListSamplesBetween(ctx context.Context, itemID int, from, to time.Time) ([]Sample, error)
	ListRecentSamples(ctx context.Context, itemID int, limit int) ([]Sample, error)
	CountSamples(ctx context.Context, itemID int) (int64, error)
	DeleteSamplesBefore(ctx context.Context, olderThan time.Time) (int64, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error)
	ListRecentAlerts(ctx context.Context, itemID int, limit int) ([]AlertRecord, error)
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// Migrate creates the schema. Concurrent callers serialise on an advisory lock.
func (s *Store) Migrate(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, advisoryXactLockSQL, migrationLockKey); err != nil {
		return fmt.Errorf("migration lock: %w", err)
	}
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// InsertSample persists or updates one sample.
func (s *Store) InsertSample(ctx context.Context, sample Sample) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	if _, execErr := pool.Exec(ctx, upsertSampleSQL, sampleArgs(sample)...); execErr != nil {
		return fmt.Errorf("insert sample: %w", execErr)
	}
	return nil
}

// UpsertSamples writes many samples in one batch and returns how many were written.
func (s *Store) UpsertSamples(ctx context.Context, samples []Sample) (int, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, sample := range samples {
		batch.Queue(upsertSampleSQL, sampleArgs(sample)...)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for range samples {
		if _, execErr := results.Exec(); execErr != nil {
			return written, fmt.Errorf("upsert samples: %w", execErr)
		}
		written++
	}
	return written, nil
}

// ListSamplesBetween lists an item's samples within [from, to).
func (s *Store) ListSamplesBetween(ctx context.Context, itemID int, from, to time.Time) ([]Sample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSamplesBetweenSQL, itemID, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list samples between: %w", queryErr)
	}
	defer rows.Close()

	return collectSamples(rows, 0)
}

// ListRecentSamples lists an item's most recent samples, newest first.
func (s *Store) ListRecentSamples(ctx context.Context, itemID int, limit int) ([]Sample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSamplesSQL, itemID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent samples: %w", queryErr)
	}
	defer rows.Close()

	return collectSamples(rows, limit)
}

// CountSamples counts stored samples for an item.
func (s *Store) CountSamples(ctx context.Context, itemID int) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSamplesSQL, itemID).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count samples: %w", scanErr)
	}
	return count, nil
}

// DeleteSamplesBefore prunes history older than the cutoff.
func (s *Store) DeleteSamplesBefore(ctx context.Context, olderThan time.Time) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	tag, execErr := pool.Exec(ctx, deleteSamplesBeforeSQL, olderThan)
	if execErr != nil {
		return 0, fmt.Errorf("delete samples before: %w", execErr)
	}
	return tag.RowsAffected(), nil
}

// InsertAlert persists an alert emission.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, err
	}

	channels := alert.Channels
	if channels == nil {
		channels = []string{}
	}

	var createdAt *time.Time
	if !alert.CreatedAt.IsZero() {
		createdAt = &alert.CreatedAt
	}

	rec := alert
	rec.Channels = channels
	if scanErr := pool.QueryRow(ctx, insertAlertSQL,
		alert.SessionID,
		alert.ItemID,
		alert.ItemName,
		alert.Rule,
		alert.Direction,
		alert.Target,
		alert.Price,
		channels,
		createdAt,
	).Scan(&rec.ID, &rec.CreatedAt); scanErr != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", scanErr)
	}
	return rec, nil
}

// ListRecentAlerts lists an item's most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, itemID int, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, itemID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		var rec AlertRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.ItemID,
			&rec.ItemName,
			&rec.Rule,
			&rec.Direction,
			&rec.Target,
			&rec.Price,
			&rec.Channels,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

func sampleArgs(sample Sample) []any {
	return []any{
		sample.SessionID,
		sample.ItemID,
		sample.ItemName,
		sample.Source,
		sample.SampledAt,
		sample.Low,
		sample.High,
		sample.LowVolume,
		sample.HighVolume,
	}
}

func collectSamples(rows pgx.Rows, capacity int) ([]Sample, error) {
	samples := make([]Sample, 0, capacity)
	for rows.Next() {
		sample, scanErr := scanSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

func scanSample(rows pgx.Rows) (Sample, error) {
	var sample Sample
	if err := rows.Scan(
		&sample.ID,
		&sample.SessionID,
		&sample.ItemID,
		&sample.ItemName,
		&sample.Source,
		&sample.SampledAt,
		&sample.Low,
		&sample.High,
		&sample.LowVolume,
		&sample.HighVolume,
		&sample.CreatedAt,
	); err != nil {
		return Sample{}, err
	}
	return sample, nil
}

var (
	_ SampleStore = (*Store)(nil)
	_ AlertStore  = (*Store)(nil)
)
