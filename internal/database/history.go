package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"media-pipeline/internal/metrics"
)

// Limits for RecentTransforms.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

const insertTransform = `
	INSERT INTO transforms (kind, operation, format, strategy, status, error_kind, error,
		input_bytes, output_bytes, duration_ms, batch_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, ex execer, rec *TransformRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Status != StatusSuccess && rec.Status != StatusError {
		return fmt.Errorf("invalid status %q", rec.Status)
	}
	res, err := ex.ExecContext(ctx, insertTransform,
		rec.Kind, rec.Operation, rec.Format, rec.Strategy, rec.Status, rec.ErrorKind, rec.Error,
		rec.InputBytes, rec.OutputBytes, rec.DurationMs, rec.BatchID, rec.CreatedAt.UnixMilli())
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// RecordTransform appends one record and sets its ID.
func (d *Database) RecordTransform(ctx context.Context, rec *TransformRecord) (err error) {
	start := time.Now()
	defer func() { recordQuery("record_transform", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return insertRecord(ctx, d.db, rec)
}

// RecordTransforms appends records in one transaction. Either every record
// is stored or none is.
func (d *Database) RecordTransforms(ctx context.Context, recs []*TransformRecord) (err error) {
	if len(recs) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { recordQuery("record_batch", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err = insertRecord(ctx, tx, rec); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
			}
			return err
		}
	}
	return tx.Commit()
}

// HistoryFilter narrows RecentTransforms. Empty fields match everything.
type HistoryFilter struct {
	Kind      string
	Operation string
	Status    string
	Limit     int
}

// RecentTransforms returns the newest records first. A zero limit uses
// DefaultHistoryLimit; larger limits are capped at MaxHistoryLimit.
func (d *Database) RecentTransforms(ctx context.Context, filter HistoryFilter) (records []TransformRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("recent_transforms", start, err) }()

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, kind, operation, format, strategy, status, error_kind, error,
			input_bytes, output_bytes, duration_ms, batch_id, created_at
		FROM transforms
		WHERE (? = '' OR kind = ?) AND (? = '' OR operation = ?) AND (? = '' OR status = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		filter.Kind, filter.Kind, filter.Operation, filter.Operation, filter.Status, filter.Status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records = []TransformRecord{}
	for rows.Next() {
		var rec TransformRecord
		var createdMs int64
		if err = rows.Scan(&rec.ID, &rec.Kind, &rec.Operation, &rec.Format, &rec.Strategy, &rec.Status,
			&rec.ErrorKind, &rec.Error, &rec.InputBytes, &rec.OutputBytes, &rec.DurationMs, &rec.BatchID,
			&createdMs); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.UnixMilli(createdMs)
		records = append(records, rec)
	}
	err = rows.Err()
	return records, err
}

// GetStats aggregates the whole ledger.
func (d *Database) GetStats(ctx context.Context) (stats Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("get_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stats = Stats{
		ByKind:      map[string]KindStats{},
		ByOperation: map[string]int{},
	}

	var first, last sql.NullInt64
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(input_bytes), 0), COALESCE(SUM(output_bytes), 0),
			MIN(created_at), MAX(created_at)
		FROM transforms`).Scan(&stats.TotalTransforms, &stats.InputBytes, &stats.OutputBytes, &first, &last)
	if err != nil {
		return stats, err
	}
	if first.Valid {
		t := time.UnixMilli(first.Int64)
		stats.FirstRecordedAt = &t
	}
	if last.Valid {
		t := time.UnixMilli(last.Int64)
		stats.LastRecordedAt = &t
	}

	rows, err := d.db.QueryContext(ctx, `SELECT kind, status, COUNT(*) FROM transforms GROUP BY kind, status`)
	if err != nil {
		return stats, err
	}
	for rows.Next() {
		var kind, status string
		var count int
		if err = rows.Scan(&kind, &status, &count); err != nil {
			rows.Close()
			return stats, err
		}
		ks := stats.ByKind[kind]
		if status == StatusSuccess {
			ks.Success = count
		} else {
			ks.Error += count
		}
		stats.ByKind[kind] = ks
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return stats, err
	}

	rows, err = d.db.QueryContext(ctx, `SELECT operation, COUNT(*) FROM transforms GROUP BY operation`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var op string
		var count int
		if err = rows.Scan(&op, &count); err != nil {
			return stats, err
		}
		stats.ByOperation[op] = count
	}
	err = rows.Err()
	return stats, err
}

// PruneBefore deletes records created before cutoff and returns how many
// were removed.
func (d *Database) PruneBefore(ctx context.Context, cutoff time.Time) (n int64, err error) {
	start := time.Now()
	defer func() { recordQuery("prune_history", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, "DELETE FROM transforms WHERE created_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CollectorStats implements metrics.StatsProvider.
func (d *Database) CollectorStats(ctx context.Context) (metrics.Stats, error) {
	d.UpdateDBMetrics()

	stats, err := d.GetStats(ctx)
	if err != nil {
		return metrics.Stats{}, err
	}
	out := metrics.Stats{
		Transforms:  make(map[string]map[string]int, len(stats.ByKind)),
		InputBytes:  stats.InputBytes,
		OutputBytes: stats.OutputBytes,
		DBFiles:     d.FileSizes(),
	}
	for kind, ks := range stats.ByKind {
		out.Transforms[kind] = map[string]int{StatusSuccess: ks.Success, StatusError: ks.Error}
	}
	return out, nil
}
