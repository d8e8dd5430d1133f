// Package stats aggregates validation outcomes from the photos table for
// reporting. Figures are computed on read; nothing is precomputed or stored.
package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pool operations the repository needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Overview summarizes every validation run on record.
type Overview struct {
	Total         int64               `json:"total"`
	Approved      int64               `json:"approved"`
	Rejected      int64               `json:"rejected"`
	Pending       int64               `json:"pending"`
	AvgConfidence float64             `json:"avg_confidence"`
	CheckFailures []CheckFailureCount `json:"check_failures"`
}

// CheckFailureCount is the number of stored runs in which a named check
// failed.
type CheckFailureCount struct {
	CheckName string `json:"check_name"`
	Failures  int64  `json:"failures"`
}

// DailyCount is one day's worth of validation runs.
type DailyCount struct {
	Day      time.Time `json:"day"`
	Total    int64     `json:"total"`
	Approved int64     `json:"approved"`
	Rejected int64     `json:"rejected"`
}

// Repository computes aggregate figures over the photos table.
type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Overview returns totals by status, the mean confidence across all stored
// check results, and per-check failure counts sorted by frequency.
func (r *Repository) Overview(ctx context.Context) (*Overview, error) {
	overview := &Overview{}

	countsQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM photos
	`
	err := r.db.QueryRow(ctx, countsQuery).Scan(
		&overview.Total,
		&overview.Approved,
		&overview.Rejected,
		&overview.Pending,
	)
	if err != nil {
		return nil, err
	}

	confidenceQuery := `
		SELECT COALESCE(AVG((r->>'confidence')::float), 0)
		FROM photos, jsonb_array_elements(results) AS r
	`
	if err := r.db.QueryRow(ctx, confidenceQuery).Scan(&overview.AvgConfidence); err != nil {
		return nil, err
	}

	failuresQuery := `
		SELECT r->>'check_name', COUNT(*)
		FROM photos, jsonb_array_elements(results) AS r
		WHERE NOT (r->>'passed')::bool
		GROUP BY 1
		ORDER BY 2 DESC, 1 ASC
	`
	rows, err := r.db.Query(ctx, failuresQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var fc CheckFailureCount
		if err := rows.Scan(&fc.CheckName, &fc.Failures); err != nil {
			return nil, err
		}
		overview.CheckFailures = append(overview.CheckFailures, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overview, nil
}

// Daily returns per-day run counts for the last `days` days, oldest first.
// Days without runs are absent from the result.
func (r *Repository) Daily(ctx context.Context, days int) ([]DailyCount, error) {
	if days <= 0 {
		days = 7
	}

	query := `
		SELECT
			date_trunc('day', created_at),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM photos
		WHERE created_at >= $1
		GROUP BY 1
		ORDER BY 1 ASC
	`

	since := time.Now().AddDate(0, 0, -days)
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Day, &dc.Total, &dc.Approved, &dc.Rejected); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}

	return counts, rows.Err()
}
