// Package sqlite persists run reports in a SQLite database so successive
// runs can be compared with plain SQL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/output/sqlite/migrations"
)

// Output stores each report as one run with its timeline and cluster rows.
type Output struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Output, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite output: path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite output: mkdir: %w", err)
	}
	dsn := cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite output: ping: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite output: migrations: %w", err)
	}
	return &Output{db: db, now: time.Now}, nil
}

// Write inserts the run, its timeline and its cluster summary in one
// transaction. An empty report is stored with a NULL average.
func (o *Output) Write(ctx context.Context, report model.Report) error {
	if report.RunID == "" {
		return fmt.Errorf("sqlite output: run id is required")
	}

	var avg sql.NullFloat64
	stats, err := report.Stats()
	if err == nil {
		avg = sql.NullFloat64{Float64: stats.AvgPerCluster, Valid: true}
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite output: begin: %w", err)
	}
	defer tx.Rollback()

	scan := report.Scan
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (
		   run_id, created_at, files, lines, kept, no_timestamp, unparsable, empty_ids,
		   num_clusters, num_applications, avg_applications_per_cluster
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, toMillis(o.now()),
		scan.Files, scan.Lines, scan.Kept, scan.NoTimestamp, scan.Unparsable, scan.EmptyIDs,
		stats.Clusters, stats.Applications, avg,
	); err != nil {
		return fmt.Errorf("sqlite output: insert run: %w", err)
	}

	tlStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO timeline (run_id, cluster_id, application_id, app_number, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite output: prepare timeline: %w", err)
	}
	defer tlStmt.Close()
	for _, r := range report.Timeline {
		if _, err := tlStmt.ExecContext(ctx, report.RunID, r.ClusterID, r.ApplicationID, r.AppNumber,
			toMillis(r.StartTime), toMillis(r.EndTime)); err != nil {
			return fmt.Errorf("sqlite output: insert timeline %s: %w", r.ApplicationID, err)
		}
	}

	csStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cluster_summary (run_id, cluster_id, cluster_first_app, cluster_last_app, num_applications)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite output: prepare cluster summary: %w", err)
	}
	defer csStmt.Close()
	for _, c := range report.Clusters {
		if _, err := csStmt.ExecContext(ctx, report.RunID, c.ClusterID,
			toMillis(c.FirstApp), toMillis(c.LastApp), c.NumApplications); err != nil {
			return fmt.Errorf("sqlite output: insert cluster %s: %w", c.ClusterID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite output: commit: %w", err)
	}
	return nil
}

// timeline returns the stored timeline of a run in report order.
func (o *Output) timeline(ctx context.Context, runID string) ([]model.TimelineRow, error) {
	rows, err := o.db.QueryContext(ctx,
		`SELECT cluster_id, application_id, app_number, start_time, end_time
		   FROM timeline WHERE run_id = ?
		  ORDER BY cluster_id, app_number, application_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: query timeline: %w", err)
	}
	defer rows.Close()

	var result []model.TimelineRow
	for rows.Next() {
		var r model.TimelineRow
		var start, end int64
		if err := rows.Scan(&r.ClusterID, &r.ApplicationID, &r.AppNumber, &start, &end); err != nil {
			return nil, fmt.Errorf("sqlite output: scan timeline: %w", err)
		}
		r.StartTime, r.EndTime = fromMillis(start), fromMillis(end)
		result = append(result, r)
	}
	return result, rows.Err()
}

// Close closes the database handle.
func (o *Output) Close() error {
	if o == nil || o.db == nil {
		return nil
	}
	return o.db.Close()
}
