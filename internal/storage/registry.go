package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"caja/internal/report"

	_ "modernc.org/sqlite"
)

// Registry records every generated report artifact so past downloads
// can be listed and re-served without regenerating them.
type Registry struct {
	db *sql.DB
}

// Entry is one registry row: a generated report plus the tenant it
// belongs to.
type Entry struct {
	report.Generated
	Tenant string
}

func NewRegistry(dbPath string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Registry{db: db}, nil
}

func (r *Registry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Record stores a generated report in the registry
func (r *Registry) Record(ctx context.Context, tenant string, g report.Generated) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, kind, filename, path, row_count, total, tenant, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, string(g.Kind), g.Filename, g.Path, g.Rows, g.Total.String(), tenant,
		g.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	slog.InfoContext(ctx, "Report recorded",
		"id", g.ID,
		"kind", g.Kind,
		"filename", g.Filename,
		"rows", g.Rows,
		"tenant", tenant)

	return nil
}

// List returns the most recent reports for a tenant, newest first
func (r *Registry) List(ctx context.Context, tenant string, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, filename, path, row_count, total, tenant, created_at
		 FROM reports
		 WHERE tenant = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		tenant, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			kind      string
			total     string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Filename, &e.Path, &e.Rows, &total, &e.Tenant, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		e.Kind = report.Kind(kind)
		e.Total, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parse report total %q: %w", total, err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}

	return entries, nil
}

// Get returns one registry entry by report ID
func (r *Registry) Get(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, filename, path, row_count, total, tenant, created_at
		 FROM reports
		 WHERE id = ?`,
		id)

	var (
		e         Entry
		kind      string
		total     string
		createdAt string
	)
	err := row.Scan(&e.ID, &kind, &e.Filename, &e.Path, &e.Rows, &total, &e.Tenant, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan report row: %w", err)
	}
	e.Kind = report.Kind(kind)
	e.Total, err = decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse report total %q: %w", total, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		e.CreatedAt = t
	}

	return &e, nil
}
