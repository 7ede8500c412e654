package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wordcrawl/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "wordcrawl.db"

var (
	// ErrReportNotFound is returned when no report matches an ID.
	ErrReportNotFound = errors.New("crawl report not found")

	// ErrAmbiguousID is returned when an ID prefix matches several reports.
	ErrAmbiguousID = errors.New("crawl report ID prefix is ambiguous")
)

// CrawlDB provides SQLite-based storage for crawl reports.
// Reports are history only: nothing in a stored report feeds a later crawl.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw refuses to create the file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl run; report_json holds the report without its visit log
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		seed TEXT NOT NULL,
		authority TEXT,
		word TEXT,
		status TEXT NOT NULL,
		pages_visited INTEGER NOT NULL DEFAULT 0,
		found_url TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_authority ON crawl_reports(authority);
	CREATE INDEX IF NOT EXISTS idx_reports_started ON crawl_reports(started_at);

	-- Visit log of each run in dispatch order
	CREATE TABLE IF NOT EXISTS visited_pages (
		report_id TEXT NOT NULL REFERENCES crawl_reports(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		url TEXT NOT NULL,
		outcome TEXT NOT NULL,
		links INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (report_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON visited_pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a report and its visit log in one transaction.
// Saving a report with an existing ID replaces it.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) error {
	stored := *report
	stored.Pages = nil
	reportJSON, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visited_pages WHERE report_id = ?`, report.ID); err != nil {
		return fmt.Errorf("failed to clear visit log: %w", err)
	}

	query := `
	INSERT INTO crawl_reports (id, mode, seed, authority, word, status, pages_visited, found_url, started_at, finished_at, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		pages_visited = excluded.pages_visited,
		found_url = excluded.found_url,
		finished_at = excluded.finished_at,
		report_json = excluded.report_json
	`
	_, err = tx.ExecContext(ctx, query,
		report.ID,
		string(report.Mode),
		report.Seed,
		report.Authority,
		report.Word,
		report.Status.String(),
		report.PagesVisited,
		report.FoundURL,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO visited_pages (report_id, seq, url, outcome, links)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare visit log insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range report.Pages {
		if _, err := stmt.ExecContext(ctx, report.ID, i, p.URL, string(p.Outcome), p.Links); err != nil {
			return fmt.Errorf("failed to save visited page: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit crawl report: %w", err)
	}
	return nil
}

// ListFilter narrows ListReports.
type ListFilter struct {
	// Authority limits results to one host, ignoring case. Empty means all.
	Authority string

	// Limit caps the number of results. Zero means no limit.
	Limit int
}

// ListReports returns stored reports, newest first, without visit logs.
func (cdb *CrawlDB) ListReports(ctx context.Context, filter ListFilter) ([]*model.CrawlReport, error) {
	query := `SELECT report_json FROM crawl_reports WHERE 1=1`
	args := make([]any, 0, 2)

	if filter.Authority != "" {
		query += " AND authority = ? COLLATE NOCASE"
		args = append(args, filter.Authority)
	}
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*model.CrawlReport, 0)
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan crawl report: %w", err)
		}

		var report model.CrawlReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// GetReport returns the report whose ID equals or starts with id,
// including its visit log.
func (cdb *CrawlDB) GetReport(ctx context.Context, id string) (*model.CrawlReport, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT report_json FROM crawl_reports WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`,
		id, escapeLike(id)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var matches []string
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan crawl report: %w", err)
		}
		matches = append(matches, reportJSON)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}
	_ = rows.Close()

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(matches[0]), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	pages, err := cdb.VisitedPages(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	report.Pages = pages

	return &report, nil
}

// VisitedPages returns the visit log of one report in dispatch order.
func (cdb *CrawlDB) VisitedPages(ctx context.Context, reportID string) ([]model.PageVisit, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, outcome, links FROM visited_pages
	WHERE report_id = ?
	ORDER BY seq
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visited pages: %w", err)
	}
	defer rows.Close()

	pages := make([]model.PageVisit, 0)
	for rows.Next() {
		var p model.PageVisit
		var outcome string
		if err := rows.Scan(&p.URL, &outcome, &p.Links); err != nil {
			return nil, fmt.Errorf("failed to scan visited page: %w", err)
		}
		p.Outcome = model.PageOutcome(outcome)
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// DeleteReport removes a report and its visit log.
func (cdb *CrawlDB) DeleteReport(ctx context.Context, id string) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visited_pages WHERE report_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete visit log: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM crawl_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete crawl report: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}

	return tx.Commit()
}

// escapeLike escapes LIKE wildcards so an ID prefix matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := range len(s) {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// timestampLayout has a fixed width so stored values sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp stores times in UTC with a sortable layout.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
