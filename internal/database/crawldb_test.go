package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// newTestReport creates a finished search report with a visit log.
func newTestReport(authority string, started time.Time) *model.CrawlReport {
	report := model.NewCrawlReport(model.ModeSearch, "https://"+authority)
	report.Authority = authority
	report.Word = "widget"
	report.StartedAt = started
	report.Record(model.PageVisit{URL: "https://" + authority, Outcome: model.OutcomeFetched, Links: 2})
	report.Record(model.PageVisit{URL: "https://" + authority + "/a", Outcome: model.OutcomeMatched})
	report.PagesVisited = 2
	report.Finish(model.StatusSucceeded, "")
	return report
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("got path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected informative error, got %q", err.Error())
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created when CreateIfNotExists=false")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing-db")
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		ctx := context.Background()
		report := newTestReport("example.com", time.Now())
		if err := db1.SaveReport(ctx, report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()

		if _, err := db2.GetReport(ctx, report.ID); err != nil {
			t.Errorf("expected report to persist: %v", err)
		}
	})
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true by default")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true by default")
	}
}

func TestSaveAndGetReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := newTestReport("example.com", time.Now())
	report.Exclusions = []string{"https://example.com/private"}
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	t.Run("retrieves by full ID", func(t *testing.T) {
		t.Parallel()

		got, err := db.GetReport(ctx, report.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != model.StatusSucceeded || got.Word != "widget" {
			t.Errorf("got %+v", got)
		}
		if len(got.Pages) != 2 || got.Pages[1].Outcome != model.OutcomeMatched {
			t.Errorf("got pages %+v", got.Pages)
		}
		if len(got.Exclusions) != 1 {
			t.Errorf("got exclusions %v", got.Exclusions)
		}
	})

	t.Run("retrieves by ID prefix", func(t *testing.T) {
		t.Parallel()

		got, err := db.GetReport(ctx, report.ID[:8])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != report.ID {
			t.Errorf("got ID %q", got.ID)
		}
	})

	t.Run("unknown ID", func(t *testing.T) {
		t.Parallel()

		if _, err := db.GetReport(ctx, "does-not-exist"); !errors.Is(err, ErrReportNotFound) {
			t.Errorf("expected ErrReportNotFound, got %v", err)
		}
	})

	t.Run("wildcards in prefix match literally", func(t *testing.T) {
		t.Parallel()

		if _, err := db.GetReport(ctx, "%"); !errors.Is(err, ErrReportNotFound) {
			t.Errorf("expected ErrReportNotFound, got %v", err)
		}
	})
}

func TestSaveReportReplaces(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := model.NewCrawlReport(model.ModeCollect, "https://example.com")
	report.Record(model.PageVisit{URL: "https://example.com", Outcome: model.OutcomeFetched})
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	report.Record(model.PageVisit{URL: "https://example.com/b", Outcome: model.OutcomeErrored})
	report.PagesVisited = 2
	report.Finish(model.StatusExhaustedBudget, "")
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report again: %v", err)
	}

	got, err := db.GetReport(ctx, report.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.StatusExhaustedBudget || len(got.Pages) != 2 {
		t.Errorf("got status %s with %d pages", got.Status, len(got.Pages))
	}

	all, err := db.ListReports(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d reports, expected 1", len(all))
	}
}

func TestListReports(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	old := newTestReport("example.com", base)
	mid := newTestReport("other.org", base.Add(time.Hour))
	recent := newTestReport("example.com", base.Add(2*time.Hour))
	for _, r := range []*model.CrawlReport{old, recent, mid} {
		if err := db.SaveReport(ctx, r); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	t.Run("newest first without visit logs", func(t *testing.T) {
		t.Parallel()

		got, err := db.ListReports(ctx, ListFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d reports, expected 3", len(got))
		}
		if got[0].ID != recent.ID || got[1].ID != mid.ID || got[2].ID != old.ID {
			t.Error("reports are not ordered newest first")
		}
		if len(got[0].Pages) != 0 {
			t.Error("list should not load visit logs")
		}
	})

	t.Run("filters by authority", func(t *testing.T) {
		t.Parallel()

		got, err := db.ListReports(ctx, ListFilter{Authority: "example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d reports, expected 2", len(got))
		}
	})

	t.Run("applies limit", func(t *testing.T) {
		t.Parallel()

		got, err := db.ListReports(ctx, ListFilter{Limit: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != recent.ID {
			t.Errorf("got %d reports", len(got))
		}
	})
}

func TestDeleteReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := newTestReport("example.com", time.Now())
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	if err := db.DeleteReport(ctx, report.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := db.GetReport(ctx, report.ID); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
	pages, err := db.VisitedPages(ctx, report.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("visit log should be deleted, got %d pages", len(pages))
	}
	if err := db.DeleteReport(ctx, report.ID); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	if got := escapeLike(`a%b_c\d`); got != `a\%b\_c\\d` {
		t.Errorf("got %q", got)
	}
}
