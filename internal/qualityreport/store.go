// Package qualityreport is an optional local history cache for past
// verdicts, written by `cerberus aggregate --record` and read only by
// `cerberus mcp`'s quality_report tool. It is never consulted by the stateless per-PR decision path
// (internal/aggregator) — Cerberus's merge decision never depends on
// history, only on the current run's reviewer output.
//
// Grounded in the teacher's internal/store/sqlite.go (connection setup,
// WAL/busy-timeout pragmas, embedded-migration runner, ULID primary keys),
// narrowed from the teacher's project/issue/session schema down to one
// append-only quality_report_entries table.
package qualityreport

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	_ "modernc.org/sqlite"

	"github.com/misty-step/cerberus/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is one historical run's summary row.
type Entry struct {
	ID            string
	PRNumber      int
	SHA           string
	Verdict       models.Verdict
	ReviewerCount int
	FailCount     int
	WarnCount     int
	SkipCount     int
	GeneratedAt   time.Time
}

// Store is the quality-report SQLite-backed history cache.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the quality-report database at dbPath and runs
// migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("qualityreport: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("qualityreport: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("qualityreport: %s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("qualityreport: create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("qualityreport: read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count); err != nil {
			return fmt.Errorf("qualityreport: check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("qualityreport: read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("qualityreport: apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("qualityreport: record migration %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Record appends one run's summary to the history cache.
func (s *Store) Record(ctx context.Context, prNumber int, sha string, cv models.CerberusVerdict) error {
	var fail, warn, skip int
	for _, rv := range cv.Reviewers {
		switch rv.Verdict {
		case models.VerdictFail:
			fail++
		case models.VerdictWarn:
			warn++
		case models.VerdictSkip:
			skip++
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quality_report_entries (id, pr_number, sha, verdict, reviewer_count, fail_count, warn_count, skip_count, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		newULID(), prNumber, sha, string(cv.Verdict), len(cv.Reviewers), fail, warn, skip, cv.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("qualityreport: record entry: %w", err)
	}
	return nil
}

// ForPR returns every recorded entry for prNumber, most recent first.
func (s *Store) ForPR(ctx context.Context, prNumber int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pr_number, sha, verdict, reviewer_count, fail_count, warn_count, skip_count, generated_at
		FROM quality_report_entries WHERE pr_number = ? ORDER BY generated_at DESC`, prNumber)
	if err != nil {
		return nil, fmt.Errorf("qualityreport: query entries for pr %d: %w", prNumber, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var verdict string
		if err := rows.Scan(&e.ID, &e.PRNumber, &e.SHA, &verdict, &e.ReviewerCount, &e.FailCount, &e.WarnCount, &e.SkipCount, &e.GeneratedAt); err != nil {
			return nil, fmt.Errorf("qualityreport: scan entry: %w", err)
		}
		e.Verdict = models.Verdict(verdict)
		out = append(out, e)
	}
	return out, rows.Err()
}
