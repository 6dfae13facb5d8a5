package adapters

import (
	"context"
	"database/sql"
	"embed"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"repo-mirror/internal/ports"
	"repo-mirror/internal/types"
)

//go:embed migrations/*.sql
var sqliteMigrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

const defaultDatabasePath = "repo-mirror.db"

// SQLiteStore persists mirrored records and sync history in a single SQLite
// file. The connection is opened lazily by InitializeSchema.
type SQLiteStore struct {
	Path string

	mu          sync.Mutex
	db          *sql.DB
	initialized bool
}

func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = defaultDatabasePath
	}
	return &SQLiteStore{Path: path}
}

func (s *SQLiteStore) InitializeSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	db, err := s.openLocked()
	if err != nil {
		return err
	}
	if err := runMigrations(ctx, db); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to apply database migrations").
			WithCause(err)
	}
	s.initialized = true
	log.Ctx(ctx).Debug().Str("database", s.Path).Msg("schema initialized")
	return nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(sqliteMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func (s *SQLiteStore) openLocked() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if s.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create database directory").
				WithCause(err)
		}
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open database").
			WithCause(err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to enable WAL").
			WithCause(err)
	}
	s.db = db
	return db, nil
}

func (s *SQLiteStore) ready() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || s.db == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("database schema not initialized")
	}
	return s.db, nil
}

// Store replaces the mirrored package set with records in one transaction.
// On failure the previous mirror stays untouched.
func (s *SQLiteStore) Store(ctx context.Context, records []types.PackageRecord) error {
	db, err := s.ready()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to begin transaction").
			WithCause(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM packages"); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clear packages").
			WithCause(err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO packages (name, version, architecture, description)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to prepare insert").
			WithCause(err)
	}
	defer stmt.Close()

	for _, record := range records {
		description := sql.NullString{}
		if record.Description != nil {
			description = sql.NullString{String: *record.Description, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, record.Name, record.Version, record.Architecture.String(), description); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to insert package " + record.Name).
				WithCause(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to commit packages").
			WithCause(err)
	}
	log.Ctx(ctx).Debug().Int("records", len(records)).Msg("packages stored")
	return nil
}

func (s *SQLiteStore) ListPackages(ctx context.Context, filter types.PackageFilter) ([]types.PackageRecord, error) {
	db, err := s.ready()
	if err != nil {
		return nil, err
	}
	arch := ""
	if filter.Architecture != "" {
		arch = filter.Architecture.String()
	}
	rows, err := db.QueryContext(ctx, `
		SELECT name, version, architecture, description
		FROM packages
		WHERE (? = '' OR instr(name, ?) > 0)
		  AND (? = '' OR architecture = ?)
		ORDER BY name, id`,
		filter.NameContains, filter.NameContains, arch, arch)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to query packages").
			WithCause(err)
	}
	defer rows.Close()

	var records []types.PackageRecord
	for rows.Next() {
		var record types.PackageRecord
		var architecture string
		var description sql.NullString
		if err := rows.Scan(&record.Name, &record.Version, &architecture, &description); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to scan package").
				WithCause(err)
		}
		record.Architecture, _ = types.ParseArchitecture(architecture)
		if description.Valid {
			value := description.String
			record.Description = &value
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read packages").
			WithCause(err)
	}
	return records, nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, report types.SyncReport) error {
	db, err := s.ready()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_runs
		(id, state, sources, sources_succeeded, sources_failed, records, record_errors, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, string(report.State), report.Sources, report.SourcesSucceeded, report.SourcesFailed,
		report.Records, report.RecordErrors,
		formatStoredTime(report.StartedAt), formatStoredTime(report.FinishedAt))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to record sync run").
			WithCause(err)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]types.SyncRun, error) {
	db, err := s.ready()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, state, sources_succeeded, sources_failed, records, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to query sync runs").
			WithCause(err)
	}
	defer rows.Close()

	var runs []types.SyncRun
	for rows.Next() {
		var run types.SyncRun
		var state, startedAt, finishedAt string
		if err := rows.Scan(&run.RunID, &state, &run.SourcesSucceeded, &run.SourcesFailed, &run.Records, &startedAt, &finishedAt); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to scan sync run").
				WithCause(err)
		}
		run.State = types.SyncState(state)
		run.StartedAt = parseTimeFlexible(startedAt)
		run.FinishedAt = parseTimeFlexible(finishedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read sync runs").
			WithCause(err)
	}
	return runs, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.initialized = false
	return err
}

var _ ports.StorePort = (*SQLiteStore)(nil)
var _ ports.PackageQueryPort = (*SQLiteStore)(nil)
var _ ports.SyncHistoryPort = (*SQLiteStore)(nil)
