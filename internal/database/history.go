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

	"github.com/nao1215/csmareport/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "csmareport.db"

// timestampLayout sorts lexicographically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB stores summaries of past runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
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

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		input_path TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		lookup TEXT NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input_path);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored run.
type RunRecord struct {
	// ID is the database row ID.
	ID int64 `json:"id"`

	// RunID is the UUID assigned when the run started.
	RunID string `json:"run_id"`

	// InputPath is the results file the run read.
	InputPath string `json:"input_path"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`

	// RowCount is the number of rows loaded.
	RowCount int `json:"row_count"`

	// Lookup is the delay lookup mode used.
	Lookup model.DelayLookup `json:"lookup"`

	// Summary holds the summary figures.
	Summary *model.Summary `json:"summary"`
}

// SaveRun stores a finished run and returns its database ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	if run.Summary == nil {
		return 0, ErrNoSummary
	}

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	rowCount := 0
	if run.Table != nil {
		rowCount = run.Table.Len()
	}

	query := `
	INSERT INTO runs (run_id, input_path, timestamp, row_count, lookup, summary_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		run.ID,
		run.InputPath,
		run.StartedAt.UTC().Format(timestampLayout),
		rowCount,
		string(run.Summary.Lookup),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return result.LastInsertId()
}

// ListRuns returns stored runs, newest first. An empty inputPath lists runs
// of every input; a limit of zero or less returns all of them.
func (hdb *HistoryDB) ListRuns(ctx context.Context, inputPath string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, run_id, input_path, timestamp, row_count, lookup, summary_json
	FROM runs
	WHERE (? = '' OR input_path = ?)
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := hdb.db.QueryContext(ctx, query, inputPath, inputPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// LatestRuns returns the n most recent runs of inputPath, newest first.
func (hdb *HistoryDB) LatestRuns(ctx context.Context, inputPath string, n int) ([]RunRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	return hdb.ListRuns(ctx, inputPath, n)
}

// GetRun retrieves a run by its database ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	query := `
	SELECT id, run_id, input_path, timestamp, row_count, lookup, summary_json
	FROM runs
	WHERE id = ?
	`

	record, err := scanRun(hdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListInputs returns every input path with stored runs.
func (hdb *HistoryDB) ListInputs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT input_path FROM runs
	ORDER BY input_path
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inputs: %w", err)
	}
	defer rows.Close()

	var inputs []string
	for rows.Next() {
		var input string
		if err := rows.Scan(&input); err != nil {
			return nil, fmt.Errorf("failed to scan input: %w", err)
		}
		inputs = append(inputs, input)
	}

	return inputs, rows.Err()
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*RunRecord, error) {
	var (
		record      RunRecord
		timestamp   string
		lookup      string
		summaryJSON string
	)
	err := s.Scan(&record.ID, &record.RunID, &record.InputPath, &timestamp, &record.RowCount, &lookup, &summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)
	record.Lookup = model.DelayLookup(lookup)

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary of run %d: %w", record.ID, err)
	}
	record.Summary = &summary

	return &record, nil
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
