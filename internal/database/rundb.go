package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ndsphere/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "ndsphere.db"

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// createdAtLayout is fixed-width so that created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// rowBatchSize keeps bulk inserts under SQLite's bound-variable limit.
const rowBatchSize = 500

const insertRowsQuery = `INSERT INTO rows (run_id, seq, d, n, estimate, true_volume, fractional_error, sigma, inside, radius)
	VALUES (:run_id, :seq, :d, :n, :estimate, :true_volume, :fractional_error, :sigma, :inside, :radius)`

// RunDB provides SQLite-based storage for sweep runs.
type RunDB struct {
	db     *sqlx.DB
	dbPath string
}

// Options configures RunDB behavior.
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

// Open opens or creates a RunDB in the given directory.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	rdb := &RunDB{db: db, dbPath: dbPath}
	if err := rdb.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

func (rdb *RunDB) createTables(ctx context.Context) error {
	schema := `
	-- One row per sweep run; report_json holds the complete report
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		dims TEXT NOT NULL,
		pmin INTEGER NOT NULL,
		pmax INTEGER NOT NULL,
		radius REAL NOT NULL,
		seed TEXT NOT NULL,
		source TEXT NOT NULL,
		replicates INTEGER NOT NULL DEFAULT 1,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

	-- One row per (dimension, sample count) point
	CREATE TABLE IF NOT EXISTS rows (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		d INTEGER NOT NULL,
		n INTEGER NOT NULL,
		estimate REAL NOT NULL,
		true_volume REAL NOT NULL,
		fractional_error REAL NOT NULL,
		sigma REAL NOT NULL,
		inside INTEGER NOT NULL,
		radius REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_rows_run ON rows(run_id, d);
	`
	_, err := rdb.db.ExecContext(ctx, schema)
	return err
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID         string
	CreatedAt  time.Time
	Dims       []int
	MinPower   int
	MaxPower   int
	Radius     float64
	Seed       uint64
	Source     string
	Replicates int
	RowCount   int
}

// runRecord mirrors the runs table plus the row count.
type runRecord struct {
	ID         string  `db:"id"`
	CreatedAt  string  `db:"created_at"`
	Dims       string  `db:"dims"`
	MinPower   int     `db:"pmin"`
	MaxPower   int     `db:"pmax"`
	Radius     float64 `db:"radius"`
	Seed       string  `db:"seed"`
	Source     string  `db:"source"`
	Replicates int     `db:"replicates"`
	RowCount   int     `db:"row_count"`
}

func (r runRecord) toSummary() (RunSummary, error) {
	dims, err := parseDims(r.Dims)
	if err != nil {
		return RunSummary{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	seed, err := strconv.ParseUint(r.Seed, 10, 64)
	if err != nil {
		return RunSummary{}, fmt.Errorf("run %s: invalid seed %q: %w", r.ID, r.Seed, err)
	}
	return RunSummary{
		ID:         r.ID,
		CreatedAt:  parseTimestamp(r.CreatedAt),
		Dims:       dims,
		MinPower:   r.MinPower,
		MaxPower:   r.MaxPower,
		Radius:     r.Radius,
		Seed:       seed,
		Source:     r.Source,
		Replicates: r.Replicates,
		RowCount:   r.RowCount,
	}, nil
}

// rowRecord mirrors the rows table.
type rowRecord struct {
	RunID           string  `db:"run_id"`
	Seq             int     `db:"seq"`
	D               int     `db:"d"`
	N               int     `db:"n"`
	Estimate        float64 `db:"estimate"`
	TrueVolume      float64 `db:"true_volume"`
	FractionalError float64 `db:"fractional_error"`
	Sigma           float64 `db:"sigma"`
	Inside          int     `db:"inside"`
	Radius          float64 `db:"radius"`
}

func (r rowRecord) toRow() model.Row {
	row := model.Row{
		D:               r.D,
		N:               r.N,
		SqrtN:           math.Sqrt(float64(r.N)),
		Estimate:        r.Estimate,
		True:            r.TrueVolume,
		FractionalError: r.FractionalError,
		Sigma:           r.Sigma,
		Inside:          r.Inside,
		R:               r.Radius,
	}
	if r.TrueVolume != 0 {
		row.SigmaFrac = r.Sigma / r.TrueVolume
	}
	return row
}

// SaveRun stores the report and its rows in one transaction. An empty
// report ID is replaced with a new UUID; a zero CreatedAt with the current time.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.SweepReport) error {
	if report == nil {
		return ErrNilReport
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := rdb.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := report.Params
	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, created_at, dims, pmin, pmax, radius, seed, source, replicates, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.CreatedAt.UTC().Format(createdAtLayout),
		formatDims(p.Dims),
		p.MinPower,
		p.MaxPower,
		p.Radius,
		strconv.FormatUint(p.Seed, 10),
		p.Source,
		max(p.Replicates, 1),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if len(report.Rows) > 0 {
		records := make([]rowRecord, len(report.Rows))
		for i, row := range report.Rows {
			records[i] = rowRecord{
				RunID:           report.ID,
				Seq:             i,
				D:               row.D,
				N:               row.N,
				Estimate:        row.Estimate,
				TrueVolume:      row.True,
				FractionalError: row.FractionalError,
				Sigma:           row.Sigma,
				Inside:          row.Inside,
				Radius:          row.R,
			}
		}
		for start := 0; start < len(records); start += rowBatchSize {
			end := min(start+rowBatchSize, len(records))
			if _, err := tx.NamedExecContext(ctx, insertRowsQuery, records[start:end]); err != nil {
				return fmt.Errorf("failed to save rows: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns stored runs, newest first. A limit <= 0 returns all runs.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT r.id, r.created_at, r.dims, r.pmin, r.pmax, r.radius, r.seed, r.source, r.replicates,
		(SELECT COUNT(*) FROM rows w WHERE w.run_id = r.id) AS row_count
	FROM runs r
	ORDER BY r.created_at DESC, r.id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var records []runRecord
	if err := rdb.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	runs := make([]RunSummary, 0, len(records))
	for _, r := range records {
		summary, err := r.toSummary()
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}
	return runs, nil
}

// ResolveID expands a unique ID prefix to the full run ID.
func (rdb *RunDB) ResolveID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrRunNotFound
	}
	var ids []string
	err := rdb.db.SelectContext(ctx, &ids,
		`SELECT id FROM runs WHERE substr(id, 1, ?) = ? ORDER BY id LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("failed to resolve run id: %w", err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// GetRun retrieves the full report of a run by ID.
func (rdb *RunDB) GetRun(ctx context.Context, id string) (*model.SweepReport, error) {
	var reportJSON string
	err := rdb.db.GetContext(ctx, &reportJSON, `SELECT report_json FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.SweepReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// GetRows returns the stored rows of a run in sweep order. A d of 0 returns
// every dimension.
func (rdb *RunDB) GetRows(ctx context.Context, id string, d int) ([]model.Row, error) {
	query := `
	SELECT run_id, seq, d, n, estimate, true_volume, fractional_error, sigma, inside, radius
	FROM rows WHERE run_id = ?
	`
	args := []any{id}
	if d > 0 {
		query += " AND d = ?"
		args = append(args, d)
	}
	query += " ORDER BY seq"

	var records []rowRecord
	if err := rdb.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	rows := make([]model.Row, len(records))
	for i, r := range records {
		rows[i] = r.toRow()
	}
	return rows, nil
}

// DeleteRun removes a run and its rows.
func (rdb *RunDB) DeleteRun(ctx context.Context, id string) error {
	tx, err := rdb.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return tx.Commit()
}

func formatDims(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func parseDims(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	dims := make([]int, len(parts))
	for i, part := range parts {
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid dims %q: %w", s, err)
		}
		dims[i] = d
	}
	return dims, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
