package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seantiz/kiln/internal/model"

	_ "modernc.org/sqlite"
)

const createTestcasesTable = `
CREATE TABLE IF NOT EXISTS testcases (
    id           TEXT PRIMARY KEY,
    worker_id    TEXT NOT NULL,
    idx          INTEGER NOT NULL,
    filename     TEXT NOT NULL,
    fitness      INTEGER NOT NULL,
    exec_time_ns INTEGER,
    metadata     BLOB,
    created_at   DATETIME NOT NULL
)`

const createTestcasesWorkerIndex = `
CREATE INDEX IF NOT EXISTS testcases_worker_idx ON testcases (worker_id, idx)`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    worker_id  TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    kind       TEXT NOT NULL,
    payload    TEXT NOT NULL,
    created_at DATETIME NOT NULL
)`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each :memory: connection is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	for _, stmt := range []string{createTestcasesTable, createTestcasesWorkerIndex, createEventsTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTestcase inserts a new testcase record.
func (s *SQLiteStore) CreateTestcase(ctx context.Context, rec *model.TestcaseRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO testcases (
			id, worker_id, idx, filename, fitness, exec_time_ns, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.WorkerID, rec.Index, rec.Filename, rec.Fitness,
		rec.ExecTimeNS, rec.Metadata, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert testcase: %w", err)
	}
	return nil
}

const selectTestcaseColumns = `SELECT id, worker_id, idx, filename, fitness,
	exec_time_ns, metadata, created_at FROM testcases`

type scanner interface {
	Scan(dest ...any) error
}

func scanTestcase(row scanner) (*model.TestcaseRecord, error) {
	rec := &model.TestcaseRecord{}
	err := row.Scan(
		&rec.ID, &rec.WorkerID, &rec.Index, &rec.Filename, &rec.Fitness,
		&rec.ExecTimeNS, &rec.Metadata, &rec.CreatedAt,
	)
	return rec, err
}

// GetTestcase retrieves a testcase record by ID.
func (s *SQLiteStore) GetTestcase(ctx context.Context, id string) (*model.TestcaseRecord, error) {
	rec, err := scanTestcase(s.db.QueryRowContext(ctx, selectTestcaseColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get testcase: %w", err)
	}
	return rec, nil
}

// ListTestcases returns a page of testcase records, newest first, along with
// the total count.
func (s *SQLiteStore) ListTestcases(ctx context.Context, limit, offset int) ([]*model.TestcaseRecord, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM testcases").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count testcases: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		selectTestcaseColumns+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list testcases: %w", err)
	}
	defer rows.Close()

	recs, err := collectTestcases(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// ListWorkerTestcases returns every record of one worker ordered by corpus index.
func (s *SQLiteStore) ListWorkerTestcases(ctx context.Context, workerID string) ([]*model.TestcaseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTestcaseColumns+` WHERE worker_id = ? ORDER BY idx ASC`, workerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list worker testcases: %w", err)
	}
	defer rows.Close()
	return collectTestcases(rows)
}

func collectTestcases(rows *sql.Rows) ([]*model.TestcaseRecord, error) {
	var recs []*model.TestcaseRecord
	for rows.Next() {
		rec, err := scanTestcase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan testcase: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate testcases: %w", err)
	}
	return recs, nil
}

// GetCorpusStats returns aggregate statistics over all testcase records.
func (s *SQLiteStore) GetCorpusStats(ctx context.Context) (*CorpusStats, error) {
	stats := &CorpusStats{CountByWorker: make(map[string]int)}

	var avg sql.NullFloat64
	var maxFitness sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), AVG(fitness), MAX(fitness) FROM testcases",
	).Scan(&stats.Total, &avg, &maxFitness)
	if err != nil {
		return nil, fmt.Errorf("aggregate testcases: %w", err)
	}
	stats.AvgFitness = avg.Float64
	stats.MaxFitness = uint32(maxFitness.Int64)

	rows, err := s.db.QueryContext(ctx,
		"SELECT worker_id, COUNT(*) FROM testcases GROUP BY worker_id",
	)
	if err != nil {
		return nil, fmt.Errorf("count by worker: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var worker string
		var n int
		if err := rows.Scan(&worker, &n); err != nil {
			return nil, fmt.Errorf("scan worker count: %w", err)
		}
		stats.CountByWorker[worker] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worker counts: %w", err)
	}

	return stats, nil
}

// InsertEvent appends an event to the event log. A zero CreatedAt is set to now.
func (s *SQLiteStore) InsertEvent(ctx context.Context, ev *model.EventRecord) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (worker_id, seq, kind, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		ev.WorkerID, ev.Seq, ev.Kind, ev.Payload, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	ev.ID = id
	return nil
}

// ListEvents returns the most recent events in insertion order, at most limit.
func (s *SQLiteStore) ListEvents(ctx context.Context, limit int) ([]model.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, worker_id, seq, kind, payload, created_at FROM (
			SELECT * FROM events ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var evs []model.EventRecord
	for rows.Next() {
		var ev model.EventRecord
		if err := rows.Scan(&ev.ID, &ev.WorkerID, &ev.Seq, &ev.Kind, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evs = append(evs, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return evs, nil
}
