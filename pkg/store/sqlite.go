package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/logguard/logguard/pkg/models"
)

// SQLiteStore is a SQLite-based implementation of the run-history store
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL plus a busy timeout so a run command and a concurrent `runs` query
	// don't trip over each other; single writer connection avoids SQLITE_BUSY
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database schema
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		args TEXT,
		pid INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		outcome TEXT,
		exit_code INTEGER DEFAULT 0,
		log_path TEXT,
		log_bytes INTEGER DEFAULT 0,
		threshold_mb INTEGER DEFAULT 0,
		interrupted BOOLEAN NOT NULL DEFAULT 0,
		interrupt_reason TEXT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun adds a run to the store
func (s *SQLiteStore) CreateRun(run *models.RunRecord) error {
	args, err := json.Marshal(run.Args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO runs
		(id, command, args, pid, status, outcome, exit_code, log_path, log_bytes,
		 threshold_mb, interrupted, interrupt_reason, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Command, string(args), run.PID, run.Status, run.Outcome,
		run.ExitCode, run.LogPath, run.LogBytes, run.ThresholdMB,
		run.Interrupted, run.InterruptReason, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// UpdateRun replaces a stored run after validating the status transition
func (s *SQLiteStore) UpdateRun(run *models.RunRecord) error {
	args, err := json.Marshal(run.Args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}

	var current models.RunStatus
	err = s.db.QueryRow(`SELECT status FROM runs WHERE id = ?`, run.ID).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrRunNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read run status: %w", err)
	}
	if current != run.Status {
		if err := models.ValidateTransition(current, run.Status); err != nil {
			return fmt.Errorf("invalid transition: %w", err)
		}
	}

	result, err := s.db.Exec(`
		UPDATE runs SET command = ?, args = ?, pid = ?, status = ?, outcome = ?,
			exit_code = ?, log_path = ?, log_bytes = ?, threshold_mb = ?,
			interrupted = ?, interrupt_reason = ?, started_at = ?, finished_at = ?
		WHERE id = ?
	`, run.Command, string(args), run.PID, run.Status, run.Outcome,
		run.ExitCode, run.LogPath, run.LogBytes, run.ThresholdMB,
		run.Interrupted, run.InterruptReason, run.StartedAt, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *SQLiteStore) GetRun(id string) (*models.RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, command, args, pid, status, outcome, exit_code, log_path,
		       log_bytes, threshold_mb, interrupted, interrupt_reason,
		       started_at, finished_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	return run, err
}

// GetAllRuns returns all recorded runs, most recent first
func (s *SQLiteStore) GetAllRuns() []*models.RunRecord {
	return s.queryRuns(`
		SELECT id, command, args, pid, status, outcome, exit_code, log_path,
		       log_bytes, threshold_mb, interrupted, interrupt_reason,
		       started_at, finished_at
		FROM runs ORDER BY started_at DESC
	`)
}

// GetRunsByStatus returns runs in the given status, most recent first
func (s *SQLiteStore) GetRunsByStatus(status models.RunStatus) []*models.RunRecord {
	return s.queryRuns(`
		SELECT id, command, args, pid, status, outcome, exit_code, log_path,
		       log_bytes, threshold_mb, interrupted, interrupt_reason,
		       started_at, finished_at
		FROM runs WHERE status = ? ORDER BY started_at DESC
	`, string(status))
}

func (s *SQLiteStore) queryRuns(query string, args ...interface{}) []*models.RunRecord {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}
	return runs
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*models.RunRecord, error) {
	var run models.RunRecord
	var args sql.NullString
	var outcome sql.NullString
	var logPath sql.NullString
	var reason sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&run.ID, &run.Command, &args, &run.PID, &run.Status,
		&outcome, &run.ExitCode, &logPath, &run.LogBytes, &run.ThresholdMB,
		&run.Interrupted, &reason, &run.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	if args.Valid && args.String != "" {
		if err := json.Unmarshal([]byte(args.String), &run.Args); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}
	}
	run.Outcome = models.Outcome(outcome.String)
	run.LogPath = logPath.String
	run.InterruptReason = reason.String
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable
func (s *SQLiteStore) HealthCheck() error {
	return s.db.Ping()
}
