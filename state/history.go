package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Hunt run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusFailed    = "failed"
)

// timestamps are stored fixed width so that text order matches time order
const historyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run ID has no history entry
var ErrRunNotFound = errors.New("hunt run not found")

// HuntRun is one entry of the hunt history
type HuntRun struct {
	RunID      string    `json:"run_id"`
	Provider   string    `json:"provider"`
	Terms      []string  `json:"terms"`
	OutputFile string    `json:"output_file"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Collected  int       `json:"collected"`
	Status     string    `json:"status"`
}

// HuntHistory records hunt runs in a SQLite database
type HuntHistory struct {
	db   *sql.DB
	path string
}

// OpenHuntHistory opens (or creates) the history database at path
func OpenHuntHistory(path string) (*HuntHistory, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initHistorySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("Opened hunt history")
	return &HuntHistory{db: db, path: path}, nil
}

func initHistorySchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS hunt_runs (
		run_id      TEXT PRIMARY KEY,
		provider    TEXT NOT NULL,
		terms       TEXT NOT NULL,
		output_file TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		collected   INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL DEFAULT 'running'
	)`)
	return err
}

// Path returns the database file location
func (h *HuntHistory) Path() string {
	return h.path
}

// RecordStart inserts a run with status running
func (h *HuntHistory) RecordStart(ctx context.Context, run HuntRun) error {
	if run.RunID == "" {
		return errors.New("history: run ID is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	terms, err := json.Marshal(run.Terms)
	if err != nil {
		return fmt.Errorf("history: encode terms: %w", err)
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO hunt_runs (run_id, provider, terms, output_file, started_at, status) VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Provider, string(terms), run.OutputFile, run.StartedAt.UTC().Format(historyTimeLayout), StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("history: insert run %s: %w", run.RunID, err)
	}
	return nil
}

// RecordFinish stores the final lead count and status of a run
func (h *HuntHistory) RecordFinish(ctx context.Context, runID string, collected int, status string) error {
	switch status {
	case StatusCompleted, StatusStopped, StatusFailed:
	default:
		return fmt.Errorf("history: invalid final status %q", status)
	}

	res, err := h.db.ExecContext(ctx,
		`UPDATE hunt_runs SET finished_at = ?, collected = ?, status = ? WHERE run_id = ?`,
		time.Now().UTC().Format(historyTimeLayout), collected, status, runID,
	)
	if err != nil {
		return fmt.Errorf("history: update run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: update run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns every run.
func (h *HuntHistory) ListRuns(ctx context.Context, limit int) ([]HuntRun, error) {
	query := `SELECT run_id, provider, terms, output_file, started_at, finished_at, collected, status
		FROM hunt_runs ORDER BY started_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []HuntRun
	for rows.Next() {
		var (
			run        HuntRun
			terms      string
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&run.RunID, &run.Provider, &terms, &run.OutputFile, &startedAt, &finishedAt, &run.Collected, &run.Status); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(terms), &run.Terms); err != nil {
			log.Warn().Err(err).Str("run_id", run.RunID).Msg("Unreadable terms in hunt history")
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt.String)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	return runs, nil
}

// Close closes the database
func (h *HuntHistory) Close() error {
	return h.db.Close()
}
