// Package store persists terminal dispatch targets in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leofalp/polyprompt/core/dispatch"
)

// Memory opens a private in-memory database.
const Memory = ":memory:"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a dispatch.Sink backed by SQLite. Each terminal target is stored
// once; recording the same target id again replaces the row.
type Store struct {
	db *sql.DB
}

var _ dispatch.Sink = (*Store)(nil)

// DispatchSummary aggregates the targets of one dispatch.
type DispatchSummary struct {
	DispatchID string    `json:"dispatch_id"`
	Targets    int       `json:"targets"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Cost       float64   `json:"cost"`
	StartedAt  time.Time `json:"started_at"`
}

// New opens (or creates) a store at path. Memory opens an in-memory store.
func New(path string) (*Store, error) {
	dsn := "file::memory:?_foreign_keys=on"
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		dsn = "file:" + path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps an in-memory
	// database alive and private.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS targets (
			id            TEXT PRIMARY KEY,
			dispatch_id   TEXT NOT NULL,
			agent_id      TEXT NOT NULL,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL,
			http_status   INTEGER NOT NULL DEFAULT 0,
			input_tokens  INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			cost          REAL,
			started_at    TEXT NOT NULL,
			finished_at   TEXT NOT NULL,
			snapshot      TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create targets table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS targets_dispatch ON targets (dispatch_id, started_at)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create targets index: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores a terminal target. Non-terminal snapshots are rejected.
func (s *Store) Record(ctx context.Context, target dispatch.Target) error {
	if !target.Status.Terminal() {
		return fmt.Errorf("target %s is %s, only terminal targets are stored", target.ID, target.Status)
	}
	snapshot, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("encode target %s: %w", target.ID, err)
	}

	var cost sql.NullFloat64
	if target.Cost != nil {
		cost = sql.NullFloat64{Float64: *target.Cost, Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO targets
			(id, dispatch_id, agent_id, provider, model, status, http_status, input_tokens, output_tokens, cost, started_at, finished_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		target.ID, target.DispatchID, target.AgentID, target.Provider, target.Model, string(target.Status),
		target.HTTPStatus, target.Usage.InputTokens, target.Usage.OutputTokens, cost,
		formatTime(target.StartedAt), formatTime(target.FinishedAt), string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("insert target %s: %w", target.ID, err)
	}
	return nil
}

// Dispatch returns the stored targets of one dispatch, oldest first.
func (s *Store) Dispatch(ctx context.Context, dispatchID string) ([]dispatch.Target, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot FROM targets WHERE dispatch_id = ? ORDER BY started_at ASC, agent_id ASC`, dispatchID)
	if err != nil {
		return nil, fmt.Errorf("query dispatch %s: %w", dispatchID, err)
	}
	return scanTargets(rows)
}

// Target returns one stored target, or sql.ErrNoRows.
func (s *Store) Target(ctx context.Context, id string) (dispatch.Target, error) {
	var snapshot string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM targets WHERE id = ?`, id).Scan(&snapshot)
	if err != nil {
		return dispatch.Target{}, err
	}
	var target dispatch.Target
	if err := json.Unmarshal([]byte(snapshot), &target); err != nil {
		return dispatch.Target{}, fmt.Errorf("decode target %s: %w", id, err)
	}
	return target, nil
}

// Dispatches lists the most recent dispatches, newest first.
func (s *Store) Dispatches(ctx context.Context, limit int) ([]DispatchSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT dispatch_id,
		       COUNT(*),
		       SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END),
		       COALESCE(SUM(cost), 0),
		       MIN(started_at)
		FROM targets
		GROUP BY dispatch_id
		ORDER BY MIN(started_at) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	var summaries []DispatchSummary
	for rows.Next() {
		var summary DispatchSummary
		var started string
		if err := rows.Scan(&summary.DispatchID, &summary.Targets, &summary.Succeeded, &summary.Failed, &summary.Cost, &started); err != nil {
			return nil, err
		}
		summary.StartedAt = parseTime(started)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanTargets(rows *sql.Rows) ([]dispatch.Target, error) {
	defer rows.Close()
	var targets []dispatch.Target
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, err
		}
		var target dispatch.Target
		if err := json.Unmarshal([]byte(snapshot), &target); err != nil {
			return nil, fmt.Errorf("decode target: %w", err)
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
