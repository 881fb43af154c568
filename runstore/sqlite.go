package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spetersoncode/stepper/step"

	_ "modernc.org/sqlite"
)

// SQLite stores step histories in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database at path and initializes
// the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("runstore: open sqlite: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("runstore: migrate: %w", err)
	}

	slog.Debug("run store opened", "path", path)
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS steps (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			type TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq),
			UNIQUE (run_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_steps_type ON steps(type)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}

// Append records a step at the end of the run's history.
func (s *SQLite) Append(ctx context.Context, runID string, st *step.Step) error {
	if st == nil {
		return ErrNilStep
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("runstore: encode step: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM steps WHERE run_id = ?`, runID).Scan(&seq)
	if err != nil {
		return fmt.Errorf("runstore: next sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO steps (run_id, seq, id, type, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, seq, st.ID(), st.Type(), string(payload), st.CreatedAt().UnixNano())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &ErrDuplicateStep{RunID: runID, StepID: st.ID()}
		}
		return fmt.Errorf("runstore: insert step: %w", err)
	}

	return tx.Commit()
}

// Steps returns the run's history ordered by sequence.
func (s *SQLite) Steps(ctx context.Context, runID string) ([]*step.Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM steps WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("runstore: query steps: %w", err)
	}
	defer rows.Close()

	var steps []*step.Step
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var st step.Step
		if err := json.Unmarshal([]byte(payload), &st); err != nil {
			return nil, fmt.Errorf("runstore: decode step: %w", err)
		}
		steps = append(steps, &st)
	}
	return steps, rows.Err()
}

// Runs returns the ids of all runs with at least one step.
func (s *SQLite) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT run_id FROM steps ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("runstore: query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
