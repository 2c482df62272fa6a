package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ruralpay/payments-engine/internal/report"
)

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(ctx context.Context, result *RunResult) error
	LoadRun(ctx context.Context, runID string) (*RunResult, error)
}

// SnapshotService stores run summaries and final account snapshots in
// Postgres.
type SnapshotService struct {
	db *sql.DB
}

func NewSnapshotService(db *sql.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// SaveRun writes the run and all of its account rows in one transaction.
func (s *SnapshotService) SaveRun(ctx context.Context, result *RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.insertRun(ctx, tx, result); err != nil {
		return fmt.Errorf("error saving run %s: %w", result.RunID, err)
	}

	for _, row := range result.Accounts {
		if err := s.insertSnapshot(ctx, tx, result.RunID, row); err != nil {
			return fmt.Errorf("error saving snapshot of client %d: %w", row.Client, err)
		}
	}

	return tx.Commit()
}

// LoadRun reads a run back. Rejection and malformed details are not stored,
// only their counts.
func (s *SnapshotService) LoadRun(ctx context.Context, runID string) (*RunResult, error) {
	result := &RunResult{
		RunID:      runID,
		Rejections: []RejectionView{},
		Malformed:  []MalformedView{},
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT records, applied, rejected, malformed, created_at
		FROM replay_runs
		WHERE run_id = $1`, runID).
		Scan(&result.Summary.Records, &result.Summary.Applied, &result.Summary.Rejected, &result.Summary.Malformed, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT client, available, held, total, locked
		FROM account_snapshots
		WHERE run_id = $1
		ORDER BY client`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result.Accounts = []report.Row{}
	for rows.Next() {
		var row report.Row
		if err := rows.Scan(&row.Client, &row.Available, &row.Held, &row.Total, &row.Locked); err != nil {
			return nil, err
		}
		result.Accounts = append(result.Accounts, row)
	}
	return result, rows.Err()
}

func (s *SnapshotService) insertRun(ctx context.Context, tx *sql.Tx, result *RunResult) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO replay_runs (run_id, records, applied, rejected, malformed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		result.RunID, result.Summary.Records, result.Summary.Applied,
		result.Summary.Rejected, result.Summary.Malformed, result.CreatedAt)
	return err
}

func (s *SnapshotService) insertSnapshot(ctx context.Context, tx *sql.Tx, runID string, row report.Row) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO account_snapshots (run_id, client, available, held, total, locked)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		runID, int64(row.Client), row.Available.String(), row.Held.String(), row.Total.String(), row.Locked)
	return err
}
