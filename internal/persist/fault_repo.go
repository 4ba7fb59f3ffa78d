package persist

import (
	"context"
	"fmt"
	"time"
)

// Fault is one failed action run, as recorded in the journal.
type Fault struct {
	RunID      string // one per process invocation
	Frame      int64
	Target     string
	Key        string
	ActionKind string // Go type of the failed action
	Cause      string // init, update or panic
	Message    string
	OccurredAt time.Time
}

type FaultRepo struct {
	db *DB
}

func NewFaultRepo(db *DB) *FaultRepo {
	return &FaultRepo{db: db}
}

// WriteFaults inserts a batch of faults in a single transaction.
func (r *FaultRepo) WriteFaults(ctx context.Context, faults []Fault) error {
	if len(faults) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("faults begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, f := range faults {
		if _, err := tx.Exec(ctx,
			`INSERT INTO action_faults (run_id, frame, target, action_key, action_kind, cause, message, occurred_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			f.RunID, f.Frame, f.Target, f.Key, f.ActionKind, f.Cause, f.Message, f.OccurredAt,
		); err != nil {
			return fmt.Errorf("faults insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// CountByRun returns the number of faults recorded for a run.
func (r *FaultRepo) CountByRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM action_faults WHERE run_id = $1`, runID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("faults count: %w", err)
	}
	return n, nil
}
