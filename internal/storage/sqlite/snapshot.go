package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/courtside/internal/core"
)

// SnapshotRepo keeps the single most recent raw snapshot so a restarted
// process can show a stale-but-valid feed before its first fetch round.
type SnapshotRepo struct {
	db *sql.DB
}

var _ core.SnapshotStore = (*SnapshotRepo)(nil)

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) Save(ctx context.Context, snap core.Snapshot) error {
	events, err := json.Marshal(snap.Events)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}
	predictions, err := json.Marshal(snap.Predictions)
	if err != nil {
		return fmt.Errorf("failed to marshal predictions: %w", err)
	}

	query := `INSERT INTO snapshots (id, events, predictions, fetched_at) VALUES (1, ?, ?, ?)
	          ON CONFLICT (id) DO UPDATE SET
	              events = excluded.events,
	              predictions = excluded.predictions,
	              fetched_at = excluded.fetched_at`

	if _, err := r.db.ExecContext(ctx, query, string(events), string(predictions), snap.FetchedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) Load(ctx context.Context) (core.Snapshot, bool, error) {
	var (
		events      string
		predictions string
		fetchedAt   string
	)

	row := r.db.QueryRowContext(ctx, `SELECT events, predictions, fetched_at FROM snapshots WHERE id = 1`)
	if err := row.Scan(&events, &predictions, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Snapshot{}, false, nil
		}
		return core.Snapshot{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap core.Snapshot
	if err := json.Unmarshal([]byte(events), &snap.Events); err != nil {
		return core.Snapshot{}, false, fmt.Errorf("failed to unmarshal events: %w", err)
	}
	if err := json.Unmarshal([]byte(predictions), &snap.Predictions); err != nil {
		return core.Snapshot{}, false, fmt.Errorf("failed to unmarshal predictions: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
		snap.FetchedAt = t
	}

	return snap, true, nil
}
