package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
)

// HistoryRepository persists runs and their per-track outcomes.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// StartRun inserts a run row. FinishedAt and counters are written by [HistoryRepository.FinishRun].
func (r *HistoryRepository) StartRun(ctx context.Context, run models.Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	query := `
		INSERT INTO runs (id, started_at, playlists)
		VALUES (?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, run.ID, run.StartedAt, run.Playlists); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// RecordOutcome appends a track outcome to its run.
func (r *HistoryRepository) RecordOutcome(ctx context.Context, o models.Outcome) error {
	if o.RecordedAt.IsZero() {
		o.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO outcomes (run_id, playlist, track_id, track_name, status, candidate_id, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		o.RunID,
		o.Playlist,
		o.TrackID,
		o.TrackName,
		string(o.Status),
		nullString(o.CandidateID),
		nullString(o.Detail),
		o.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

// FinishRun stores the finish time and counters of a started run.
func (r *HistoryRepository) FinishRun(ctx context.Context, run models.Run) error {
	query := `
		UPDATE runs
		SET finished_at = ?, downloaded = ?, not_found = ?, failed = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, run.FinishedAt, run.Downloaded, run.NotFound, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID)
	}
	return nil
}

// GetRun retrieves a run by its full id.
func (r *HistoryRepository) GetRun(ctx context.Context, id string) (*models.Run, error) {
	query := `
		SELECT id, started_at, finished_at, playlists, downloaded, not_found, failed
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns every run.
func (r *HistoryRepository) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	query := `
		SELECT id, started_at, finished_at, playlists, downloaded, not_found, failed
		FROM runs
		ORDER BY started_at DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Outcomes returns the outcomes of a run in the order they were recorded,
// optionally filtered by status.
func (r *HistoryRepository) Outcomes(ctx context.Context, runID string, status models.OutcomeStatus) ([]models.Outcome, error) {
	query := `
		SELECT run_id, playlist, track_id, track_name, status, candidate_id, detail, recorded_at
		FROM outcomes
		WHERE run_id = ?
	`

	args := []any{runID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.Outcome
	for rows.Next() {
		var (
			o         models.Outcome
			st        string
			candidate sql.NullString
			detail    sql.NullString
		)
		if err := rows.Scan(&o.RunID, &o.Playlist, &o.TrackID, &o.TrackName, &st, &candidate, &detail, &o.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Status = models.OutcomeStatus(st)
		o.CandidateID = candidate.String
		o.Detail = detail.String
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return outcomes, nil
}

// DeleteRun removes a run and, through the foreign key, its outcomes.
func (r *HistoryRepository) DeleteRun(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var (
		run      models.Run
		finished sql.NullTime
	)

	err := s.Scan(&run.ID, &run.StartedAt, &finished, &run.Playlists, &run.Downloaded, &run.NotFound, &run.Failed)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ResolveRunID expands a run id prefix, see [ResolveRunID].
func (r *HistoryRepository) ResolveRunID(prefix string) (string, error) {
	return ResolveRunID(r.db, prefix)
}
