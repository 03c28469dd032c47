package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// runStore implements driven.IngestRunStore.
type runStore struct {
	store *Store
}

var _ driven.IngestRunStore = (*runStore)(nil)

// Save inserts or updates a run.
func (s *runStore) Save(ctx context.Context, run domain.IngestRun) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, directory, documents, chunks, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			documents = excluded.documents,
			chunks = excluded.chunks,
			status = excluded.status,
			error = excluded.error,
			finished_at = excluded.finished_at
	`, run.ID, run.Directory, run.Documents, run.Chunks, string(run.Status),
		nullString(run.Error), formatTime(run.StartedAt), formatNullableTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving ingest run: %w", err)
	}
	return nil
}

// Latest returns the most recently started run.
func (s *runStore) Latest(ctx context.Context) (domain.IngestRun, bool, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return domain.IngestRun{}, false, err
	}
	if len(runs) == 0 {
		return domain.IngestRun{}, false, nil
	}
	return runs[0], true, nil
}

// List returns up to limit runs, newest first.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, directory, documents, chunks, status, error, started_at, finished_at
		FROM ingest_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune deletes all but the newest keep runs.
func (s *runStore) Prune(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM ingest_runs WHERE id NOT IN (
			SELECT id FROM ingest_runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning ingest runs: %w", err)
	}
	return nil
}

func scanRun(rows *sql.Rows) (domain.IngestRun, error) {
	var (
		run        domain.IngestRun
		status     string
		errText    sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	err := rows.Scan(&run.ID, &run.Directory, &run.Documents, &run.Chunks,
		&status, &errText, &startedAt, &finishedAt)
	if err != nil {
		return run, fmt.Errorf("scanning ingest run: %w", err)
	}

	run.Status = domain.RunStatus(status)
	run.Error = errText.String
	run.StartedAt = parseNullableTime(sql.NullString{String: startedAt, Valid: true})
	run.FinishedAt = parseNullableTime(finishedAt)
	return run, nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime formats a time for storage, or returns nil for zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime parses a stored timestamp.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
