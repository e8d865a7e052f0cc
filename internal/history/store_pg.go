package history

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed history store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO analysis_runs (id, queue_id, trigger_kind, file_name, status, error_message, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		nullable(entry.QueueID),
		entry.Trigger,
		nullable(entry.FileName),
		entry.Status,
		nullable(entry.Error),
		entry.DurationMs,
		entry.CreatedAt,
	)
	return err
}

func (s *pgStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, queue_id, trigger_kind, file_name, status, error_message, duration_ms, created_at
FROM analysis_runs
ORDER BY created_at DESC
LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *pgStore) ListByQueueID(ctx context.Context, queueID string, limit int) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, queue_id, trigger_kind, file_name, status, error_message, duration_ms, created_at
FROM analysis_runs
WHERE queue_id = $1
ORDER BY created_at DESC
LIMIT $2`, queueID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			queueID  sql.NullString
			fileName sql.NullString
			errMsg   sql.NullString
		)
		if err := rows.Scan(&e.ID, &queueID, &e.Trigger, &fileName, &e.Status, &errMsg, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.QueueID = queueID.String
		e.FileName = fileName.String
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
