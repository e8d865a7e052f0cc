package history

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	entry := Entry{
		ID:         "run-1",
		QueueID:    "queue-1",
		Trigger:    TriggerWebhook,
		FileName:   "study.pdf",
		Status:     "analysis_complete",
		DurationMs: 4200,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analysis_runs").
		WithArgs(
			entry.ID,
			nullable(entry.QueueID),
			entry.Trigger,
			nullable(entry.FileName),
			entry.Status,
			nullable(""), // error_message
			entry.DurationMs,
			entry.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Record(context.Background(), entry); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreRecordGeneratesID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)

	mock.ExpectExec("INSERT INTO analysis_runs").
		WithArgs(
			sqlmock.AnyArg(), // generated id
			nullable(""),
			TriggerSync,
			nullable(""),
			"failed",
			nullable("boom"),
			int64(10),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Record(context.Background(), Entry{
		Trigger:    TriggerSync,
		Status:     "failed",
		Error:      "boom",
		DurationMs: 10,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreListByQueueID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "queue_id", "trigger_kind", "file_name", "status", "error_message", "duration_ms", "created_at"}).
		AddRow("run-2", "queue-1", TriggerWebhook, "study.pdf", "analysis_complete", nil, int64(900), now).
		AddRow("run-1", "queue-1", TriggerAsync, nil, "failed", "timeout", int64(100), now.Add(-time.Minute))

	mock.ExpectQuery("SELECT (.+) FROM analysis_runs").
		WithArgs("queue-1", defaultListLimit).
		WillReturnRows(rows)

	entries, err := store.ListByQueueID(context.Background(), "queue-1", 0)
	if err != nil {
		t.Fatalf("ListByQueueID: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].ID != "run-2" || entries[0].FileName != "study.pdf" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Error != "timeout" || entries[1].FileName != "" {
		t.Errorf("second entry = %+v", entries[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
