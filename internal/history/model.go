// Package history records analysis runs for auditing. Writes are best-effort;
// a history failure never fails the analysis that produced it.
package history

import "time"

// Trigger identifies how an analysis run was started.
const (
	TriggerSync    = "sync"
	TriggerAsync   = "async"
	TriggerWebhook = "webhook"
)

// Entry is one completed or failed analysis run.
type Entry struct {
	ID         string    `json:"id"`
	QueueID    string    `json:"queue_id,omitempty"`
	Trigger    string    `json:"trigger"`
	FileName   string    `json:"file_name,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
