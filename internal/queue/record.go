package queue

import "time"

// Record mirrors the externally owned processing_queue row. The datastore is
// the sole authority over durable state; this is a transient working copy.
type Record struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	CurrentStep  string     `json:"current_step"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	FileName     string     `json:"file_name,omitempty"`
	Content      string     `json:"extracted_text,omitempty"`
	WordCount    int        `json:"word_count,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
