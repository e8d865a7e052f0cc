package analyses

// AnalyzeRequest is the body of the synchronous analysis endpoints.
type AnalyzeRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// AsyncRequest is the body of the asynchronous analysis endpoint. The queue
// id ties the run to an externally owned processing_queue record.
type AsyncRequest struct {
	QueueID  string         `json:"queue_id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}
