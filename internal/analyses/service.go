// Package analyses exposes the document analysis pipeline over HTTP and runs
// the asynchronous queue-record flow.
package analyses

import (
	"context"
	"errors"
	"time"

	"archive-backend/internal/dispatch"
	"archive-backend/internal/history"
	"archive-backend/internal/pipeline"
	"archive-backend/internal/queue"
	"archive-backend/internal/shared/metrics"
	"archive-backend/internal/shared/telemetry"
)

// ErrStoreNotConfigured is returned when an async run is requested but no
// record store is wired.
var ErrStoreNotConfigured = errors.New("record store not configured")

// Service contains business logic for analysis runs.
type Service struct {
	Analyzer   *pipeline.Analyzer
	Queue      *queue.Gateway
	Dispatcher *dispatch.Dispatcher
	History    history.Store
}

// Analyze runs the standard pipeline synchronously.
func (s *Service) Analyze(ctx context.Context, text string, meta map[string]any) pipeline.Result {
	start := time.Now()
	metrics.IncAnalysisStarted()

	res := s.Analyzer.Analyze(ctx, text, pipeline.Metadata(meta))

	s.finish(ctx, history.Entry{
		Trigger:  history.TriggerSync,
		FileName: pipeline.Metadata(meta).FileName(),
	}, res, start)
	return res
}

// AnalyzeComplete runs the extended pipeline synchronously.
func (s *Service) AnalyzeComplete(ctx context.Context, text string, meta map[string]any) pipeline.CompleteResult {
	start := time.Now()
	metrics.IncAnalysisStarted()

	res := s.Analyzer.AnalyzeComplete(ctx, text, pipeline.Metadata(meta))

	s.finish(ctx, history.Entry{
		Trigger:  history.TriggerSync,
		FileName: pipeline.Metadata(meta).FileName(),
	}, res.Result, start)
	return res
}

// StartAsync acknowledges the request and dispatches the queue-record run in
// the background.
func (s *Service) StartAsync(ctx context.Context, req AsyncRequest) error {
	if s.Queue == nil {
		return ErrStoreNotConfigured
	}
	s.Dispatcher.Dispatch("analyze-async", func(ctx context.Context) {
		s.ProcessQueued(ctx, req.QueueID, req.Text, req.Metadata, history.TriggerAsync)
	})
	return nil
}

// ProcessQueued is the background unit behind async and webhook triggers. It
// re-reads the live record status before doing any work: the precondition
// read is the only duplicate-trigger protection, so a mismatch means another
// run already claimed the record.
func (s *Service) ProcessQueued(ctx context.Context, queueID, text string, meta map[string]any, trigger string) {
	ok, err := s.Queue.CheckStatus(ctx, queueID, queue.StatusOCRComplete)
	if err != nil {
		telemetry.Error("analyses.precondition_failed", map[string]any{"queue_id": queueID, "error": err.Error()})
		return
	}
	if !ok {
		telemetry.Info("analyses.skipped", map[string]any{"queue_id": queueID, "reason": "status moved past ocr_complete"})
		return
	}

	start := time.Now()
	metrics.IncAnalysisStarted()

	if err := s.Queue.UpdateStatus(ctx, queueID, map[string]any{
		"status":       string(queue.StatusAnalysisInProgress),
		"progress":     60,
		"current_step": "Analyzing document with AI",
	}); err != nil {
		// The run proceeds; the final write will settle the record.
		telemetry.Error("analyses.mark_in_progress_failed", map[string]any{"queue_id": queueID, "error": err.Error()})
	}

	res := s.Analyzer.AnalyzeComplete(ctx, text, pipeline.Metadata(meta))

	if res.Failed() {
		if err := s.Queue.UpdateStatus(ctx, queueID, map[string]any{
			"status":        string(queue.StatusFailed),
			"error_message": res.Error,
		}); err != nil {
			telemetry.Error("analyses.mark_failed_failed", map[string]any{"queue_id": queueID, "error": err.Error()})
		}
	} else {
		if err := s.Queue.UpdateStatus(ctx, queueID, resultFields(res)); err != nil {
			telemetry.Error("analyses.persist_failed", map[string]any{"queue_id": queueID, "error": err.Error()})
		}
	}

	s.finish(ctx, history.Entry{
		QueueID:  queueID,
		Trigger:  trigger,
		FileName: pipeline.Metadata(meta).FileName(),
	}, res.Result, start)
}

// resultFields flattens a complete result into the partial-update columns of
// the processing_queue record.
func resultFields(res pipeline.CompleteResult) map[string]any {
	return map[string]any{
		"status":                 string(queue.StatusAnalysisComplete),
		"progress":               90,
		"current_step":           "AI analysis complete",
		"content_title":          res.ContentTitle,
		"content_authors":        res.ContentAuthors,
		"content_date":           res.ContentDate,
		"initial_analysis":       res.InitialAnalysis,
		"detailed_analysis":      res.DetailedAnalysis,
		"classification":         res.Classification,
		"catalogue_entry":        res.CatalogueEntry,
		"final_analysis":         res.FinalAnalysis,
		"writing_style_analysis": res.WritingStyleAnalysis,
		"analytical_frameworks":  res.AnalyticalFrameworks,
		"qa_pairs":               res.QAPairs,
		"comparative_analyses":   res.ComparativeAnalyses,
		"is_hall_document":       res.IsHallDocument,
		"embedding_vector_pg":    res.EmbeddingVector,
		"embedding_metadata":     res.EmbeddingMetadata,
		"entities":               res.Entities,
		"relationships":          res.Relationships,
		"graph_metadata":         res.GraphMetadata,
		"completed_at":           time.Now().UTC().Format(time.RFC3339),
	}
}

// finish records metrics and a best-effort history entry for a completed run.
func (s *Service) finish(ctx context.Context, entry history.Entry, res pipeline.Result, start time.Time) {
	duration := time.Since(start)
	metrics.ObserveAnalysisDurationMs(float64(duration.Milliseconds()))
	if res.Failed() {
		metrics.IncAnalysisFailed()
		entry.Status = string(queue.StatusFailed)
		entry.Error = res.Error
	} else {
		metrics.IncAnalysisCompleted()
		entry.Status = string(queue.StatusAnalysisComplete)
	}
	entry.DurationMs = duration.Milliseconds()
	entry.CreatedAt = time.Now().UTC()

	if s.History == nil {
		return
	}
	if err := s.History.Record(ctx, entry); err != nil {
		telemetry.Error("analyses.history_write_failed", map[string]any{"queue_id": entry.QueueID, "error": err.Error()})
	}
}
