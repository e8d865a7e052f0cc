// Package webhook receives record-store change notifications and turns
// eligible ones into background analysis runs. Authentication is a shared
// secret header; eligibility is judged on the status transition carried by
// the payload plus a live re-read of the record.
package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/analyses"
	"archive-backend/internal/history"
	"archive-backend/internal/queue"
	"archive-backend/internal/shared/metrics"
	"archive-backend/internal/shared/telemetry"
)

const secretHeader = "X-Webhook-Secret"

// Payload is the change notification body sent by the record store.
type Payload struct {
	Type      string       `json:"type"`
	Record    queue.Record `json:"record"`
	OldRecord queue.Record `json:"old_record"`
}

// Handler authenticates and triages queue webhooks.
type Handler struct {
	Secret           string
	MinContentLength int
	Svc              *analyses.Service
	Queue            *queue.Gateway
}

// NewHandler constructs a Handler. A zero MinContentLength falls back to 100.
func NewHandler(secret string, minContentLength int, svc *analyses.Service, gw *queue.Gateway) *Handler {
	if minContentLength <= 0 {
		minContentLength = 100
	}
	return &Handler{Secret: secret, MinContentLength: minContentLength, Svc: svc, Queue: gw}
}

// RegisterRoutes attaches webhook routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/queue", h.handleQueueChange)
}

func (h *Handler) handleQueueChange(c *gin.Context) {
	// No secret configured means every delivery is unverifiable. Reject
	// them all rather than run unauthenticated work.
	if h.Secret == "" {
		telemetry.Error("webhook.secret_missing", map[string]any{"path": c.Request.URL.Path})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook secret not configured"})
		return
	}
	if c.GetHeader(secretHeader) != h.Secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}
	if h.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record store not configured"})
		return
	}

	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if payload.Record.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record id is required"})
		return
	}

	if !eligible(payload) {
		h.skip(c, payload.Record.ID, "not an entry into ocr_complete")
		return
	}

	// Re-read the live status: the payload may be stale, and a concurrent
	// delivery may have claimed the record already.
	ok, err := h.Queue.CheckStatus(c.Request.Context(), payload.Record.ID, queue.StatusOCRComplete)
	if err != nil {
		if errors.Is(err, queue.ErrNotFound) {
			h.skip(c, payload.Record.ID, "record not found")
			return
		}
		telemetry.Error("webhook.status_check_failed", map[string]any{"queue_id": payload.Record.ID, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status check failed"})
		return
	}
	if !ok {
		h.skip(c, payload.Record.ID, "live status moved past ocr_complete")
		return
	}

	content := payload.Record.Content
	if content == "" {
		record, err := h.Queue.FetchRecord(c.Request.Context(), payload.Record.ID)
		if errors.Is(err, queue.ErrNotFound) {
			h.skip(c, payload.Record.ID, "record not found")
			return
		}
		if err != nil {
			// A failed read must not be mistaken for an empty document: the
			// ready transition is terminal, so surface the failure and let
			// the store redeliver the notification.
			telemetry.Error("webhook.fetch_record_failed", map[string]any{"queue_id": payload.Record.ID, "error": err.Error()})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "record fetch failed"})
			return
		}
		content = record.Content
	}

	// Degenerate documents go straight to ready; there is nothing for the
	// model to work with.
	if len(content) < h.MinContentLength {
		if err := h.Queue.UpdateStatus(c.Request.Context(), payload.Record.ID, map[string]any{
			"status":       string(queue.StatusReady),
			"progress":     100,
			"current_step": "Document too short for AI analysis",
		}); err != nil {
			telemetry.Error("webhook.mark_ready_failed", map[string]any{"queue_id": payload.Record.ID, "error": err.Error()})
		}
		telemetry.Info("webhook.completed_without_analysis", map[string]any{
			"queue_id":    payload.Record.ID,
			"content_len": len(content),
		})
		c.JSON(http.StatusOK, gin.H{"status": "completed"})
		return
	}

	meta := map[string]any{
		"file_name":  payload.Record.FileName,
		"word_count": payload.Record.WordCount,
	}
	queueID := payload.Record.ID
	h.Svc.Dispatcher.Dispatch("webhook-analysis", func(ctx context.Context) {
		h.Svc.ProcessQueued(ctx, queueID, content, meta, history.TriggerWebhook)
	})

	telemetry.Info("webhook.accepted", map[string]any{"queue_id": queueID, "file": payload.Record.FileName})
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// eligible reports whether the payload describes an entry INTO ocr_complete.
// Repeat deliveries where the record was already ocr_complete are skipped.
func eligible(p Payload) bool {
	return p.Record.Status == string(queue.StatusOCRComplete) &&
		p.OldRecord.Status != string(queue.StatusOCRComplete)
}

func (h *Handler) skip(c *gin.Context, queueID, reason string) {
	metrics.IncWebhookSkipped()
	telemetry.Info("webhook.skipped", map[string]any{"queue_id": queueID, "reason": reason})
	c.JSON(http.StatusOK, gin.H{"status": "skipped"})
}
