package analyses

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service

	// APIAvailable reports whether a real LLM API key is configured; it is
	// surfaced by the debug endpoint only.
	APIAvailable bool
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.POST("/analyze-complete", h.analyzeComplete)
	rg.POST("/analyze-async", h.analyzeAsync)
	rg.POST("/test", h.testAnalysis)
}

func (h *Handler) analyze(c *gin.Context) {
	req, ok := bindAnalyzeRequest(c)
	if !ok {
		return
	}

	telemetry.Info("analyze.request", map[string]any{
		"file":       fileName(req.Metadata),
		"text_len":   len(req.Text),
		"request_id": c.GetString("requestId"),
	})

	res := h.Svc.Analyze(c.Request.Context(), req.Text, req.Metadata)
	if res.Failed() {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": res.Error, "analysis": res})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": res})
}

func (h *Handler) analyzeComplete(c *gin.Context) {
	req, ok := bindAnalyzeRequest(c)
	if !ok {
		return
	}

	telemetry.Info("analyze_complete.request", map[string]any{
		"file":       fileName(req.Metadata),
		"text_len":   len(req.Text),
		"request_id": c.GetString("requestId"),
	})

	res := h.Svc.AnalyzeComplete(c.Request.Context(), req.Text, req.Metadata)
	if res.Failed() {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": res.Error, "analysis": res})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": res})
}

func (h *Handler) analyzeAsync(c *gin.Context) {
	var req AsyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON body"})
		return
	}
	if req.QueueID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No queue_id provided in request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Text content is empty"})
		return
	}

	if err := h.Svc.StartAsync(c.Request.Context(), req); err != nil {
		if errors.Is(err, ErrStoreNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "record store not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":  true,
		"queue_id": req.QueueID,
		"status":   "accepted",
	})
}

// testAnalysis is a debug endpoint: it confirms text can be received and
// reports whether the analysis API is usable, without touching the pipeline.
func (h *Handler) testAnalysis(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No text provided"})
		return
	}
	text, ok := body["text"].(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No text provided"})
		return
	}

	first := text
	if len(first) > 100 {
		first = first[:100]
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"test_result": gin.H{
			"received_chars":        len(text),
			"word_count":            len(strings.Fields(text)),
			"first_100_chars":       first,
			"mistral_api_available": h.APIAvailable,
		},
	})
}

func bindAnalyzeRequest(c *gin.Context) (AnalyzeRequest, bool) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No JSON data provided"})
		return req, false
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Text content is empty"})
		return req, false
	}
	return req, true
}

func fileName(meta map[string]any) string {
	if name, ok := meta["file_name"].(string); ok && name != "" {
		return name
	}
	return "unknown"
}
