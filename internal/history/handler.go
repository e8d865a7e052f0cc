package history

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/shared/server/respond"
)

// Handler exposes read access to the run history.
type Handler struct {
	Store Store
}

// NewHandler constructs a Handler.
func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.listHistory)
}

func (h *Handler) listHistory(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "invalid_limit", "limit must be an integer", nil)
			return
		}
		limit = parsed
	}

	var (
		entries []Entry
		err     error
	)
	if queueID := strings.TrimSpace(c.Query("queue_id")); queueID != "" {
		entries, err = h.Store.ListByQueueID(c.Request.Context(), queueID, limit)
	} else {
		entries, err = h.Store.ListRecent(c.Request.Context(), limit)
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list run history", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"runs": entries, "count": len(entries)})
}
