package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OutboxReplayer interface {
	ReplayEvent(ctx context.Context, eventID int64) error
	ReplayFailedEvents(ctx context.Context, limit int) (int, error)
}

type AdminHandler struct {
	replayer OutboxReplayer
	logger   *zap.Logger
}

func NewAdminHandler(replayer OutboxReplayer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{replayer: replayer, logger: logger}
}

// ReplayOutboxEvent re-publishes one outbox event.
// POST /admin/outbox/replay?id=xxx
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	idStr := c.Query("id")
	if idStr == "" {
		respondError(c, http.StatusBadRequest, "missing id parameter")
		return
	}
	eventID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := h.replayer.ReplayEvent(c.Request.Context(), eventID); err != nil {
		respondErr(c, h.logger.With(zap.Int64("event_id", eventID)), "ReplayOutboxEvent", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"status": "replayed", "event_id": eventID})
}

// ReplayFailedEvents re-publishes up to limit failed events.
// POST /admin/outbox/replay-failed?limit=100
func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	if limit <= 0 {
		limit = 100
	}

	n, err := h.replayer.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, h.logger, "ReplayFailedEvents", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"status": "completed", "success_count": n, "limit": limit})
}
