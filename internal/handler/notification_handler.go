package handler

import (
	"context"
	"net/http"

	"digihub/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultNotificationLimit = 50

type NotificationStore interface {
	ListByUser(ctx context.Context, userID, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
}

type NotificationHandler struct {
	store  NotificationStore
	logger *zap.Logger
}

func NewNotificationHandler(store NotificationStore, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{store: store, logger: logger}
}

// List handles GET /notifications?limit=
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", defaultNotificationLimit)
	if limit <= 0 || limit > defaultNotificationLimit*4 {
		limit = defaultNotificationLimit
	}
	items, err := h.store.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		respondErr(c, h.logger, "ListNotifications", err)
		return
	}
	if items == nil {
		items = []model.Notification{}
	}
	respond(c, http.StatusOK, items)
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.MarkRead(c.Request.Context(), id, userID); err != nil {
		respondErr(c, h.logger, "MarkNotificationRead", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification marked as read"})
}
