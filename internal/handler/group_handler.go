package handler

import (
	"context"
	"net/http"
	"strings"

	"digihub/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GroupStore persists the top-level groups of the tree.
type GroupStore interface {
	Create(ctx context.Context, g *model.Group) error
	Update(ctx context.Context, id int, name *string, expanded *bool) (*model.Group, error)
	Delete(ctx context.Context, id int) error
}

type GroupHandler struct {
	store  GroupStore
	logger *zap.Logger
}

func NewGroupHandler(store GroupStore, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{store: store, logger: logger}
}

type groupBody struct {
	Name     *string `json:"name"`
	Expanded *bool   `json:"expanded"`
}

// Create handles POST /groups.
func (h *GroupHandler) Create(c *gin.Context) {
	var body groupBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}
	g := &model.Group{Name: strings.TrimSpace(*body.Name), Expanded: true}
	if body.Expanded != nil {
		g.Expanded = *body.Expanded
	}
	if err := h.store.Create(c.Request.Context(), g); err != nil {
		respondErr(c, h.logger, "CreateGroup", err)
		return
	}
	respond(c, http.StatusCreated, g)
}

// Update handles PUT /groups/:id. Only the fields present are changed.
func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body groupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		respondError(c, http.StatusBadRequest, "name must not be empty")
		return
	}
	g, err := h.store.Update(c.Request.Context(), id, body.Name, body.Expanded)
	if err != nil {
		respondErr(c, h.logger, "UpdateGroup", err)
		return
	}
	respond(c, http.StatusOK, g)
}

// Delete handles DELETE /groups/:id.
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, h.logger, "DeleteGroup", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "group deleted"})
}
