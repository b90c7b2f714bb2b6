package handler

import (
	"context"
	"net/http"

	"digihub/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HierarchyLoader returns the whole group/project/module/task tree.
type HierarchyLoader interface {
	Load(ctx context.Context) (*model.Hierarchy, error)
}

type HierarchyHandler struct {
	loader HierarchyLoader
	logger *zap.Logger
}

func NewHierarchyHandler(loader HierarchyLoader, logger *zap.Logger) *HierarchyHandler {
	return &HierarchyHandler{loader: loader, logger: logger}
}

// Get handles GET /hierarchy.
func (h *HierarchyHandler) Get(c *gin.Context) {
	hier, err := h.loader.Load(c.Request.Context())
	if err != nil {
		respondErr(c, h.logger, "LoadHierarchy", err)
		return
	}
	respond(c, http.StatusOK, hier)
}
