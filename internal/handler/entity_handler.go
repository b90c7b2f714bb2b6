package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"digihub/internal/model"
	"digihub/internal/service/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var errBadDate = errors.New("dates must be YYYY-MM-DD")

// EntityHandler serves /projects, /modules, /submodules and /tasks.
type EntityHandler struct {
	svc    *entity.Service
	logger *zap.Logger
}

func NewEntityHandler(svc *entity.Service, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{svc: svc, logger: logger}
}

// optional tells an absent JSON key apart from an explicit null.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// entityBody is the request shape shared by create and update. The parent key
// differs per kind; tasks take camelCase moduleId on update. A date sent as
// null or "" clears it; group_id null takes a project out of its group.
type entityBody struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Status      *string          `json:"status"`
	Priority    *string          `json:"priority"`
	Progress    *int             `json:"progress"`
	StartDate   optional[string] `json:"start_date"`
	DueDate     optional[string] `json:"due_date"`

	GroupID      optional[int] `json:"group_id"`
	ProjectID    *int          `json:"project_id"`
	ModuleID     *int          `json:"module_id"`
	TaskModuleID *int          `json:"moduleId"`
}

func (b entityBody) parent(kind model.EntityKind) *int {
	switch kind {
	case model.KindProject:
		return b.GroupID.Value
	case model.KindModule:
		return b.ProjectID
	case model.KindSubmodule:
		return b.ModuleID
	case model.KindTask:
		if b.TaskModuleID != nil {
			return b.TaskModuleID
		}
		return b.ModuleID
	}
	return nil
}

func (b entityBody) patch(kind model.EntityKind) (model.EntityPatch, error) {
	start, clearStart, err := parseDate(b.StartDate)
	if err != nil {
		return model.EntityPatch{}, err
	}
	due, clearDue, err := parseDate(b.DueDate)
	if err != nil {
		return model.EntityPatch{}, err
	}
	return model.EntityPatch{
		Name:           b.Name,
		Description:    b.Description,
		Status:         b.Status,
		Priority:       b.Priority,
		Progress:       b.Progress,
		StartDate:      start,
		DueDate:        due,
		ClearStartDate: clearStart,
		ClearDueDate:   clearDue,
		ParentID:       b.parent(kind),
		ClearParent:    kind == model.KindProject && b.GroupID.Set && b.GroupID.Value == nil,
	}, nil
}

// parseDate returns the date to set, or true when the key was sent empty.
func parseDate(f optional[string]) (*time.Time, bool, error) {
	if !f.Set {
		return nil, false, nil
	}
	if f.Value == nil || *f.Value == "" {
		return nil, true, nil
	}
	d, err := time.Parse(dateLayout, *f.Value)
	if err != nil {
		return nil, false, errBadDate
	}
	return &d, false, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Create handles POST /{kind}s.
func (h *EntityHandler) Create(kind model.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		var body entityBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := body.patch(kind)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		e, err := h.svc.Create(c.Request.Context(), userID, entity.CreateInput{
			Kind:        kind,
			ParentID:    p.ParentID,
			Name:        deref(p.Name),
			Description: deref(p.Description),
			Status:      deref(p.Status),
			Priority:    deref(p.Priority),
			Progress:    deref(p.Progress),
			StartDate:   p.StartDate,
			DueDate:     p.DueDate,
		})
		if err != nil {
			respondErr(c, h.logger, fmt.Sprintf("Create %s", kind), err)
			return
		}
		respond(c, http.StatusCreated, e)
	}
}

// Get handles GET /{kind}s/:id.
func (h *EntityHandler) Get(kind model.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		e, err := h.svc.Get(c.Request.Context(), kind, id)
		if err != nil {
			respondErr(c, h.logger, fmt.Sprintf("Get %s", kind), err)
			return
		}
		respond(c, http.StatusOK, e)
	}
}

// Update handles PUT and PATCH /{kind}s/:id. A parent key in the body re-parents.
func (h *EntityHandler) Update(kind model.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var body entityBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := body.patch(kind)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		e, err := h.svc.Update(c.Request.Context(), userID, kind, id, p)
		if err != nil {
			respondErr(c, h.logger, fmt.Sprintf("Update %s", kind), err)
			return
		}
		respond(c, http.StatusOK, e)
	}
}

// MoveModule handles PATCH /modules/:id/move {project_id}.
func (h *EntityHandler) MoveModule(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body struct {
		ProjectID int `json:"project_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProjectID <= 0 {
		respondError(c, http.StatusBadRequest, "project_id is required")
		return
	}

	e, err := h.svc.Move(c.Request.Context(), userID, model.KindModule, id, body.ProjectID)
	if err != nil {
		respondErr(c, h.logger, "MoveModule", err)
		return
	}
	respond(c, http.StatusOK, e)
}

// Delete handles DELETE /{kind}s/:id.
func (h *EntityHandler) Delete(kind model.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := h.svc.Delete(c.Request.Context(), userID, kind, id); err != nil {
			respondErr(c, h.logger, fmt.Sprintf("Delete %s", kind), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("%s deleted", kind)})
	}
}
