package handler

import (
	"errors"
	"net/http"
	"strconv"

	"digihub/internal/model"
	"digihub/internal/repository"
	"digihub/internal/service/activity"
	"digihub/internal/service/auth"
	"digihub/internal/service/entity"
	"digihub/pkg/outbox"
	"digihub/pkg/trace"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gin context keys set by the auth middleware.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondErr converts a service error into the JSON envelope. Unknown errors
// become a generic 500 and are logged, never echoed.
func respondErr(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed",
			zap.String("trace_id", trace.FromContext(c.Request.Context())),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	} else {
		logger.Warn(op+" rejected",
			zap.Int("status", status),
			zap.String("reason", err.Error()),
		)
	}
	respondError(c, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidEntityKind):
		return http.StatusBadRequest, "Invalid entity type"
	case errors.Is(err, activity.ErrEmptyContent),
		errors.Is(err, activity.ErrInvalidEntityID),
		errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidParent),
		errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	// Kept as a server error: clients already match on this status and message.
	case errors.Is(err, activity.ErrParentNotFound):
		return http.StatusInternalServerError, "Parent comment not found"
	case errors.Is(err, activity.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to modify this comment"
	case errors.Is(err, activity.ErrNotFound):
		return http.StatusNotFound, "Comment not found"
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, "Entity not found"
	case errors.Is(err, entity.ErrParentNotFound):
		return http.StatusNotFound, "Parent not found"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, outbox.ErrEventNotFound):
		return http.StatusNotFound, "Not found"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func currentUser(c *gin.Context) (int, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

func currentRole(c *gin.Context) string {
	role, _ := c.Get(ContextRole)
	s, _ := role.(string)
	return s
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (int, bool) {
	id, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
	}
	return id, ok
}

// pathID parses the named path parameter as a positive int or writes a 400.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
