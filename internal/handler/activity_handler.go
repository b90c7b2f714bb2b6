package handler

import (
	"net/http"

	"digihub/internal/service/activity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	svc    *activity.Service
	logger *zap.Logger
}

func NewActivityHandler(svc *activity.Service, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// GetFeed handles GET /activities/:entityType/:entityId?page=&limit=
func (h *ActivityHandler) GetFeed(c *gin.Context) {
	entityID, ok := pathID(c, "entityId")
	if !ok {
		return
	}

	feed, err := h.svc.GetFeed(c.Request.Context(), activity.FeedQuery{
		EntityType: c.Param("entityType"),
		EntityID:   entityID,
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 0),
	})
	if err != nil {
		respondErr(c, h.logger, "GetFeed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       feed.Items,
		"pagination": feed.Pagination,
	})
}

// GetReplies handles GET /activities/comments/:commentId/replies
func (h *ActivityHandler) GetReplies(c *gin.Context) {
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	replies, err := h.svc.GetReplies(c.Request.Context(), commentID)
	if err != nil {
		respondErr(c, h.logger, "GetReplies", err)
		return
	}
	respond(c, http.StatusOK, replies)
}

type createCommentRequest struct {
	EntityType string `json:"entityType"`
	EntityID   int    `json:"entityId"`
	Content    string `json:"content"`
	ParentID   *int   `json:"parentId"`
}

// CreateComment handles POST /activities/comments
func (h *ActivityHandler) CreateComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EntityType == "" || req.EntityID == 0 || req.Content == "" {
		respondError(c, http.StatusBadRequest, "entityType, entityId and content are required")
		return
	}

	comment, err := h.svc.CreateComment(c.Request.Context(), activity.CreateCommentInput{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		AuthorID:   userID,
		Content:    req.Content,
		ParentID:   req.ParentID,
	})
	if err != nil {
		respondErr(c, h.logger, "CreateComment", err)
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"type":         "comment",
		"id":           comment.ID,
		"entityType":   comment.EntityKind,
		"entityId":     comment.EntityID,
		"userId":       comment.UserID,
		"userName":     comment.UserName,
		"userAvatar":   comment.UserAvatar,
		"content":      comment.Content,
		"parentId":     comment.ParentID,
		"repliesCount": comment.RepliesCount,
		"createdAt":    comment.CreatedAt,
		"updatedAt":    comment.UpdatedAt,
	})
}

// UpdateComment handles PUT /activities/comments/:commentId
func (h *ActivityHandler) UpdateComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		respondError(c, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.svc.UpdateComment(c.Request.Context(), commentID, userID, req.Content)
	if err != nil {
		respondErr(c, h.logger, "UpdateComment", err)
		return
	}
	respond(c, http.StatusOK, comment)
}

// DeleteComment handles DELETE /activities/comments/:commentId
func (h *ActivityHandler) DeleteComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	if err := h.svc.DeleteComment(c.Request.Context(), commentID, userID, currentRole(c)); err != nil {
		respondErr(c, h.logger, "DeleteComment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}
