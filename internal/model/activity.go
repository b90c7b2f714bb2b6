package model

import "time"

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionMoved   Action = "moved"
)

// FieldChange is the before/after pair of one watched field.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Details maps "<field>_changed" to its FieldChange.
type Details map[string]FieldChange

// ActivityLog is one immutable change-log row.
type ActivityLog struct {
	ID         int        `json:"id"`
	Action     Action     `json:"action"`
	EntityKind EntityKind `json:"entityType"`
	EntityID   int        `json:"entityId"`
	EntityName string     `json:"entityName"`
	Details    Details    `json:"details"`
	UserID     *int       `json:"userId"`
	UserName   string     `json:"userName"`
	UserAvatar *string    `json:"userAvatar"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Comment is a note on an entity or a reply to another comment.
type Comment struct {
	ID           int        `json:"id"`
	EntityKind   EntityKind `json:"entityType"`
	EntityID     int        `json:"entityId"`
	UserID       int        `json:"userId"`
	UserName     string     `json:"userName"`
	UserAvatar   *string    `json:"userAvatar"`
	Content      string     `json:"content"`
	ParentID     *int       `json:"parentId"`
	RepliesCount int        `json:"repliesCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type FeedItemType string

const (
	FeedItemLog     FeedItemType = "log"
	FeedItemComment FeedItemType = "comment"
)

// FeedItem is the presentation union of ActivityLog and Comment.
type FeedItem struct {
	Type       FeedItemType `json:"type"`
	ID         int          `json:"id"`
	EntityKind EntityKind   `json:"entityType"`
	EntityID   int          `json:"entityId"`
	UserID     *int         `json:"userId"`
	UserName   string       `json:"userName"`
	UserAvatar *string      `json:"userAvatar"`
	CreatedAt  time.Time    `json:"createdAt"`

	// log
	Action     Action  `json:"action,omitempty"`
	EntityName string  `json:"entityName,omitempty"`
	Details    Details `json:"details,omitempty"`

	// comment
	Content      string     `json:"content,omitempty"`
	ParentID     *int       `json:"parentId,omitempty"`
	RepliesCount *int       `json:"repliesCount,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// LogItem tags l as a feed item.
func LogItem(l ActivityLog) FeedItem {
	return FeedItem{
		Type:       FeedItemLog,
		ID:         l.ID,
		EntityKind: l.EntityKind,
		EntityID:   l.EntityID,
		UserID:     l.UserID,
		UserName:   l.UserName,
		UserAvatar: l.UserAvatar,
		CreatedAt:  l.CreatedAt,
		Action:     l.Action,
		EntityName: l.EntityName,
		Details:    l.Details,
	}
}

// CommentItem tags c as a feed item.
func CommentItem(c Comment) FeedItem {
	uid := c.UserID
	replies := c.RepliesCount
	updated := c.UpdatedAt
	return FeedItem{
		Type:         FeedItemComment,
		ID:           c.ID,
		EntityKind:   c.EntityKind,
		EntityID:     c.EntityID,
		UserID:       &uid,
		UserName:     c.UserName,
		UserAvatar:   c.UserAvatar,
		CreatedAt:    c.CreatedAt,
		Content:      c.Content,
		ParentID:     c.ParentID,
		RepliesCount: &replies,
		UpdatedAt:    &updated,
	}
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes TotalPages for total rows split into pages of limit.
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

type Feed struct {
	Items      []FeedItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}
