package mq

import "time"

const (
	RoutingKeyCommentCreated = "comment.created"

	AggregateComment = "comment"
)

// CommentCreatedPayload is published through the outbox when a reply is posted.
type CommentCreatedPayload struct {
	CommentID  int       `json:"comment_id"`
	ParentID   int       `json:"parent_id"`
	EntityType string    `json:"entity_type"`
	EntityID   int       `json:"entity_id"`
	AuthorID   int       `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Excerpt    string    `json:"excerpt"`
	TraceID    string    `json:"trace_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
