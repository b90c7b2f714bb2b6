package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqcontracts "digihub/contracts/mq"
	"digihub/internal/model"
	"digihub/internal/repository"
	"digihub/pkg/logger"
	"digihub/pkg/metrics"
	"digihub/pkg/util"

	"go.uber.org/zap"
)

const (
	handlerName        = "comment_reply"
	DefaultMaxAttempts = 3
)

type CommentReader interface {
	GetComment(ctx context.Context, id int) (*model.Comment, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) (bool, error)
}

type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, routingKey string, payload []byte, originalError, failedAt string) error
}

// CommentReplyHandler consumes comment.created events and notifies the author
// of the parent comment.
type CommentReplyHandler struct {
	comments      CommentReader
	notifications NotificationStore
	deduper       *util.Deduper
	retries       *util.RetryCounter
	dlq           DLQPublisher
	maxAttempts   int64
	logger        *zap.Logger
}

// NewCommentReplyHandler wires the handler. deduper, retries and dlq may be nil
// when Redis or the broker DLQ is not available.
func NewCommentReplyHandler(
	comments CommentReader,
	notifications NotificationStore,
	deduper *util.Deduper,
	retries *util.RetryCounter,
	dlq DLQPublisher,
	logger *zap.Logger,
) *CommentReplyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentReplyHandler{
		comments:      comments,
		notifications: notifications,
		deduper:       deduper,
		retries:       retries,
		dlq:           dlq,
		maxAttempts:   DefaultMaxAttempts,
		logger:        logger,
	}
}

// Handle returns nil to ack and an error to nack and requeue.
func (h *CommentReplyHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var p mqcontracts.CommentCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error("Failed to unmarshal comment payload (non-retryable)", zap.Error(err))
		h.deadLetter(ctx, raw, err)
		return nil
	}
	if p.ParentID == 0 {
		return nil
	}

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, handlerName, p.CommentID) {
		return nil
	}

	parent, err := h.comments.GetComment(ctx, p.ParentID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("Parent comment gone, skipping notification",
			zap.Int("comment_id", p.CommentID),
			zap.Int("parent_id", p.ParentID),
		)
		return nil
	}
	if err != nil {
		return h.fail(ctx, log, p, raw, err)
	}
	if parent.UserID == p.AuthorID {
		return nil
	}

	commentID := p.CommentID
	notif := &model.Notification{
		UserID:    parent.UserID,
		CommentID: &commentID,
		Message:   fmt.Sprintf("%s replied to your comment: %s", p.AuthorName, p.Excerpt),
	}
	inserted, err := h.notifications.Insert(ctx, notif)
	if err != nil {
		return h.fail(ctx, log, p, raw, err)
	}

	if inserted {
		metrics.IncrementNotificationCreated()
		log.Info("Reply notification created",
			zap.Int("comment_id", p.CommentID),
			zap.Int("user_id", parent.UserID),
		)
	}
	if h.retries != nil {
		_ = h.retries.Reset(ctx, util.FormatRetryKey(handlerName, p.CommentID))
	}
	return nil
}

// fail decides between requeue and dead-lettering. The dedup key is released
// so a redelivery is not mistaken for a duplicate.
func (h *CommentReplyHandler) fail(ctx context.Context, log *zap.Logger, p mqcontracts.CommentCreatedPayload, raw []byte, err error) error {
	retryable, errType := util.IsRetryableError(err)
	log.Error("Failed to create reply notification",
		zap.Int("comment_id", p.CommentID),
		zap.String("error_type", errType),
		zap.Bool("retryable", retryable),
		zap.Error(err),
	)
	if h.deduper != nil {
		_ = h.deduper.Release(ctx, handlerName, p.CommentID)
	}

	if !retryable {
		h.deadLetter(ctx, raw, err)
		return nil
	}
	if h.retries == nil {
		return err
	}

	key := util.FormatRetryKey(handlerName, p.CommentID)
	attempts, cerr := h.retries.IncrementAndGet(ctx, key)
	if cerr != nil {
		return err
	}
	if attempts >= h.maxAttempts {
		log.Warn("Retry budget exhausted, dead-lettering",
			zap.Int("comment_id", p.CommentID),
			zap.Int64("attempts", attempts),
		)
		h.deadLetter(ctx, raw, err)
		_ = h.retries.Reset(ctx, key)
		return nil
	}
	return err
}

func (h *CommentReplyHandler) deadLetter(ctx context.Context, raw []byte, cause error) {
	if h.dlq == nil {
		return
	}
	if err := h.dlq.PublishToDLQ(ctx, mqcontracts.RoutingKeyCommentCreated, raw, cause.Error(), time.Now().UTC().Format(time.RFC3339)); err != nil {
		h.logger.Error("Failed to publish to DLQ", zap.Error(err))
	}
}
