package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	mqcontracts "digihub/contracts/mq"
	"digihub/internal/model"
	"digihub/internal/repository"
	"digihub/internal/repository/mocks"
	"digihub/pkg/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeDLQ struct {
	keys   []string
	errors []string
}

func (d *fakeDLQ) PublishToDLQ(_ context.Context, routingKey string, _ []byte, originalError, _ string) error {
	d.keys = append(d.keys, routingKey)
	d.errors = append(d.errors, originalError)
	return nil
}

type fixture struct {
	comments *mocks.ActivityRepository
	notifs   *mocks.NotificationRepository
	dlq      *fakeDLQ
	handler  *CommentReplyHandler
	redis    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		comments: &mocks.ActivityRepository{},
		notifs:   &mocks.NotificationRepository{},
		dlq:      &fakeDLQ{},
		redis:    mr,
	}
	f.handler = NewCommentReplyHandler(f.comments, f.notifs,
		util.NewDeduper(rdb, time.Hour, nil), util.NewRetryCounter(rdb, time.Hour), f.dlq, nil)
	return f
}

func payload(t *testing.T, commentID, parentID, authorID int) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(mqcontracts.CommentCreatedPayload{
		CommentID: commentID, ParentID: parentID, EntityType: "task", EntityID: 4,
		AuthorID: authorID, AuthorName: "Dana", Excerpt: "agreed",
	})
	require.NoError(t, err)
	return b
}

func TestHandle_NotifiesParentAuthorOnce(t *testing.T) {
	f := newFixture(t)
	f.comments.On("GetComment", mock.Anything, 10).Return(&model.Comment{ID: 10, UserID: 1}, nil).Once()
	f.notifs.On("Insert", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == 1 && n.CommentID != nil && *n.CommentID == 11 && n.Message == "Dana replied to your comment: agreed"
	})).Return(true, nil).Once()

	msg := payload(t, 11, 10, 2)
	require.NoError(t, f.handler.Handle(context.Background(), msg))
	require.NoError(t, f.handler.Handle(context.Background(), msg))

	f.comments.AssertExpectations(t)
	f.notifs.AssertExpectations(t)
}

func TestHandle_SelfReplySkipped(t *testing.T) {
	f := newFixture(t)
	f.comments.On("GetComment", mock.Anything, 10).Return(&model.Comment{ID: 10, UserID: 2}, nil)

	require.NoError(t, f.handler.Handle(context.Background(), payload(t, 11, 10, 2)))
	f.notifs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestHandle_ParentGone(t *testing.T) {
	f := newFixture(t)
	f.comments.On("GetComment", mock.Anything, 10).Return(nil, repository.ErrNotFound)

	require.NoError(t, f.handler.Handle(context.Background(), payload(t, 11, 10, 2)))
	assert.Empty(t, f.dlq.keys)
}

func TestHandle_BadPayloadDeadLettered(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handler.Handle(context.Background(), json.RawMessage(`{"comment_id":"x"}`)))
	assert.Equal(t, []string{mqcontracts.RoutingKeyCommentCreated}, f.dlq.keys)
}

func TestHandle_NonRetryableDeadLettered(t *testing.T) {
	f := newFixture(t)
	f.comments.On("GetComment", mock.Anything, 10).Return(&model.Comment{ID: 10, UserID: 1}, nil)
	f.notifs.On("Insert", mock.Anything, mock.Anything).Return(false, fmt.Errorf("boom"))

	require.NoError(t, f.handler.Handle(context.Background(), payload(t, 11, 10, 2)))
	assert.Len(t, f.dlq.keys, 1)
	assert.False(t, f.redis.Exists(util.FormatDedupKey(handlerName, 11)))
}

func TestHandle_RetryableRequeuedThenDeadLettered(t *testing.T) {
	f := newFixture(t)
	f.comments.On("GetComment", mock.Anything, 10).Return(&model.Comment{ID: 10, UserID: 1}, nil)
	f.notifs.On("Insert", mock.Anything, mock.Anything).Return(false, fmt.Errorf("insert: %w", context.DeadlineExceeded))

	msg := payload(t, 11, 10, 2)
	for i := 1; i < DefaultMaxAttempts; i++ {
		assert.Error(t, f.handler.Handle(context.Background(), msg), "attempt %d", i)
		assert.Empty(t, f.dlq.keys)
	}
	require.NoError(t, f.handler.Handle(context.Background(), msg))
	assert.Len(t, f.dlq.keys, 1)
	assert.False(t, f.redis.Exists(util.FormatRetryKey(handlerName, 11)))
}

func TestHandle_WithoutRedis(t *testing.T) {
	comments := &mocks.ActivityRepository{}
	notifs := &mocks.NotificationRepository{}
	comments.On("GetComment", mock.Anything, 10).Return(&model.Comment{ID: 10, UserID: 1}, nil)
	notifs.On("Insert", mock.Anything, mock.Anything).Return(true, nil)

	h := NewCommentReplyHandler(comments, notifs, nil, nil, nil, nil)
	require.NoError(t, h.Handle(context.Background(), payload(t, 11, 10, 2)))
	notifs.AssertNumberOfCalls(t, "Insert", 1)
}
