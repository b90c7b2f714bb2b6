package mocks

import (
	"context"

	"digihub/internal/model"

	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) ListLogs(ctx context.Context, kind model.EntityKind, entityID, limit int) ([]model.ActivityLog, error) {
	args := m.Called(ctx, kind, entityID, limit)
	if logs, ok := args.Get(0).([]model.ActivityLog); ok {
		return logs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) ListTopLevelComments(ctx context.Context, kind model.EntityKind, entityID, limit int) ([]model.Comment, error) {
	args := m.Called(ctx, kind, entityID, limit)
	if comments, ok := args.Get(0).([]model.Comment); ok {
		return comments, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) CountFeed(ctx context.Context, kind model.EntityKind, entityID int) (int, error) {
	args := m.Called(ctx, kind, entityID)
	return args.Int(0), args.Error(1)
}

func (m *ActivityRepository) ListReplies(ctx context.Context, commentID int) ([]model.Comment, error) {
	args := m.Called(ctx, commentID)
	if comments, ok := args.Get(0).([]model.Comment); ok {
		return comments, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) GetComment(ctx context.Context, id int) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*model.Comment); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) CreateComment(ctx context.Context, c *model.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ActivityRepository) UpdateComment(ctx context.Context, id int, content string) (*model.Comment, error) {
	args := m.Called(ctx, id, content)
	if c, ok := args.Get(0).(*model.Comment); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) DeleteComment(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// NotificationRepository is a mock for mqhandler.NotificationStore.
type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Insert(ctx context.Context, n *model.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}
