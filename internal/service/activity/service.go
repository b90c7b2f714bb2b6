// Package activity serves the merged change-log and comment feed of an entity
// and the comment threads hanging off it.
package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"digihub/internal/model"
	"digihub/internal/repository"
	"digihub/pkg/metrics"
	"digihub/pkg/rbac"

	"go.uber.org/zap"
)

// DefaultPageSize applies when a query has no limit. Pages are unbounded
// unless WithPageSizes sets a maximum.
const DefaultPageSize = 50

type Repository interface {
	ListLogs(ctx context.Context, kind model.EntityKind, entityID, limit int) ([]model.ActivityLog, error)
	ListTopLevelComments(ctx context.Context, kind model.EntityKind, entityID, limit int) ([]model.Comment, error)
	CountFeed(ctx context.Context, kind model.EntityKind, entityID int) (int, error)
	ListReplies(ctx context.Context, commentID int) ([]model.Comment, error)
	GetComment(ctx context.Context, id int) (*model.Comment, error)
	CreateComment(ctx context.Context, c *model.Comment) error
	UpdateComment(ctx context.Context, id int, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id int) error
}

type Service struct {
	repo            Repository
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:            repo,
		logger:          logger,
		defaultPageSize: DefaultPageSize,
	}
}

// WithPageSizes overrides the default page size and sets an upper bound on
// the limit. maxSize 0 leaves pages unbounded.
func (s *Service) WithPageSizes(def, maxSize int) *Service {
	if def > 0 {
		s.defaultPageSize = def
	}
	if maxSize == 0 || maxSize >= s.defaultPageSize {
		s.maxPageSize = maxSize
	}
	return s
}

type FeedQuery struct {
	EntityType string
	EntityID   int
	Page       int
	Limit      int
}

// GetFeed returns one page of the entity's logs and top-level comments, newest first.
// An entity with no activity yields an empty page, not an error.
func (s *Service) GetFeed(ctx context.Context, q FeedQuery) (*model.Feed, error) {
	kind, err := model.ParseEntityKind(q.EntityType)
	if err != nil {
		return nil, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if s.maxPageSize > 0 && limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	offset := (page - 1) * limit

	logs, err := s.repo.ListLogs(ctx, kind, q.EntityID, offset+limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	comments, err := s.repo.ListTopLevelComments(ctx, kind, q.EntityID, offset+limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	total, err := s.repo.CountFeed(ctx, kind, q.EntityID)
	if err != nil {
		return nil, fmt.Errorf("count feed: %w", err)
	}

	metrics.IncrementFeedRequest(string(kind))

	return &model.Feed{
		Items:      MergeFeed(logs, comments, offset, limit),
		Pagination: model.NewPagination(total, page, limit),
	}, nil
}

// GetReplies returns the direct replies of commentID, oldest first.
func (s *Service) GetReplies(ctx context.Context, commentID int) ([]model.Comment, error) {
	replies, err := s.repo.ListReplies(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

type CreateCommentInput struct {
	EntityType string
	EntityID   int
	AuthorID   int
	Content    string
	ParentID   *int
}

// CreateComment stores a comment or reply. It never writes an activity log.
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*model.Comment, error) {
	kind, err := model.ParseEntityKind(in.EntityType)
	if err != nil {
		return nil, err
	}
	if in.EntityID <= 0 {
		return nil, ErrInvalidEntityID
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c := &model.Comment{
		EntityKind: kind,
		EntityID:   in.EntityID,
		UserID:     in.AuthorID,
		Content:    content,
		ParentID:   in.ParentID,
	}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		if errors.Is(err, repository.ErrParentNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}

	metrics.IncrementCommentCreated(string(kind), in.ParentID != nil)
	s.logger.Info("Comment created",
		zap.Int("comment_id", c.ID),
		zap.String("entity_type", string(kind)),
		zap.Int("entity_id", in.EntityID),
		zap.Int("user_id", in.AuthorID),
	)
	return c, nil
}

// UpdateComment replaces the content of a comment. Only its author may do so.
func (s *Service) UpdateComment(ctx context.Context, commentID, authorID int, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	existing, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != authorID {
		return nil, ErrForbidden
	}

	updated, err := s.repo.UpdateComment(ctx, commentID, content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return updated, nil
}

// DeleteComment removes a comment and, through the storage cascade, all of its replies.
// The author may always delete; anyone else needs comment:delete_any.
func (s *Service) DeleteComment(ctx context.Context, commentID, requesterID int, requesterRole string) error {
	existing, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if existing.UserID != requesterID && !rbac.HasPermission(requesterRole, rbac.PermissionCommentDeleteAny) {
		return ErrForbidden
	}

	if err := s.repo.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	s.logger.Info("Comment deleted",
		zap.Int("comment_id", commentID),
		zap.Int("requester_id", requesterID),
		zap.Int("replies_removed", existing.RepliesCount),
	)
	return nil
}

func (s *Service) getComment(ctx context.Context, id int) (*model.Comment, error) {
	c, err := s.repo.GetComment(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}
