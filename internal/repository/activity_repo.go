package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	contractmq "digihub/contracts/mq"
	"digihub/internal/model"
	"digihub/pkg/db"
	"digihub/pkg/outbox"
	"digihub/pkg/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const excerptLen = 120

// ActivityRepository reads activity logs and reads/writes comments.
type ActivityRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, outbox: outboxRepo, logger: logger}
}

// ListLogs returns the newest limit log rows of the entity.
func (r *ActivityRepository) ListLogs(ctx context.Context, kind model.EntityKind, entityID, limit int) ([]model.ActivityLog, error) {
	r.logger.Debug("Listing activity logs",
		zap.String("entity_type", string(kind)),
		zap.Int("entity_id", entityID),
		zap.Int("limit", limit),
	)
	query := logsQuery(kind)

	rows, err := r.db.Query(ctx, query, entityID, limit)
	if err != nil {
		r.logger.Error("Failed to query activity logs", zap.Int("entity_id", entityID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	logs := []model.ActivityLog{}
	for rows.Next() {
		l := model.ActivityLog{EntityID: entityID}
		if err := rows.Scan(
			&l.ID,
			&l.Action,
			&l.EntityKind,
			&l.EntityName,
			&l.Details,
			&l.UserID,
			&l.UserName,
			&l.UserAvatar,
			&l.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan activity log row", zap.Error(err))
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

const commentSelect = `
        SELECT c.id, c.entity_type,
               COALESCE(c.project_id, c.module_id, c.submodule_id, c.task_id),
               c.user_id, COALESCE(u.display_name, ''), u.avatar_url,
               c.content, c.parent_id,
               (SELECT COUNT(*) FROM comments r WHERE r.parent_id = c.id),
               c.created_at, c.updated_at
        FROM comments c
        LEFT JOIN users u ON u.id = c.user_id`

// Replies run oldest first, the opposite of the feed.
const repliesQuery = commentSelect + `
        WHERE c.parent_id = $1
        ORDER BY c.created_at ASC, c.id ASC`

// parentEntityQuery returns the entity a comment is attached to.
const parentEntityQuery = `
        SELECT entity_type, COALESCE(project_id, module_id, submodule_id, task_id)
        FROM comments
        WHERE id = $1`

func logsQuery(kind model.EntityKind) string {
	return fmt.Sprintf(`
        SELECT l.id, l.action, l.entity_type, l.entity_name, l.details, l.user_id,
               COALESCE(u.display_name, ''), u.avatar_url, l.created_at
        FROM activity_logs l
        LEFT JOIN users u ON u.id = l.user_id
        WHERE l.%s = $1
        ORDER BY l.created_at DESC, l.id DESC
        LIMIT $2
    `, kind.Column())
}

func topLevelCommentsQuery(kind model.EntityKind) string {
	return commentSelect + fmt.Sprintf(`
        WHERE c.%s = $1 AND c.parent_id IS NULL
        ORDER BY c.created_at DESC, c.id DESC
        LIMIT $2`, kind.Column())
}

func countFeedQuery(kind model.EntityKind) string {
	col := kind.Column()
	return fmt.Sprintf(`
        SELECT
            (SELECT COUNT(*) FROM activity_logs WHERE %s = $1) +
            (SELECT COUNT(*) FROM comments WHERE %s = $1 AND parent_id IS NULL)
    `, col, col)
}

func insertCommentQuery(kind model.EntityKind) string {
	return fmt.Sprintf(`
            INSERT INTO comments (entity_type, %s, user_id, content, parent_id)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, created_at, updated_at
        `, kind.Column())
}

// ListTopLevelComments returns the newest limit comments of the entity that have no parent.
func (r *ActivityRepository) ListTopLevelComments(ctx context.Context, kind model.EntityKind, entityID, limit int) ([]model.Comment, error) {
	return r.queryComments(ctx, topLevelCommentsQuery(kind), entityID, limit)
}

// ListReplies returns the direct replies of commentID, oldest first.
func (r *ActivityRepository) ListReplies(ctx context.Context, commentID int) ([]model.Comment, error) {
	return r.queryComments(ctx, repliesQuery, commentID)
}

func (r *ActivityRepository) queryComments(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query comments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			r.logger.Error("Failed to scan comment row", zap.Error(err))
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func scanComment(row pgx.Row) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(
		&c.ID,
		&c.EntityKind,
		&c.EntityID,
		&c.UserID,
		&c.UserName,
		&c.UserAvatar,
		&c.Content,
		&c.ParentID,
		&c.RepliesCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountFeed counts log rows plus top-level comments of the entity.
func (r *ActivityRepository) CountFeed(ctx context.Context, kind model.EntityKind, entityID int) (int, error) {
	query := countFeedQuery(kind)

	var total int
	if err := r.db.QueryRow(ctx, query, entityID).Scan(&total); err != nil {
		r.logger.Error("Failed to count feed", zap.Int("entity_id", entityID), zap.Error(err))
		return 0, err
	}
	return total, nil
}

// GetComment loads one comment with its author and reply count.
func (r *ActivityRepository) GetComment(ctx context.Context, id int) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// CreateComment inserts c in one transaction. A reply whose parent does not exist,
// or hangs off another entity, fails with ErrParentNotFound and writes nothing. Replies also queue a
// comment.created outbox event so the parent's author can be notified.
func (r *ActivityRepository) CreateComment(ctx context.Context, c *model.Comment) error {
	r.logger.Debug("Creating comment",
		zap.String("entity_type", string(c.EntityKind)),
		zap.Int("entity_id", c.EntityID),
		zap.Int("user_id", c.UserID),
	)

	err := db.WithinTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if c.ParentID != nil {
			if err := checkParentComment(ctx, tx, c); err != nil {
				return err
			}
		}

		query := insertCommentQuery(c.EntityKind)
		if err := tx.QueryRow(ctx, query,
			c.EntityKind, c.EntityID, c.UserID, c.Content, c.ParentID,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}

		if err := tx.QueryRow(ctx,
			`SELECT display_name, avatar_url FROM users WHERE id = $1`, c.UserID,
		).Scan(&c.UserName, &c.UserAvatar); err != nil {
			return fmt.Errorf("load comment author: %w", err)
		}
		c.RepliesCount = 0

		if c.ParentID == nil || r.outbox == nil {
			return nil
		}
		aggregateID := int64(c.ID)
		return outbox.InsertEventInTx(ctx, tx, r.outbox,
			contractmq.AggregateComment, &aggregateID, contractmq.RoutingKeyCommentCreated,
			contractmq.CommentCreatedPayload{
				CommentID:  c.ID,
				ParentID:   *c.ParentID,
				EntityType: string(c.EntityKind),
				EntityID:   c.EntityID,
				AuthorID:   c.UserID,
				AuthorName: c.UserName,
				Excerpt:    excerpt(c.Content),
				TraceID:    trace.FromContext(ctx),
				CreatedAt:  c.CreatedAt,
			})
	})
	if err != nil {
		if !errors.Is(err, ErrParentNotFound) {
			r.logger.Error("Failed to create comment", zap.Error(err))
		}
		return err
	}

	r.logger.Info("Comment created",
		zap.Int("comment_id", c.ID),
		zap.Bool("reply", c.ParentID != nil),
	)
	return nil
}

// checkParentComment requires the parent of reply c to exist on the same entity.
func checkParentComment(ctx context.Context, tx pgx.Tx, c *model.Comment) error {
	var (
		kind     model.EntityKind
		entityID int
	)
	err := tx.QueryRow(ctx, parentEntityQuery, *c.ParentID).Scan(&kind, &entityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrParentNotFound
	}
	if err != nil {
		return err
	}
	if kind != c.EntityKind || entityID != c.EntityID {
		return ErrParentNotFound
	}
	return nil
}

// UpdateComment replaces the content of comment id and returns the updated row.
func (r *ActivityRepository) UpdateComment(ctx context.Context, id int, content string) (*model.Comment, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE comments SET content = $2, updated_at = NOW() WHERE id = $1`, id, content)
	if err != nil {
		r.logger.Error("Failed to update comment", zap.Int("comment_id", id), zap.Error(err))
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetComment(ctx, id)
}

// DeleteComment removes comment id. Replies go with it through ON DELETE CASCADE.
func (r *ActivityRepository) DeleteComment(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete comment", zap.Int("comment_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Comment deleted", zap.Int("comment_id", id))
	return nil
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	return string([]rune(s)[:excerptLen]) + "…"
}
