package repository

import (
	"context"

	"digihub/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Insert writes n unless the user was already notified about the same comment.
// It reports whether a row was inserted.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO notifications (user_id, comment_id, message)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, comment_id) DO NOTHING
    `, n.UserID, n.CommentID, n.Message)
	if err != nil {
		r.logger.Error("Failed to insert notification",
			zap.Int("user_id", n.UserID),
			zap.Error(err),
		)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser returns the newest limit notifications of userID.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.Notification, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, comment_id, message, is_read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		r.logger.Error("Failed to query notifications", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.CommentID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one of userID's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
