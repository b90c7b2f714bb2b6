package repository

import (
	"context"

	"digihub/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type GroupRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewGroupRepository(db *pgxpool.Pool, logger *zap.Logger) *GroupRepository {
	return &GroupRepository{db: db, logger: logger}
}

func (r *GroupRepository) Create(ctx context.Context, g *model.Group) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO groups (name, expanded) VALUES ($1, $2) RETURNING id, created_at`,
		g.Name, g.Expanded,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create group", zap.Error(err))
		return err
	}
	r.logger.Info("Group created", zap.Int("group_id", g.ID))
	return nil
}

// Update sets name and/or expanded; nil arguments keep the stored value.
func (r *GroupRepository) Update(ctx context.Context, id int, name *string, expanded *bool) (*model.Group, error) {
	var g model.Group
	err := r.db.QueryRow(ctx, `
        UPDATE groups
        SET name = COALESCE($2, name), expanded = COALESCE($3, expanded)
        WHERE id = $1
        RETURNING id, name, expanded, created_at
    `, id, name, expanded).Scan(&g.ID, &g.Name, &g.Expanded, &g.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// Delete removes the group; its projects become ungrouped.
func (r *GroupRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete group", zap.Int("group_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
