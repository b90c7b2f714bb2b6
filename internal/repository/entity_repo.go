package repository

import (
	"context"
	"fmt"

	"digihub/internal/model"
	"digihub/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// EntityTx is the set of writes an entity mutation performs inside one transaction.
type EntityTx interface {
	SetActingUser(ctx context.Context, userID int) error
	Lock(ctx context.Context, kind model.EntityKind, id int) (*model.Entity, error)
	ParentExists(ctx context.Context, kind model.EntityKind, parentID int) (bool, error)
	Insert(ctx context.Context, e *model.Entity) error
	Update(ctx context.Context, e *model.Entity) error
	Delete(ctx context.Context, kind model.EntityKind, id int) error
	// InsertLog stamps the row with the acting user set on the transaction.
	InsertLog(ctx context.Context, l *model.ActivityLog) error
}

type EntityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEntityRepository(db *pgxpool.Pool, logger *zap.Logger) *EntityRepository {
	return &EntityRepository{db: db, logger: logger}
}

// Get loads one entity without locking.
func (r *EntityRepository) Get(ctx context.Context, kind model.EntityKind, id int) (*model.Entity, error) {
	return getEntity(ctx, r.db, kind, id, "")
}

// WithinTx runs fn against a transaction-scoped EntityTx.
func (r *EntityRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx EntityTx) error) error {
	return db.WithinTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &entityTx{tx: tx, logger: r.logger})
	})
}

type entityTx struct {
	tx     pgx.Tx
	logger *zap.Logger
}

func (t *entityTx) SetActingUser(ctx context.Context, userID int) error {
	return db.SetActingUser(ctx, t.tx, userID)
}

func (t *entityTx) Lock(ctx context.Context, kind model.EntityKind, id int) (*model.Entity, error) {
	return getEntity(ctx, t.tx, kind, id, "FOR UPDATE")
}

func (t *entityTx) ParentExists(ctx context.Context, kind model.EntityKind, parentID int) (bool, error) {
	table := "groups"
	if pk, ok := kind.ParentKind(); ok {
		table = pk.Table()
	}
	var exists bool
	err := t.tx.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table), parentID).Scan(&exists)
	return exists, err
}

func (t *entityTx) Insert(ctx context.Context, e *model.Entity) error {
	t.logger.Debug("Inserting entity",
		zap.String("entity_type", string(e.Kind)),
		zap.String("name", e.Name),
	)
	query := fmt.Sprintf(`
        INSERT INTO %s (%s, name, description, status, priority, progress, start_date, due_date, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, %s)
        RETURNING id, created_by, created_at, updated_at
    `, e.Kind.Table(), e.Kind.ParentColumn(), db.ActingUserExpr)

	err := t.tx.QueryRow(ctx, query,
		e.ParentID,
		e.Name,
		e.Description,
		e.Status,
		e.Priority,
		e.Progress,
		e.StartDate,
		e.DueDate,
	).Scan(&e.ID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		t.logger.Error("Failed to insert entity",
			zap.String("entity_type", string(e.Kind)),
			zap.Error(err),
		)
		return err
	}
	t.logger.Info("Entity inserted",
		zap.String("entity_type", string(e.Kind)),
		zap.Int("entity_id", e.ID),
	)
	return nil
}

func (t *entityTx) Update(ctx context.Context, e *model.Entity) error {
	query := fmt.Sprintf(`
        UPDATE %s
        SET %s = $2, name = $3, description = $4, status = $5, priority = $6,
            progress = $7, start_date = $8, due_date = $9, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `, e.Kind.Table(), e.Kind.ParentColumn())

	err := t.tx.QueryRow(ctx, query,
		e.ID,
		e.ParentID,
		e.Name,
		e.Description,
		e.Status,
		e.Priority,
		e.Progress,
		e.StartDate,
		e.DueDate,
	).Scan(&e.UpdatedAt)
	if err != nil {
		t.logger.Error("Failed to update entity",
			zap.String("entity_type", string(e.Kind)),
			zap.Int("entity_id", e.ID),
			zap.Error(err),
		)
		return notFound(err)
	}
	return nil
}

func (t *entityTx) Delete(ctx context.Context, kind model.EntityKind, id int) error {
	tag, err := t.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.Table()), id)
	if err != nil {
		t.logger.Error("Failed to delete entity",
			zap.String("entity_type", string(kind)),
			zap.Int("entity_id", id),
			zap.Error(err),
		)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	t.logger.Info("Entity deleted",
		zap.String("entity_type", string(kind)),
		zap.Int("entity_id", id),
	)
	return nil
}

func (t *entityTx) InsertLog(ctx context.Context, l *model.ActivityLog) error {
	if l.Details == nil {
		l.Details = model.Details{}
	}
	query := fmt.Sprintf(`
        INSERT INTO activity_logs (action, entity_type, %s, entity_name, details, user_id)
        VALUES ($1, $2, $3, $4, $5, %s)
        RETURNING id, user_id, created_at
    `, l.EntityKind.Column(), db.ActingUserExpr)

	err := t.tx.QueryRow(ctx, query,
		l.Action,
		l.EntityKind,
		l.EntityID,
		l.EntityName,
		l.Details,
	).Scan(&l.ID, &l.UserID, &l.CreatedAt)
	if err != nil {
		t.logger.Error("Failed to insert activity log",
			zap.String("entity_type", string(l.EntityKind)),
			zap.Int("entity_id", l.EntityID),
			zap.String("action", string(l.Action)),
			zap.Error(err),
		)
		return err
	}
	t.logger.Debug("Activity log written",
		zap.Int("log_id", l.ID),
		zap.String("action", string(l.Action)),
	)
	return nil
}

func getEntity(ctx context.Context, q db.DBTX, kind model.EntityKind, id int, lock string) (*model.Entity, error) {
	query := fmt.Sprintf(`
        SELECT id, %s, name, description, status, priority, progress,
               start_date, due_date, created_by, created_at, updated_at
        FROM %s
        WHERE id = $1 %s
    `, kind.ParentColumn(), kind.Table(), lock)

	e := model.Entity{Kind: kind}
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.ParentID,
		&e.Name,
		&e.Description,
		&e.Status,
		&e.Priority,
		&e.Progress,
		&e.StartDate,
		&e.DueDate,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}
