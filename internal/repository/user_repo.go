package repository

import (
	"context"
	"errors"

	"digihub/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// CreateUser inserts u and fills its ID, role and creation time.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (email, password_hash, display_name, role)
        VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'member'))
        RETURNING id, role, created_at
    `
	err := r.db.QueryRow(ctx, query, u.Email, u.PasswordHash, u.DisplayName, u.Role).
		Scan(&u.ID, &u.Role, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		r.logger.Error("Failed to create user", zap.String("email", u.Email), zap.Error(err))
		return err
	}
	r.logger.Info("User created", zap.Int("user_id", u.ID))
	return nil
}

// FindByEmail returns the user with email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

// FindByID returns the user with id.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `
        SELECT id, email, password_hash, display_name, avatar_url, role, created_at
        FROM users ` + where
	var u model.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.AvatarURL, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
