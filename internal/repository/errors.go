package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrParentNotFound = errors.New("parent comment not found")
	ErrEmailTaken     = errors.New("email already registered")
)

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
