package activity

import (
	"errors"

	"digihub/internal/model"
)

var (
	ErrInvalidEntityKind = model.ErrInvalidEntityKind
	ErrParentNotFound    = errors.New("parent comment not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("comment not found")
	ErrEmptyContent      = errors.New("content is required")
	ErrInvalidEntityID   = errors.New("entity id is required")
)
