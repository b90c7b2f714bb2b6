package entity

import "errors"

var (
	ErrNotFound       = errors.New("entity not found")
	ErrParentNotFound = errors.New("parent not found")
	ErrInvalidParent  = errors.New("invalid parent")
	ErrInvalidInput   = errors.New("invalid input")
)
