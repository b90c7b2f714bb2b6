package model

import (
	"errors"
	"fmt"
)

// EntityKind is one of the four kinds that activity logs and comments attach to.
type EntityKind string

const (
	KindProject   EntityKind = "project"
	KindModule    EntityKind = "module"
	KindSubmodule EntityKind = "submodule"
	KindTask      EntityKind = "task"
)

var ErrInvalidEntityKind = errors.New("invalid entity type")

// EntityKinds lists every kind in hierarchy order.
var EntityKinds = []EntityKind{KindProject, KindModule, KindSubmodule, KindTask}

// ParseEntityKind validates s.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntityKind, s)
	}
	return k, nil
}

func (k EntityKind) Valid() bool {
	_, ok := k.schema()
	return ok
}

type kindSchema struct {
	table        string
	fkColumn     string
	parentColumn string
	parentKind   EntityKind
}

// schema is the only place kinds map to storage names.
func (k EntityKind) schema() (kindSchema, bool) {
	switch k {
	case KindProject:
		return kindSchema{table: "projects", fkColumn: "project_id", parentColumn: "group_id"}, true
	case KindModule:
		return kindSchema{table: "modules", fkColumn: "module_id", parentColumn: "project_id", parentKind: KindProject}, true
	case KindSubmodule:
		return kindSchema{table: "submodules", fkColumn: "submodule_id", parentColumn: "module_id", parentKind: KindModule}, true
	case KindTask:
		return kindSchema{table: "tasks", fkColumn: "task_id", parentColumn: "module_id", parentKind: KindModule}, true
	}
	return kindSchema{}, false
}

// Table is the table holding entities of this kind.
func (k EntityKind) Table() string {
	s, _ := k.schema()
	return s.table
}

// Column is the foreign key column activity_logs and comments use for this kind.
func (k EntityKind) Column() string {
	s, _ := k.schema()
	return s.fkColumn
}

// ParentColumn is the column on Table referencing the parent row.
func (k EntityKind) ParentColumn() string {
	s, _ := k.schema()
	return s.parentColumn
}

// ParentKind returns the entity kind of the parent. Projects hang off groups,
// which are not an entity kind, so ok is false for them.
func (k EntityKind) ParentKind() (EntityKind, bool) {
	s, _ := k.schema()
	return s.parentKind, s.parentKind != ""
}

// ParentRequired reports whether an entity of this kind must have a parent.
func (k EntityKind) ParentRequired() bool {
	_, ok := k.ParentKind()
	return ok
}
