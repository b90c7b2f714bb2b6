package tree

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrNodeNotFound = errors.New("node not found")
)

// ValidateDrop checks dropping dragged onto target. It returns false with a
// nil error for drops that are silently ignored: onto itself, into its own
// subtree, or onto its current parent. A kind pairing that is not allowed
// yields ErrInvalidMove.
func ValidateDrop(t *Tree, dragged, target NodeID) (bool, error) {
	src, ok := t.nodes[dragged]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNodeNotFound, dragged)
	}
	dst, ok := t.nodes[target]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
	}
	if dragged == target || t.IsDescendant(dragged, target) {
		return false, nil
	}

	parentKind, hasParent := src.Ref.Kind.Parent()
	if !hasParent || dst.Ref.Kind != parentKind {
		return false, fmt.Errorf("%w: a %s cannot be dropped onto a %s", ErrInvalidMove, src.Ref.Kind, dst.Ref.Kind)
	}
	if src.Parent == target {
		return false, nil
	}
	return true, nil
}
