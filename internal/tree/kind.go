// Package tree is the hierarchical tree editor: an arena of typed nodes built
// from the flat hierarchy payload, explicit view state, depth-first rendering
// and drag/drop reparenting that delegates every mutation to a Mutator.
package tree

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Kind is the closed set of node kinds shown in the tree.
type Kind int

const (
	KindGroup Kind = iota
	KindProject
	KindModule
	KindTask
)

var (
	ErrUnknownKind = errors.New("unknown node kind")
	ErrBadNodeID   = errors.New("malformed node id")
)

// Kinds lists every kind, top level first.
var Kinds = []Kind{KindGroup, KindProject, KindModule, KindTask}

// Endpoint is how a kind maps onto the REST API. The move shapes differ per
// kind and must stay as they are.
type Endpoint struct {
	Collection string
	// ParentField carries the parent id on create. Empty for top-level kinds.
	ParentField string
	// MoveMethod is empty for kinds that cannot be moved.
	MoveMethod string
	MoveSuffix string
	MoveField  string
}

// Item is the path of one node of this kind.
func (e Endpoint) Item(id int) string {
	return e.Collection + "/" + strconv.Itoa(id)
}

type kindSpec struct {
	name           string
	parent         Kind
	hasParent      bool
	parentRequired bool
	endpoint       Endpoint
}

// spec is the only place kinds are switched on; adding a kind means adding a case here.
func (k Kind) spec() kindSpec {
	switch k {
	case KindGroup:
		return kindSpec{
			name:     "group",
			endpoint: Endpoint{Collection: "/groups"},
		}
	case KindProject:
		return kindSpec{
			name: "project", parent: KindGroup, hasParent: true,
			endpoint: Endpoint{Collection: "/projects", ParentField: "group_id",
				MoveMethod: http.MethodPut, MoveField: "group_id"},
		}
	case KindModule:
		return kindSpec{
			name: "module", parent: KindProject, hasParent: true, parentRequired: true,
			endpoint: Endpoint{Collection: "/modules", ParentField: "project_id",
				MoveMethod: http.MethodPatch, MoveSuffix: "/move", MoveField: "project_id"},
		}
	case KindTask:
		return kindSpec{
			name: "task", parent: KindModule, hasParent: true, parentRequired: true,
			endpoint: Endpoint{Collection: "/tasks", ParentField: "module_id",
				MoveMethod: http.MethodPut, MoveField: "moduleId"},
		}
	}
	panic(fmt.Sprintf("tree: unhandled kind %d", int(k)))
}

// Endpoint returns the REST mapping of kind k.
func (k Kind) Endpoint() Endpoint { return k.spec().endpoint }

func (k Kind) String() string { return k.spec().name }

// Parent returns the only kind a node of kind k may hang under.
func (k Kind) Parent() (Kind, bool) {
	s := k.spec()
	return s.parent, s.hasParent
}

// ParentRequired reports whether a node of kind k must have a parent.
func (k Kind) ParentRequired() bool { return k.spec().parentRequired }

func (k Kind) valid() bool { return k >= KindGroup && k <= KindTask }

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// NodeID is a stable, kind-prefixed node key such as "project-42".
type NodeID string

func MakeID(k Kind, id int) NodeID {
	return NodeID(k.String() + "-" + strconv.Itoa(id))
}

// Ref is the server-side identity of a node.
type Ref struct {
	Kind Kind
	ID   int
}

func (r Ref) NodeID() NodeID { return MakeID(r.Kind, r.ID) }

// ParseID splits "project-42" into its kind and numeric id.
func ParseID(id NodeID) (Ref, error) {
	prefix, num, ok := strings.Cut(string(id), "-")
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q", ErrBadNodeID, id)
	}
	k, err := ParseKind(prefix)
	if err != nil {
		return Ref{}, err
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrBadNodeID, id)
	}
	return Ref{Kind: k, ID: n}, nil
}
