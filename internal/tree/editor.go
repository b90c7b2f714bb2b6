package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"digihub/internal/model"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every remote call made by the editor.
const DefaultTimeout = 30 * time.Second

var ErrEmptyName = errors.New("name must not be empty")

// Loader fetches the canonical hierarchy.
type Loader interface {
	LoadHierarchy(ctx context.Context) (*model.Hierarchy, error)
}

// Mutator performs remote mutations. Parent is nil for a top-level node.
type Mutator interface {
	Create(ctx context.Context, kind Kind, parent *Ref, name string) error
	Rename(ctx context.Context, node Ref, name string) error
	Delete(ctx context.Context, node Ref) error
	Move(ctx context.Context, node, newParent Ref) error
}

type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastError
)

// Notifier surfaces transient messages to the user.
type Notifier interface {
	Toast(level ToastLevel, message string)
}

type Option func(*Editor)

func WithTimeout(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Editor owns one tree instance and its view state. Mutations never touch
// local state: on success the tree is reloaded, on failure a toast is shown
// and the tree is left as it was.
type Editor struct {
	loader   Loader
	mutator  Mutator
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	tree    *Tree
	view    *ViewState
	gen     uint64
	applied uint64
}

func NewEditor(loader Loader, mutator Mutator, notifier Notifier, opts ...Option) *Editor {
	e := &Editor{
		loader:   loader,
		mutator:  mutator,
		notifier: notifier,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
		tree:     Build(nil),
		view:     NewViewState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reload fetches the hierarchy and swaps in a rebuilt tree. A reload that
// started before the currently applied one is discarded.
func (e *Editor) Reload(ctx context.Context) error {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	h, err := e.loader.LoadHierarchy(ctx)
	if err != nil {
		return e.fail("load tree", err)
	}
	t := Build(h)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen < e.applied {
		e.logger.Debug("Discarding stale reload", zap.Uint64("generation", gen), zap.Uint64("applied", e.applied))
		return nil
	}
	e.applied = gen
	e.tree = t
	e.view.sync(t)
	return nil
}

// Rows renders the current tree.
func (e *Editor) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Render(e.tree, e.view)
}

// Tree returns the current arena.
func (e *Editor) Tree() *Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// Toggle flips id and returns the re-rendered subtree rooted at it.
func (e *Editor) Toggle(id NodeID) []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.tree.Node(id)
	if !ok {
		return nil
	}
	e.view.Toggle(id)
	return RenderSubtree(e.tree, e.view, id, e.level(n))
}

func (e *Editor) level(n *Node) int {
	level := 0
	for p := n.Parent; p != "" && level <= e.tree.Len(); level++ {
		pn, ok := e.tree.Node(p)
		if !ok {
			break
		}
		p = pn.Parent
	}
	return level
}

func (e *Editor) ExpandAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ExpandAll(e.tree)
}

// Select makes id the single selected node.
func (e *Editor) Select(id NodeID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tree.Node(id); !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	e.view.Select(id)
	return nil
}

func (e *Editor) Selected() (NodeID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.Selected()
}

func (e *Editor) DragStart(id NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tree.Node(id); ok {
		e.view.DragStart(id)
	}
}

func (e *Editor) DragOver(id NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.DragOver(id)
}

// Drop ends the current drag by moving the dragged node onto target.
func (e *Editor) Drop(ctx context.Context, target NodeID) error {
	e.mu.Lock()
	dragged, ok := e.view.Dragging()
	e.view.DragEnd()
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return e.Move(ctx, dragged, target)
}

// Move reparents dragged under target. Self and descendant drops are no-ops;
// kind mismatches are reported as ErrInvalidMove without calling the Mutator.
func (e *Editor) Move(ctx context.Context, dragged, target NodeID) error {
	e.mu.Lock()
	t := e.tree
	e.mu.Unlock()

	ok, err := ValidateDrop(t, dragged, target)
	if err != nil {
		e.toast(ToastError, err.Error())
		return err
	}
	if !ok {
		return nil
	}
	src, _ := t.Node(dragged)
	dst, _ := t.Node(target)

	if err := e.call(ctx, func(ctx context.Context) error {
		return e.mutator.Move(ctx, src.Ref, dst.Ref)
	}); err != nil {
		return e.fail(fmt.Sprintf("move %s", src.Name), err)
	}
	e.toast(ToastInfo, fmt.Sprintf("Moved %s to %s", src.Name, dst.Name))
	return e.Reload(ctx)
}

// Create adds a node of kind under parent ("" for top level).
func (e *Editor) Create(ctx context.Context, kind Kind, parent NodeID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		e.toast(ToastError, ErrEmptyName.Error())
		return ErrEmptyName
	}
	if !kind.valid() {
		return ErrUnknownKind
	}

	var parentRef *Ref
	if parent != "" {
		e.mu.Lock()
		pn, ok := e.tree.Node(parent)
		e.mu.Unlock()
		if !ok {
			err := fmt.Errorf("%w: %s", ErrNodeNotFound, parent)
			e.toast(ToastError, err.Error())
			return err
		}
		want, has := kind.Parent()
		if !has || pn.Ref.Kind != want {
			err := fmt.Errorf("%w: a %s cannot be created under a %s", ErrInvalidMove, kind, pn.Ref.Kind)
			e.toast(ToastError, err.Error())
			return err
		}
		ref := pn.Ref
		parentRef = &ref
	} else if kind.ParentRequired() {
		err := fmt.Errorf("%w: a %s needs a parent", ErrInvalidMove, kind)
		e.toast(ToastError, err.Error())
		return err
	}

	if err := e.call(ctx, func(ctx context.Context) error {
		return e.mutator.Create(ctx, kind, parentRef, name)
	}); err != nil {
		return e.fail(fmt.Sprintf("create %s", kind), err)
	}
	e.toast(ToastInfo, fmt.Sprintf("Created %s %s", kind, name))
	return e.Reload(ctx)
}

func (e *Editor) Rename(ctx context.Context, id NodeID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		e.toast(ToastError, ErrEmptyName.Error())
		return ErrEmptyName
	}
	n, err := e.lookup(id)
	if err != nil {
		return err
	}
	if err := e.call(ctx, func(ctx context.Context) error {
		return e.mutator.Rename(ctx, n.Ref, name)
	}); err != nil {
		return e.fail(fmt.Sprintf("rename %s", n.Name), err)
	}
	e.toast(ToastInfo, fmt.Sprintf("Renamed to %s", name))
	return e.Reload(ctx)
}

func (e *Editor) Delete(ctx context.Context, id NodeID) error {
	n, err := e.lookup(id)
	if err != nil {
		return err
	}
	if err := e.call(ctx, func(ctx context.Context) error {
		return e.mutator.Delete(ctx, n.Ref)
	}); err != nil {
		return e.fail(fmt.Sprintf("delete %s", n.Name), err)
	}
	e.toast(ToastInfo, fmt.Sprintf("Deleted %s", n.Name))
	return e.Reload(ctx)
}

func (e *Editor) lookup(id NodeID) (*Node, error) {
	e.mu.Lock()
	n, ok := e.tree.Node(id)
	e.mu.Unlock()
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		e.toast(ToastError, err.Error())
		return nil, err
	}
	return n, nil
}

func (e *Editor) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return fn(ctx)
}

func (e *Editor) fail(op string, err error) error {
	e.logger.Warn("Tree operation failed", zap.String("op", op), zap.Error(err))
	e.toast(ToastError, fmt.Sprintf("Failed to %s: %v", op, err))
	return err
}

func (e *Editor) toast(level ToastLevel, msg string) {
	if e.notifier != nil {
		e.notifier.Toast(level, msg)
	}
}
