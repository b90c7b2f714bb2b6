package tree

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"digihub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	mu    sync.Mutex
	h     *model.Hierarchy
	err   error
	calls int
}

func (l *staticLoader) LoadHierarchy(context.Context) (*model.Hierarchy, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.h, l.err
}

type moveCall struct{ node, parent Ref }

type recordingMutator struct {
	moves   []moveCall
	creates []string
	renames []string
	deletes []Ref
	err     error
	block   bool
}

func (m *recordingMutator) Create(ctx context.Context, kind Kind, parent *Ref, name string) error {
	m.creates = append(m.creates, kind.String()+":"+name)
	return m.err
}

func (m *recordingMutator) Rename(ctx context.Context, node Ref, name string) error {
	m.renames = append(m.renames, name)
	return m.err
}

func (m *recordingMutator) Delete(ctx context.Context, node Ref) error {
	m.deletes = append(m.deletes, node)
	return m.err
}

func (m *recordingMutator) Move(ctx context.Context, node, parent Ref) error {
	m.moves = append(m.moves, moveCall{node, parent})
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

type toastLog struct {
	mu     sync.Mutex
	levels []ToastLevel
	msgs   []string
}

func (n *toastLog) Toast(level ToastLevel, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.levels = append(n.levels, level)
	n.msgs = append(n.msgs, msg)
}

func (n *toastLog) errors() int {
	count := 0
	for _, l := range n.levels {
		if l == ToastError {
			count++
		}
	}
	return count
}

func newTestEditor(t *testing.T, opts ...Option) (*Editor, *staticLoader, *recordingMutator, *toastLog) {
	t.Helper()
	loader := &staticLoader{h: sample()}
	mut := &recordingMutator{}
	toasts := &toastLog{}
	e := NewEditor(loader, mut, toasts, opts...)
	require.NoError(t, e.Reload(context.Background()))
	return e, loader, mut, toasts
}

func TestEditor_DropOnSelfOrDescendantIsNoop(t *testing.T) {
	e, loader, mut, toasts := newTestEditor(t)

	e.DragStart("project-10")
	e.DragOver("project-10")
	require.NoError(t, e.Drop(context.Background(), "project-10"))

	e.DragStart("project-10")
	require.NoError(t, e.Drop(context.Background(), "module-100"))

	assert.Empty(t, mut.moves)
	assert.Equal(t, 1, loader.calls)
	assert.Zero(t, toasts.errors())
}

func TestEditor_KindMismatchRejected(t *testing.T) {
	e, loader, mut, toasts := newTestEditor(t)

	err := e.Move(context.Background(), "task-1000", "project-11")
	assert.ErrorIs(t, err, ErrInvalidMove)
	assert.Empty(t, mut.moves)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, 1, toasts.errors())
}

func TestEditor_MoveReloadsOnSuccess(t *testing.T) {
	e, loader, mut, _ := newTestEditor(t)

	e.DragStart("task-1000")
	e.DragOver("module-101")
	rows := e.Rows()
	for _, r := range rows {
		assert.Equal(t, r.ID == "module-101", r.DropTarget)
	}

	require.NoError(t, e.Drop(context.Background(), "module-101"))
	require.Len(t, mut.moves, 1)
	assert.Equal(t, moveCall{Ref{KindTask, 1000}, Ref{KindModule, 101}}, mut.moves[0])
	assert.Equal(t, 2, loader.calls)
	_, dragging := e.view.Dragging()
	assert.False(t, dragging)
}

func TestEditor_FailureLeavesTreeUntouched(t *testing.T) {
	e, loader, mut, toasts := newTestEditor(t)
	before := e.Tree()
	mut.err = errors.New("503 service unavailable")

	err := e.Move(context.Background(), "task-1000", "module-101")
	require.Error(t, err)
	assert.Same(t, before, e.Tree())
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, 1, toasts.errors())

	require.Error(t, e.Rename(context.Background(), "task-1000", "New"))
	require.Error(t, e.Delete(context.Background(), "task-1000"))
	assert.Same(t, before, e.Tree())
	assert.Equal(t, 3, toasts.errors())
}

func TestEditor_MoveTimesOut(t *testing.T) {
	e, loader, mut, toasts := newTestEditor(t, WithTimeout(20*time.Millisecond))
	mut.block = true

	err := e.Move(context.Background(), "task-1000", "module-101")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, 1, toasts.errors())
}

func TestEditor_CreateValidatesParent(t *testing.T) {
	e, loader, mut, _ := newTestEditor(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.Create(ctx, KindTask, "", "Orphan"), ErrInvalidMove)
	assert.ErrorIs(t, e.Create(ctx, KindTask, "project-10", "Wrong"), ErrInvalidMove)
	assert.ErrorIs(t, e.Create(ctx, KindModule, "project-10", "  "), ErrEmptyName)
	assert.Empty(t, mut.creates)

	require.NoError(t, e.Create(ctx, KindTask, "module-100", "Refresh"))
	require.NoError(t, e.Create(ctx, KindProject, "", "Loose"))
	assert.Equal(t, []string{"task:Refresh", "project:Loose"}, mut.creates)
	assert.Equal(t, 3, loader.calls)
}

func TestEditor_ToggleRendersSubtree(t *testing.T) {
	e, _, _, _ := newTestEditor(t)

	sub := e.Toggle("project-10")
	require.Len(t, sub, 2)
	assert.Equal(t, NodeID("project-10"), sub[0].ID)
	assert.Equal(t, 1, sub[0].Level)
	assert.Equal(t, NodeID("module-100"), sub[1].ID)
	assert.Equal(t, 2*IndentWidth, sub[1].Indent)

	assert.Nil(t, e.Toggle("task-404"))
}

func TestEditor_SelectionSurvivesReload(t *testing.T) {
	e, loader, _, _ := newTestEditor(t)
	require.NoError(t, e.Select("task-1000"))
	require.NoError(t, e.Reload(context.Background()))
	sel, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, NodeID("task-1000"), sel)

	loader.h = &model.Hierarchy{Groups: []model.HierarchyGroup{{ID: 1, Name: "Platform"}}}
	require.NoError(t, e.Reload(context.Background()))
	_, ok = e.Selected()
	assert.False(t, ok)
	assert.ErrorIs(t, e.Select("task-1000"), ErrNodeNotFound)
}

// gatedLoader blocks each call until the test releases it.
type gatedLoader struct {
	started chan struct{}
	release []chan *model.Hierarchy
	mu      sync.Mutex
	n       int
}

func (g *gatedLoader) LoadHierarchy(ctx context.Context) (*model.Hierarchy, error) {
	g.mu.Lock()
	ch := g.release[g.n]
	g.n++
	g.mu.Unlock()
	g.started <- struct{}{}
	return <-ch, nil
}

func TestEditor_StaleReloadDiscarded(t *testing.T) {
	oldH := &model.Hierarchy{Groups: []model.HierarchyGroup{{ID: 1, Name: "old"}}}
	newH := &model.Hierarchy{Groups: []model.HierarchyGroup{{ID: 1, Name: "new"}}}
	loader := &gatedLoader{
		started: make(chan struct{}, 2),
		release: []chan *model.Hierarchy{make(chan *model.Hierarchy, 1), make(chan *model.Hierarchy, 1)},
	}
	e := NewEditor(loader, &recordingMutator{}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.Reload(context.Background())
	}()
	<-loader.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.Reload(context.Background())
	}()
	<-loader.started

	// The newer reload lands first; the older one must not overwrite it.
	loader.release[1] <- newH
	require.Eventually(t, func() bool {
		n, ok := e.Tree().Node("group-1")
		return ok && n.Name == "new"
	}, time.Second, 5*time.Millisecond)
	loader.release[0] <- oldH
	wg.Wait()

	n, ok := e.Tree().Node("group-1")
	require.True(t, ok)
	assert.Equal(t, "new", n.Name)
}
