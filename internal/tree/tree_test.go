package tree

import (
	"net/http"
	"testing"

	"digihub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

// sample: group 1 (expanded) > project 10 > module 100 > tasks 1000, 1001;
// project 11 is ungrouped with module 101; module 999 is an orphan.
func sample() *model.Hierarchy {
	return &model.Hierarchy{
		Groups: []model.HierarchyGroup{{ID: 1, Name: "Platform", Expanded: true}, {ID: 2, Name: "Empty"}},
		Projects: []model.HierarchyProject{
			{ID: 10, GroupID: intp(1), Name: "API", Status: "active", ModuleCount: 1},
			{ID: 11, Name: "Docs", Status: "todo", ModuleCount: 1},
		},
		Modules: []model.HierarchyModule{
			{ID: 100, ProjectID: 10, Name: "Auth", TaskCount: 2},
			{ID: 101, ProjectID: 11, Name: "Guides"},
			{ID: 999, ProjectID: 404, Name: "Orphan"},
		},
		Tasks: []model.HierarchyTask{
			{ID: 1000, ModuleID: 100, Name: "Login"},
			{ID: 1001, ModuleID: 100, Name: "Logout"},
		},
	}
}

func TestKindTable(t *testing.T) {
	p, ok := KindTask.Parent()
	assert.True(t, ok)
	assert.Equal(t, KindModule, p)

	p, ok = KindModule.Parent()
	assert.True(t, ok)
	assert.Equal(t, KindProject, p)

	_, ok = KindGroup.Parent()
	assert.False(t, ok)

	assert.False(t, KindProject.ParentRequired())
	assert.True(t, KindTask.ParentRequired())

	for _, k := range Kinds {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("submodule")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindEndpoints(t *testing.T) {
	assert.Equal(t, Endpoint{Collection: "/groups"}, KindGroup.Endpoint())
	assert.Equal(t, "/projects/3", KindProject.Endpoint().Item(3))

	module := KindModule.Endpoint()
	assert.Equal(t, http.MethodPatch, module.MoveMethod)
	assert.Equal(t, "/move", module.MoveSuffix)
	assert.Equal(t, "project_id", module.MoveField)

	task := KindTask.Endpoint()
	assert.Equal(t, http.MethodPut, task.MoveMethod)
	assert.Equal(t, "moduleId", task.MoveField)
	assert.Equal(t, "module_id", task.ParentField)

	for _, k := range Kinds {
		e := k.Endpoint()
		assert.NotEmpty(t, e.Collection)
		_, hasParent := k.Parent()
		assert.Equal(t, hasParent, e.ParentField != "", k.String())
		assert.Equal(t, hasParent, e.MoveMethod != "", k.String())
	}
}

func TestNodeIDs(t *testing.T) {
	assert.Equal(t, NodeID("project-42"), MakeID(KindProject, 42))

	ref, err := ParseID("task-7")
	require.NoError(t, err)
	assert.Equal(t, Ref{Kind: KindTask, ID: 7}, ref)

	for _, bad := range []NodeID{"task", "task-x", "task-0", "epic-1"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestBuild(t *testing.T) {
	tr := Build(sample())

	assert.Equal(t, []NodeID{"group-1", "group-2", "project-11"}, tr.Roots())
	assert.Equal(t, 8, tr.Len())

	g, ok := tr.Node("group-1")
	require.True(t, ok)
	assert.Equal(t, []NodeID{"project-10"}, g.Children)

	m, ok := tr.Node("module-100")
	require.True(t, ok)
	assert.Equal(t, NodeID("project-10"), m.Parent)
	assert.Equal(t, []NodeID{"task-1000", "task-1001"}, m.Children)
	require.NotNil(t, m.Count)
	assert.Equal(t, 2, *m.Count)

	_, ok = tr.Node("module-999")
	assert.False(t, ok)
}

func TestIsDescendant(t *testing.T) {
	tr := Build(sample())
	assert.True(t, tr.IsDescendant("group-1", "task-1001"))
	assert.True(t, tr.IsDescendant("project-10", "module-100"))
	assert.False(t, tr.IsDescendant("module-100", "project-10"))
	assert.False(t, tr.IsDescendant("project-11", "task-1000"))
	assert.False(t, tr.IsDescendant("task-1000", "task-1000"))
}

func TestRender(t *testing.T) {
	tr := Build(sample())
	v := NewViewState()
	v.sync(tr)

	rows := Render(tr, v)
	ids := []NodeID{}
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	// group-1 is expanded by the source flag; project-10 is not.
	assert.Equal(t, []NodeID{"group-1", "project-10", "group-2", "project-11"}, ids)
	assert.Equal(t, 0, rows[0].Indent)
	assert.Equal(t, 1, rows[1].Level)
	assert.Equal(t, IndentWidth, rows[1].Indent)
	assert.True(t, rows[1].HasChildren)
	assert.False(t, rows[1].Expanded)

	v.Toggle("project-10")
	v.Toggle("module-100")
	v.Select("task-1001")
	rows = Render(tr, v)
	require.Len(t, rows, 7)
	last := rows[4]
	assert.Equal(t, NodeID("task-1001"), last.ID)
	assert.Equal(t, 3*IndentWidth, last.Indent)
	assert.True(t, last.Selected)

	sub := RenderSubtree(tr, v, "module-100", 2)
	require.Len(t, sub, 3)
	assert.Equal(t, 2*IndentWidth, sub[0].Indent)
}

func TestViewState_SingleSelectionAndSync(t *testing.T) {
	tr := Build(sample())
	v := NewViewState()
	v.Select("task-1000")
	v.Select("task-1001")
	sel, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, NodeID("task-1001"), sel)
	assert.False(t, v.IsSelected("task-1000"))

	v.SetExpanded("group-1", false)
	v.SetExpanded("module-555", true)
	v.Select("module-555")
	v.sync(tr)

	assert.False(t, v.IsExpanded("group-1"), "user choice wins over the source flag")
	assert.False(t, v.IsExpanded("module-555"))
	_, ok = v.Selected()
	assert.False(t, ok)
}

func TestValidateDrop(t *testing.T) {
	tr := Build(sample())
	cases := []struct {
		name     string
		dragged  NodeID
		target   NodeID
		wantMove bool
		wantErr  error
	}{
		{"self", "project-10", "project-10", false, nil},
		{"into own subtree", "project-10", "module-100", false, nil},
		{"group into descendant", "group-1", "task-1000", false, nil},
		{"current parent", "task-1000", "module-100", false, nil},
		{"task to other module", "task-1000", "module-101", true, nil},
		{"module to other project", "module-100", "project-11", true, nil},
		{"project to group", "project-11", "group-2", true, nil},
		{"task onto project", "task-1000", "project-11", false, ErrInvalidMove},
		{"group onto group", "group-2", "group-1", false, ErrInvalidMove},
		{"unknown target", "task-1000", "module-7", false, ErrNodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := ValidateDrop(tr, tc.dragged, tc.target)
			assert.Equal(t, tc.wantMove, ok)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
