package tree

import "digihub/internal/model"

// Node is one entry of the arena. Parent and Children hold ids, never pointers.
type Node struct {
	ID       NodeID
	Ref      Ref
	Name     string
	Status   string
	Count    *int
	Expanded bool
	Parent   NodeID
	Children []NodeID
}

// Tree is an immutable arena rebuilt from scratch on every load.
type Tree struct {
	nodes map[NodeID]*Node
	roots []NodeID
}

// Build converts the flat hierarchy into the arena. Rows whose parent is
// missing from the payload are dropped, except projects, which become roots.
func Build(h *model.Hierarchy) *Tree {
	t := &Tree{nodes: make(map[NodeID]*Node)}
	if h == nil {
		return t
	}

	for _, g := range h.Groups {
		t.add(&Node{Ref: Ref{KindGroup, g.ID}, Name: g.Name, Expanded: g.Expanded}, "")
	}
	for _, p := range h.Projects {
		parent := NodeID("")
		if p.GroupID != nil {
			if gid := MakeID(KindGroup, *p.GroupID); t.has(gid) {
				parent = gid
			}
		}
		count := p.ModuleCount
		t.add(&Node{Ref: Ref{KindProject, p.ID}, Name: p.Name, Status: p.Status, Count: &count}, parent)
	}
	for _, m := range h.Modules {
		parent := MakeID(KindProject, m.ProjectID)
		if !t.has(parent) {
			continue
		}
		count := m.TaskCount
		t.add(&Node{Ref: Ref{KindModule, m.ID}, Name: m.Name, Status: m.Status, Count: &count}, parent)
	}
	for _, tk := range h.Tasks {
		parent := MakeID(KindModule, tk.ModuleID)
		if !t.has(parent) {
			continue
		}
		t.add(&Node{Ref: Ref{KindTask, tk.ID}, Name: tk.Name, Status: tk.Status}, parent)
	}
	return t
}

func (t *Tree) add(n *Node, parent NodeID) {
	n.ID = n.Ref.NodeID()
	n.Parent = parent
	t.nodes[n.ID] = n
	if parent == "" {
		t.roots = append(t.roots, n.ID)
		return
	}
	p := t.nodes[parent]
	p.Children = append(p.Children, n.ID)
}

func (t *Tree) has(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

func (t *Tree) Node(id NodeID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

func (t *Tree) Roots() []NodeID { return t.roots }

func (t *Tree) Len() int { return len(t.nodes) }

// IsDescendant reports whether id lies in the subtree below ancestor.
// The walk is bounded by the arena size, so a corrupt arena cannot loop.
func (t *Tree) IsDescendant(ancestor, id NodeID) bool {
	root, ok := t.nodes[ancestor]
	if !ok {
		return false
	}
	seen := make(map[NodeID]bool, len(t.nodes))
	stack := append([]NodeID(nil), root.Children...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == id {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if n, ok := t.nodes[cur]; ok {
			stack = append(stack, n.Children...)
		}
	}
	return false
}
