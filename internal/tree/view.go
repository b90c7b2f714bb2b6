package tree

// ViewState holds per-session UI state: expanded nodes, the single selection
// and the in-progress drag. It is keyed by NodeID so it survives rebuilds.
type ViewState struct {
	expanded map[NodeID]bool
	touched  map[NodeID]bool
	selected NodeID
	dragged  NodeID
	over     NodeID
}

func NewViewState() *ViewState {
	return &ViewState{
		expanded: make(map[NodeID]bool),
		touched:  make(map[NodeID]bool),
	}
}

// Toggle flips id between collapsed and expanded and returns the new state.
func (v *ViewState) Toggle(id NodeID) bool {
	v.expanded[id] = !v.expanded[id]
	v.touched[id] = true
	return v.expanded[id]
}

func (v *ViewState) SetExpanded(id NodeID, expanded bool) {
	v.expanded[id] = expanded
	v.touched[id] = true
}

func (v *ViewState) IsExpanded(id NodeID) bool { return v.expanded[id] }

// Select makes id the only selected node.
func (v *ViewState) Select(id NodeID) { v.selected = id }

func (v *ViewState) ClearSelection() { v.selected = "" }

func (v *ViewState) Selected() (NodeID, bool) { return v.selected, v.selected != "" }

func (v *ViewState) IsSelected(id NodeID) bool { return v.selected != "" && v.selected == id }

// DragStart remembers the dragged node.
func (v *ViewState) DragStart(id NodeID) {
	v.dragged = id
	v.over = ""
}

// DragOver marks the current drop candidate; it changes nothing else.
func (v *ViewState) DragOver(id NodeID) {
	if v.dragged != "" {
		v.over = id
	}
}

func (v *ViewState) Dragging() (NodeID, bool) { return v.dragged, v.dragged != "" }

func (v *ViewState) DragEnd() {
	v.dragged = ""
	v.over = ""
}

// sync reconciles the state with a freshly built tree: nodes that no longer
// exist are forgotten, and groups the user never toggled take their expanded
// flag from the source data.
func (v *ViewState) sync(t *Tree) {
	for id := range v.expanded {
		if !t.has(id) {
			delete(v.expanded, id)
			delete(v.touched, id)
		}
	}
	for _, id := range t.roots {
		n := t.nodes[id]
		if n.Ref.Kind == KindGroup && !v.touched[id] {
			v.expanded[id] = n.Expanded
		}
	}
	if v.selected != "" && !t.has(v.selected) {
		v.selected = ""
	}
	if v.dragged != "" && !t.has(v.dragged) {
		v.DragEnd()
	}
}

// ExpandAll expands every node that has children.
func (v *ViewState) ExpandAll(t *Tree) {
	for id, n := range t.nodes {
		if len(n.Children) > 0 {
			v.SetExpanded(id, true)
		}
	}
}
