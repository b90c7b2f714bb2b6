package tree

// IndentWidth is the number of columns each level is indented by.
const IndentWidth = 2

// Row is one rendered header line.
type Row struct {
	ID          NodeID
	Kind        Kind
	Name        string
	Status      string
	Count       *int
	Level       int
	Indent      int
	HasChildren bool
	Expanded    bool
	Selected    bool
	DropTarget  bool
}

// Render walks the tree depth first. Children are emitted only below an
// expanded node.
func Render(t *Tree, v *ViewState) []Row {
	var rows []Row
	for _, id := range t.roots {
		rows = renderNode(t, v, id, 0, rows)
	}
	return rows
}

// RenderSubtree renders id and its visible descendants starting at level.
func RenderSubtree(t *Tree, v *ViewState, id NodeID, level int) []Row {
	return renderNode(t, v, id, level, nil)
}

func renderNode(t *Tree, v *ViewState, id NodeID, level int, rows []Row) []Row {
	n, ok := t.nodes[id]
	if !ok {
		return rows
	}
	expanded := v.IsExpanded(id)
	rows = append(rows, Row{
		ID:          id,
		Kind:        n.Ref.Kind,
		Name:        n.Name,
		Status:      n.Status,
		Count:       n.Count,
		Level:       level,
		Indent:      level * IndentWidth,
		HasChildren: len(n.Children) > 0,
		Expanded:    expanded,
		Selected:    v.IsSelected(id),
		DropTarget:  v.over == id,
	})
	if !expanded {
		return rows
	}
	for _, child := range n.Children {
		rows = renderNode(t, v, child, level+1, rows)
	}
	return rows
}
