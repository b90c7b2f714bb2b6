package formatter

import (
	"fmt"
	"strings"

	"digihub/internal/tree"
)

const (
	markerExpanded  = "▾ "
	markerCollapsed = "▸ "
	markerLeaf      = "  "
)

// RenderTree prints rendered tree rows, one per line, indented by Row.Indent.
func RenderTree(rows []tree.Row) string {
	if len(rows) == 0 {
		return StyleDim.Render("(empty)") + "\n"
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Repeat(" ", r.Indent))
		switch {
		case !r.HasChildren:
			b.WriteString(markerLeaf)
		case r.Expanded:
			b.WriteString(markerExpanded)
		default:
			b.WriteString(markerCollapsed)
		}

		name := r.Name
		switch {
		case r.Selected:
			name = StyleSelected.Render(name)
		case r.Kind == tree.KindGroup:
			name = StyleHeader.Render(name)
		case r.DropTarget:
			name = StylePurple.Render(name)
		}
		b.WriteString(name)
		b.WriteString(" " + StyleDim.Render(string(r.ID)))

		if r.Status != "" {
			b.WriteString(" " + StatusStyle(r.Status).Render("["+r.Status+"]"))
		}
		if r.Count != nil {
			b.WriteString(" " + StyleBlue.Render(fmt.Sprintf("(%d)", *r.Count)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
