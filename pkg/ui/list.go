package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/vanderheijden86/mindview/pkg/model"
	"github.com/vanderheijden86/mindview/pkg/search"
)

const untitled = "(untitled)"

// Row is one line of the list presenter.
type Row struct {
	Node   *model.Node
	Depth  int
	Prefix string // branch characters, empty for the root
	Match  bool
}

// BuildRows flattens root in pre-order with tree prefixes.
func BuildRows(root *model.Node, query string) []Row {
	if root == nil {
		return nil
	}
	rows := []Row{{Node: root, Match: search.Matches(root.Name, query)}}
	var visit func(n *model.Node, depth int, indent string)
	visit = func(n *model.Node, depth int, indent string) {
		for i, c := range n.Children {
			last := i == len(n.Children)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
			rows = append(rows, Row{
				Node:   c,
				Depth:  depth,
				Prefix: indent + branch,
				Match:  search.Matches(c.Name, query),
			})
			visit(c, depth+1, indent+next)
		}
	}
	visit(root, 1, "")
	return rows
}

// Label returns the display text of the row.
func (r Row) Label() string {
	name := strings.Join(strings.Fields(r.Node.Name), " ")
	if name == "" {
		return untitled
	}
	return name
}

// RenderRows draws rows at most width columns wide. Matches are highlighted,
// non-matching rows dimmed when a query is active, and the row at cursor
// is selected.
func RenderRows(rows []Row, query string, width, cursor int, theme Theme) []string {
	active := search.Normalize(query) != ""
	out := make([]string, len(rows))
	for i, row := range rows {
		avail := width - runewidth.StringWidth(row.Prefix)
		label := row.Label()
		if avail < 1 {
			label = ""
		} else if runewidth.StringWidth(label) > avail {
			label = truncate.StringWithTail(label, uint(avail), "…")
		}

		style := theme.Label
		switch {
		case i == cursor:
			style = theme.Selected
		case row.Match:
			style = theme.MatchText
		case active:
			style = theme.Dim
		}
		out[i] = theme.Prefix.Render(row.Prefix) + style.Render(label)
	}
	return out
}
