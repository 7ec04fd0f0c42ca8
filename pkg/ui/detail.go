package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"github.com/vanderheijden86/mindview/pkg/model"
)

var tableEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ")

// NodeMarkdown describes n as Markdown: its name, the path that leads to it
// and its attributes as a table.
func NodeMarkdown(n *model.Node, path []string) string {
	var b strings.Builder
	name := strings.Join(strings.Fields(n.Name), " ")
	if name == "" {
		name = untitled
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	if len(path) > 1 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(path, " › "))
	}
	fmt.Fprintf(&b, "- **ID:** `%s`\n", n.ID)
	fmt.Fprintf(&b, "- **Children:** %s\n", humanize.Comma(int64(len(n.Children))))
	fmt.Fprintf(&b, "- **Subtree:** %s nodes\n\n", humanize.Comma(int64(n.Count())))

	if len(n.Attributes) == 0 {
		b.WriteString("_No attributes._\n")
		return b.String()
	}
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("| Attribute | Value |\n| --- | --- |\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "| %s | %s |\n", tableEscaper.Replace(k), tableEscaper.Replace(n.Attributes[k]))
	}
	return b.String()
}

// PathTo returns the names from root down to the node with id, or nil.
func PathTo(root *model.Node, id string) []string {
	var path []string
	var visit func(n *model.Node) bool
	visit = func(n *model.Node) bool {
		path = append(path, n.Name)
		if n.ID == id {
			return true
		}
		for _, c := range n.Children {
			if visit(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if root == nil || !visit(root) {
		return nil
	}
	return path
}

// renderMarkdown runs md through glamour, falling back to the raw text.
func renderMarkdown(md string, width int) string {
	width = max(width-4, 20)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
