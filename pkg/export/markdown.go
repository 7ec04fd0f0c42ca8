package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/vanderheijden86/mindview/pkg/model"
	"github.com/vanderheijden86/mindview/pkg/search"
	"github.com/vanderheijden86/mindview/pkg/view"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
	"\n", " ",
	"\r", "",
)

// untitled stands in for an empty label so the list item is not blank.
const untitled = "(untitled)"

// Outline renders root as a nested Markdown list, two spaces per level.
// Labels containing query are bold.
func Outline(root *model.Node, query string) string {
	var sb strings.Builder
	root.Walk(func(n *model.Node, depth int) bool {
		label := strings.TrimSpace(n.Name)
		if label == "" {
			label = untitled
		} else {
			label = markdownEscaper.Replace(label)
		}
		if search.Matches(n.Name, query) {
			label = "**" + label + "**"
		}
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString("- ")
		sb.WriteString(label)
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

// GenerateMarkdown renders a titled outline of a list-mode frame. Frames
// without a tree render their message.
func GenerateMarkdown(f view.Frame, title string) string {
	var sb strings.Builder
	if title == "" && f.Tree != nil {
		title = f.Tree.Name
	}
	if title != "" {
		sb.WriteString(fmt.Sprintf("# %s\n\n", markdownEscaper.Replace(title)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		sb.WriteString(fmt.Sprintf("*Filter:* `%s` (%d of %d nodes)\n\n", strings.ReplaceAll(q, "`", "'"), f.Count, f.Total))
	}
	if f.Tree == nil {
		sb.WriteString(f.Message)
		sb.WriteByte('\n')
		return sb.String()
	}
	sb.WriteString(Outline(f.Tree, f.Query))
	return sb.String()
}

func renderMarkdown(w io.Writer, f view.Frame, opts SnapshotOptions) error {
	_, err := io.WriteString(w, GenerateMarkdown(f, opts.Title))
	return err
}
