package layout

import (
	"github.com/vanderheijden86/mindview/pkg/metrics"
	"github.com/vanderheijden86/mindview/pkg/model"
)

// Tree lays root out as a horizontal tidy tree.
//
// Depth runs along X at LevelSpacing per level. Each leaf takes one
// SiblingSpacing slot along Y in source order, and every parent sits midway
// between its first and last child. The root is at the origin. Spacing does
// not depend on label length, so long wrapped labels may overlap.
func Tree(root *model.Node, m Measurer, opts Options) *Result {
	if root == nil {
		return nil
	}
	defer metrics.Timer(metrics.TreeLayout)()

	opts = opts.Normalized()
	r := newResult(root, opts)
	r.measure(m, false)

	slots := make(map[*model.Node]int, len(r.byNode))
	var size func(n *model.Node) int
	size = func(n *model.Node) int {
		total := 0
		for _, c := range n.Children {
			total += size(c)
		}
		if total == 0 {
			total = 1
		}
		slots[n] = total
		return total
	}
	size(root)

	var place func(n *model.Node, depth, start int)
	place = func(n *model.Node, depth, start int) {
		ln := r.byNode[n]
		ln.X = float64(depth) * opts.LevelSpacing
		if len(n.Children) == 0 {
			ln.Y = (float64(start) + 0.5) * opts.SiblingSpacing
			return
		}
		cursor := start
		for _, c := range n.Children {
			place(c, depth+1, cursor)
			cursor += slots[c]
		}
		first := r.byNode[n.Children[0]]
		last := r.byNode[n.Children[len(n.Children)-1]]
		ln.Y = (first.Y + last.Y) / 2
	}
	place(root, 0, 0)

	offset := r.byNode[root].Y
	r.Each(func(n *LayoutNode) { n.Y -= offset })
	return r
}
