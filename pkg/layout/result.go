// Package layout turns a mind-map tree into positioned, measured nodes.
//
// Two algorithms are provided: Tree, a deterministic tidy layout with fixed
// spacing, and Simulation, an iterative force-directed relaxation that is
// stepped by the caller. Both produce a Result.
package layout

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/mindview/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Anchor says which side of the node a label is drawn on.
type Anchor int

const (
	// AnchorStart draws the label to the right of the node.
	AnchorStart Anchor = iota
	// AnchorEnd draws the label to the left of the node.
	AnchorEnd
	// AnchorMiddle centers the label on the node.
	AnchorMiddle
)

func (a Anchor) String() string {
	switch a {
	case AnchorEnd:
		return "end"
	case AnchorMiddle:
		return "middle"
	default:
		return "start"
	}
}

// Options holds the geometry constants shared by both layouts. Lengths are
// in pixels except LineHeight, which is in em.
type Options struct {
	LevelSpacing   float64 `json:"level_spacing" yaml:"level_spacing,omitempty"`
	SiblingSpacing float64 `json:"sibling_spacing" yaml:"sibling_spacing,omitempty"`
	TextMaxWidth   float64 `json:"text_max_width" yaml:"text_max_width,omitempty"`
	FontSize       float64 `json:"font_size" yaml:"font_size,omitempty"`
	LineHeight     float64 `json:"line_height" yaml:"line_height,omitempty"`
	NodeRadius     float64 `json:"node_radius" yaml:"node_radius,omitempty"`
	LabelOffset    float64 `json:"label_offset" yaml:"label_offset,omitempty"`
	Padding        float64 `json:"padding" yaml:"padding,omitempty"`
}

// DefaultOptions returns the standard geometry.
func DefaultOptions() Options {
	return Options{
		LevelSpacing:   180,
		SiblingSpacing: 70,
		TextMaxWidth:   150,
		FontSize:       10,
		LineHeight:     1.1,
		NodeRadius:     5,
		LabelOffset:    13,
		Padding:        20,
	}
}

// Normalized fills zero or negative fields from DefaultOptions.
func (o Options) Normalized() Options {
	d := DefaultOptions()
	fill := func(v *float64, def float64) {
		if *v <= 0 || math.IsNaN(*v) {
			*v = def
		}
	}
	fill(&o.LevelSpacing, d.LevelSpacing)
	fill(&o.SiblingSpacing, d.SiblingSpacing)
	fill(&o.TextMaxWidth, d.TextMaxWidth)
	fill(&o.FontSize, d.FontSize)
	fill(&o.LineHeight, d.LineHeight)
	fill(&o.NodeRadius, d.NodeRadius)
	fill(&o.LabelOffset, d.LabelOffset)
	if o.Padding < 0 {
		o.Padding = d.Padding
	}
	return o
}

// LinePixels is the distance between wrapped label baselines.
func (o Options) LinePixels() float64 {
	return o.LineHeight * o.FontSize
}

// LayoutNode is a tree node with derived geometry. Parent and Children are
// ids into the owning Result; they do not own anything.
type LayoutNode struct {
	ID          string
	Name        string
	X, Y        float64
	Depth       int
	HasChildren bool
	Lines       []string
	Width       float64 // widest wrapped line
	Height      float64 // all wrapped lines
	Radius      float64 // collision radius
	Anchor      Anchor
	Box         r2.Box // footprint relative to (X, Y)
	Parent      string
	Children    []string

	node *model.Node
}

// Pos returns the node position.
func (n *LayoutNode) Pos() r2.Vec { return r2.Vec{X: n.X, Y: n.Y} }

// Bounds returns the footprint in layout coordinates.
func (n *LayoutNode) Bounds() r2.Box {
	return r2.Box{Min: r2.Add(n.Box.Min, n.Pos()), Max: r2.Add(n.Box.Max, n.Pos())}
}

// Source returns the tree node this layout node was built from.
func (n *LayoutNode) Source() *model.Node { return n.node }

// Link is a parent to child edge.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Result is one render cycle's worth of geometry.
type Result struct {
	Nodes   map[string]*LayoutNode
	Order   []string // pre-order
	Links   []Link
	Options Options

	byNode map[*model.Node]*LayoutNode
}

// newResult indexes root in pre-order. Ids are expected to be unique; a
// repeated id gets a "~n" suffix so geometry is never shared.
func newResult(root *model.Node, opts Options) *Result {
	r := &Result{
		Nodes:   make(map[string]*LayoutNode, root.Count()),
		Options: opts,
		byNode:  make(map[*model.Node]*LayoutNode),
	}
	var visit func(n *model.Node, depth int, parent *LayoutNode)
	visit = func(n *model.Node, depth int, parent *LayoutNode) {
		id := n.ID
		for i := 2; ; i++ {
			if _, dup := r.Nodes[id]; !dup {
				break
			}
			id = fmt.Sprintf("%s~%d", n.ID, i)
		}
		ln := &LayoutNode{
			ID:          id,
			Name:        n.Name,
			Depth:       depth,
			HasChildren: n.HasChildren(),
			node:        n,
		}
		if parent != nil {
			ln.Parent = parent.ID
			parent.Children = append(parent.Children, id)
			r.Links = append(r.Links, Link{Source: parent.ID, Target: id})
		}
		r.Nodes[id] = ln
		r.Order = append(r.Order, id)
		r.byNode[n] = ln
		for _, c := range n.Children {
			visit(c, depth+1, ln)
		}
	}
	visit(root, 0, nil)
	return r
}

// Len returns the number of nodes.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Order)
}

// Root returns the first node in pre-order.
func (r *Result) Root() *LayoutNode {
	if r.Len() == 0 {
		return nil
	}
	return r.Nodes[r.Order[0]]
}

// Each visits nodes in pre-order.
func (r *Result) Each(fn func(n *LayoutNode)) {
	if r == nil {
		return
	}
	for _, id := range r.Order {
		fn(r.Nodes[id])
	}
}

// Bounds returns the union of every node footprint.
func (r *Result) Bounds() r2.Box {
	if r.Len() == 0 {
		return r2.Box{}
	}
	b := r.Nodes[r.Order[0]].Bounds()
	r.Each(func(n *LayoutNode) {
		nb := n.Bounds()
		b.Min.X = math.Min(b.Min.X, nb.Min.X)
		b.Min.Y = math.Min(b.Min.Y, nb.Min.Y)
		b.Max.X = math.Max(b.Max.X, nb.Max.X)
		b.Max.Y = math.Max(b.Max.Y, nb.Max.Y)
	})
	return b
}

// Clone copies the result so a snapshot cannot be changed by later steps.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := &Result{
		Nodes:   make(map[string]*LayoutNode, len(r.Nodes)),
		Order:   append([]string(nil), r.Order...),
		Links:   append([]Link(nil), r.Links...),
		Options: r.Options,
		byNode:  make(map[*model.Node]*LayoutNode, len(r.byNode)),
	}
	for id, n := range r.Nodes {
		cp := *n
		cp.Lines = append([]string(nil), n.Lines...)
		cp.Children = append([]string(nil), n.Children...)
		out.Nodes[id] = &cp
		out.byNode[n.node] = &cp
	}
	return out
}

// measure wraps every label and derives its footprint. Labels sit beside the
// node for AnchorStart/AnchorEnd and centered for AnchorMiddle; side anchors
// put internal nodes' labels on the left and leaves' on the right.
func (r *Result) measure(m Measurer, middle bool) {
	o := r.Options
	lh := o.LinePixels()
	r.Each(func(n *LayoutNode) {
		n.Lines = Wrap(n.Name, o.TextMaxWidth, o.FontSize, m)
		n.Width = 0
		for _, w := range LineWidths(n.Lines, o.FontSize, m) {
			n.Width = math.Max(n.Width, w)
		}
		n.Height = float64(len(n.Lines)) * lh

		switch {
		case middle:
			n.Anchor = AnchorMiddle
			hw := math.Max(n.Width/2, o.NodeRadius)
			hh := math.Max(n.Height/2, o.NodeRadius)
			n.Box = r2.Box{Min: r2.Vec{X: -hw, Y: -hh}, Max: r2.Vec{X: hw, Y: hh}}
		case n.HasChildren:
			n.Anchor = AnchorEnd
			n.Box = r2.Box{
				Min: r2.Vec{X: -(o.LabelOffset + n.Width), Y: math.Min(-lh/2, -o.NodeRadius)},
				Max: r2.Vec{X: o.NodeRadius, Y: math.Max(n.Height-lh/2, o.NodeRadius)},
			}
		default:
			n.Anchor = AnchorStart
			n.Box = r2.Box{
				Min: r2.Vec{X: -o.NodeRadius, Y: math.Min(-lh/2, -o.NodeRadius)},
				Max: r2.Vec{X: o.LabelOffset + n.Width, Y: math.Max(n.Height-lh/2, o.NodeRadius)},
			}
		}
		n.Radius = math.Hypot(n.Width, n.Height) / 2
	})
}
