package export

import (
	"fmt"

	"github.com/vanderheijden86/mindview/pkg/layout"
	"github.com/vanderheijden86/mindview/pkg/search"
	"github.com/vanderheijden86/mindview/pkg/view"
	"gonum.org/v1/gonum/spatial/r2"
)

// scene is a frame projected into output pixels, shared by the SVG and PNG
// surfaces.
type scene struct {
	Width, Height int
	Title         string
	Message       string // drawn instead of the diagram when set
	FontSize      float64
	NodeRadius    float64
	Nodes         []sceneNode
	Links         []sceneLink
}

type sceneNode struct {
	ID       string
	X, Y     float64
	Internal bool
	Match    bool
	Anchor   layout.Anchor
	Lines    []sceneLine
}

type sceneLine struct {
	X, Y float64 // vertical center of the line
	Text string
}

type sceneLink struct {
	SX, SY, TX, TY float64
}

// path is the d attribute of a horizontal link: a cubic curve whose control
// points share the midpoint x.
func (l sceneLink) path() string {
	mx := (l.SX + l.TX) / 2
	return fmt.Sprintf("M%.2f,%.2fC%.2f,%.2f %.2f,%.2f %.2f,%.2f", l.SX, l.SY, mx, l.SY, mx, l.TY, l.TX, l.TY)
}

func buildScene(f view.Frame, opts SnapshotOptions) scene {
	s := scene{Width: opts.Width, Height: opts.Height, Title: opts.Title}
	if f.Outcome != view.OutcomeReady || f.Layout == nil {
		s.Message = f.Message
		if s.Message == "" {
			s.Message = view.MsgNoData
		}
		return s
	}

	res, t := f.Layout, f.Transform
	o := res.Options
	s.FontSize = o.FontSize * t.K
	s.NodeRadius = o.NodeRadius * t.K
	lh := o.LinePixels()

	for _, l := range res.Links {
		src, dst := res.Nodes[l.Source], res.Nodes[l.Target]
		if src == nil || dst == nil {
			continue
		}
		a, b := t.Apply(src.Pos()), t.Apply(dst.Pos())
		s.Links = append(s.Links, sceneLink{SX: a.X, SY: a.Y, TX: b.X, TY: b.Y})
	}

	res.Each(func(n *layout.LayoutNode) {
		p := t.Apply(n.Pos())
		sn := sceneNode{
			ID:       n.ID,
			X:        p.X,
			Y:        p.Y,
			Internal: n.HasChildren,
			Match:    search.Matches(n.Name, f.Query),
			Anchor:   n.Anchor,
		}
		var x, y0 float64
		switch n.Anchor {
		case layout.AnchorStart:
			x, y0 = n.X+o.LabelOffset, n.Y
		case layout.AnchorEnd:
			x, y0 = n.X-o.LabelOffset, n.Y
		default:
			x, y0 = n.X, n.Y-n.Height/2+lh/2
		}
		for i, line := range n.Lines {
			lp := t.Apply(r2.Vec{X: x, Y: y0 + float64(i)*lh})
			sn.Lines = append(sn.Lines, sceneLine{X: lp.X, Y: lp.Y, Text: line})
		}
		s.Nodes = append(s.Nodes, sn)
	})
	return s
}
