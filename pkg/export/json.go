package export

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/mindview/pkg/layout"
	"github.com/vanderheijden86/mindview/pkg/search"
	"github.com/vanderheijden86/mindview/pkg/view"
)

// LayoutDocument is the JSON export: the positioned diagram in layout
// coordinates plus the transform that fits it to the viewport.
type LayoutDocument struct {
	Query     string           `json:"query"`
	Mode      view.Mode        `json:"mode"`
	Algorithm view.Algorithm   `json:"algorithm"`
	Outcome   string           `json:"outcome"`
	Message   string           `json:"message,omitempty"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Transform layout.Transform `json:"transform"`
	Count     int              `json:"count"`
	Total     int              `json:"total"`
	Matches   int              `json:"matches"`
	Nodes     []DocumentNode   `json:"nodes"`
	Links     []layout.Link    `json:"links"`
}

// DocumentNode is one positioned node. Box is [minX, minY, maxX, maxY].
type DocumentNode struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Depth  int        `json:"depth"`
	Parent string     `json:"parent,omitempty"`
	Match  bool       `json:"match,omitempty"`
	Anchor string     `json:"anchor"`
	Lines  []string   `json:"lines"`
	Box    [4]float64 `json:"box"`
}

// NewLayoutDocument converts a frame.
func NewLayoutDocument(f view.Frame, width, height int) LayoutDocument {
	doc := LayoutDocument{
		Query:     f.Query,
		Mode:      f.Mode,
		Algorithm: f.Algorithm,
		Outcome:   f.Outcome.String(),
		Message:   f.Message,
		Width:     width,
		Height:    height,
		Transform: f.Transform,
		Count:     f.Count,
		Total:     f.Total,
		Matches:   f.Matches,
		Nodes:     []DocumentNode{},
		Links:     []layout.Link{},
	}
	if f.Layout == nil {
		return doc
	}
	f.Layout.Each(func(n *layout.LayoutNode) {
		b := n.Bounds()
		doc.Nodes = append(doc.Nodes, DocumentNode{
			ID:     n.ID,
			Name:   n.Name,
			X:      n.X,
			Y:      n.Y,
			Depth:  n.Depth,
			Parent: n.Parent,
			Match:  search.Matches(n.Name, f.Query),
			Anchor: n.Anchor.String(),
			Lines:  n.Lines,
			Box:    [4]float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
		})
	})
	doc.Links = append(doc.Links, f.Layout.Links...)
	return doc
}

func renderJSON(w io.Writer, f view.Frame, opts SnapshotOptions) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewLayoutDocument(f, opts.Width, opts.Height))
}
