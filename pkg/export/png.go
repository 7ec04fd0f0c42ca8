package export

import (
	"image/png"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"

	"github.com/vanderheijden86/mindview/pkg/layout"
)

func renderPNG(w io.Writer, s scene, fm *FontMeasurer) error {
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	if s.Message != "" {
		dc.SetFontFace(fm.Face(14))
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(s.Message, float64(s.Width)/2, float64(s.Height)/2, 0.5, 0.5)
		return png.Encode(w, dc.Image())
	}

	dc.SetColor(colorLink)
	dc.SetLineWidth(math.Max(s.NodeRadius/3, 0.5))
	for _, l := range s.Links {
		mx := (l.SX + l.TX) / 2
		dc.MoveTo(l.SX, l.SY)
		dc.CubicTo(mx, l.SY, mx, l.TY, l.TX, l.TY)
		dc.Stroke()
	}

	dc.SetFontFace(fm.Face(s.FontSize))
	for _, n := range s.Nodes {
		dc.SetColor(nodeColor(n))
		dc.DrawCircle(n.X, n.Y, math.Max(s.NodeRadius, 1))
		dc.Fill()

		dc.SetColor(colorText)
		ax := pngAnchor(n.Anchor)
		for _, line := range n.Lines {
			dc.DrawStringAnchored(line.Text, line.X, line.Y, ax, 0.35)
		}
	}

	if s.Title != "" {
		dc.SetFontFace(fm.Face(14))
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(s.Title, 12, 12, 0, 1)
	}
	return png.Encode(w, dc.Image())
}

func pngAnchor(a layout.Anchor) float64 {
	switch a {
	case layout.AnchorEnd:
		return 1
	case layout.AnchorMiddle:
		return 0.5
	}
	return 0
}
