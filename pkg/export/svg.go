package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/mindview/pkg/layout"
)

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorLink     = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorInternal = color.RGBA{0x55, 0x55, 0x55, 0xff}
	colorLeaf     = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorMatch    = color.RGBA{0xff, 0xa5, 0x00, 0xff}
	colorText     = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

const fontFamily = "Go, 'Helvetica Neue', Arial, sans-serif"

func nodeColor(n sceneNode) color.RGBA {
	switch {
	case n.Match:
		return colorMatch
	case n.Internal:
		return colorInternal
	default:
		return colorLeaf
	}
}

func renderSVG(w io.Writer, s scene) error {
	canvas := svg.New(w)
	canvas.Start(s.Width, s.Height)
	if s.Title != "" {
		canvas.Title(s.Title)
	}
	canvas.Rect(0, 0, s.Width, s.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	if s.Message != "" {
		canvas.Text(s.Width/2, s.Height/2, s.Message,
			fmt.Sprintf("fill:%s;font-size:14px;font-family:%s;text-anchor:middle;dominant-baseline:middle", css(colorSubtle), fontFamily))
		canvas.End()
		return nil
	}

	canvas.Gstyle(fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:0.6;stroke-width:%.2f", css(colorLink), math.Max(s.NodeRadius/3, 0.5)))
	for _, l := range s.Links {
		canvas.Path(l.path())
	}
	canvas.Gend()

	canvas.Gstyle(fmt.Sprintf("font-family:%s;font-size:%.2fpx", fontFamily, s.FontSize))
	for _, n := range s.Nodes {
		canvas.Circle(round(n.X), round(n.Y), max(round(s.NodeRadius), 1), fmt.Sprintf("fill:%s", css(nodeColor(n))))
		style := fmt.Sprintf("fill:%s;text-anchor:%s;dominant-baseline:middle", css(colorText), textAnchor(n.Anchor))
		if n.Match {
			style += ";font-weight:bold"
		}
		for _, line := range n.Lines {
			canvas.Text(round(line.X), round(line.Y), line.Text, style)
		}
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func textAnchor(a layout.Anchor) string {
	switch a {
	case layout.AnchorEnd:
		return "end"
	case layout.AnchorMiddle:
		return "middle"
	}
	return "start"
}

func round(v float64) int {
	return int(math.Round(v))
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
