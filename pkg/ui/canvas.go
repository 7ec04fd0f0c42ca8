package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/mindview/pkg/layout"
	"github.com/vanderheijden86/mindview/pkg/search"
	"github.com/vanderheijden86/mindview/pkg/view"
)

// One terminal cell stands for this many layout pixels.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Glyphs drawn on the diagram.
const (
	glyphLink     = '·'
	glyphInternal = '●'
	glyphLeaf     = '○'
)

// TerminalMeasurer sizes labels in cells: every column a label occupies is
// CellWidth pixels at the default font size.
type TerminalMeasurer struct{}

// Measure implements layout.Measurer.
func (TerminalMeasurer) Measure(text string, fontSize float64) (float64, error) {
	scale := fontSize / layout.DefaultOptions().FontSize
	return float64(runewidth.StringWidth(text)) * CellWidth * scale, nil
}

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellLink
	cellLabel
	cellMatch
	cellInternal
	cellLeaf
	cellSelected
)

type cell struct {
	r    rune
	kind cellKind
	cont bool // right half of a double-width rune
}

// Canvas is a fixed rune grid. Writes outside the grid are dropped.
type Canvas struct {
	width, height int
	cells         []cell
}

// NewCanvas returns an empty width×height grid.
func NewCanvas(width, height int) *Canvas {
	width = max(width, 0)
	height = max(height, 0)
	c := &Canvas{width: width, height: height, cells: make([]cell, width*height)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

func (c *Canvas) in(col, row int) bool {
	return col >= 0 && row >= 0 && col < c.width && row < c.height
}

func (c *Canvas) at(col, row int) *cell {
	return &c.cells[row*c.width+col]
}

// Rune returns the rune at (col, row), or 0 outside the grid and for the
// right half of a wide rune.
func (c *Canvas) Rune(col, row int) rune {
	if !c.in(col, row) {
		return 0
	}
	cl := c.at(col, row)
	if cl.cont {
		return 0
	}
	return cl.r
}

// set writes r and reports how many columns it took. Half-overwritten wide
// runes are blanked so a row never holds an orphaned half.
func (c *Canvas) set(col, row int, r rune, kind cellKind) int {
	w := runewidth.RuneWidth(r)
	if w == 0 || !c.in(col, row) || !c.in(col+w-1, row) {
		return w
	}
	for i := col; i < col+w; i++ {
		c.clear(i, row)
	}
	*c.at(col, row) = cell{r: r, kind: kind}
	if w == 2 {
		*c.at(col+1, row) = cell{kind: kind, cont: true}
	}
	return w
}

func (c *Canvas) clear(col, row int) {
	cl := c.at(col, row)
	if cl.cont && c.in(col-1, row) {
		*c.at(col-1, row) = cell{r: ' '}
	}
	if !cl.cont && runewidth.RuneWidth(cl.r) == 2 && c.in(col+1, row) {
		*c.at(col+1, row) = cell{r: ' '}
	}
	*cl = cell{r: ' '}
}

// Set writes a single rune.
func (c *Canvas) Set(col, row int, r rune) {
	c.set(col, row, r, cellLabel)
}

// Text writes s from (col, row) and returns the columns it spans.
func (c *Canvas) Text(col, row int, s string) int {
	return c.text(col, row, s, cellLabel)
}

func (c *Canvas) text(col, row int, s string, kind cellKind) int {
	x := col
	for _, r := range s {
		x += c.set(x, row, r, kind)
	}
	return x - col
}

// line draws a Bresenham line of r over empty cells only, so labels and
// nodes drawn earlier are never crossed out.
func (c *Canvas) line(c0, r0, c1, r1 int, r rune, kind cellKind) {
	dx := abs(c1 - c0)
	dy := -abs(r1 - r0)
	sx, sy := 1, 1
	if c0 > c1 {
		sx = -1
	}
	if r0 > r1 {
		sy = -1
	}
	err := dx + dy
	for {
		if c.in(c0, r0) && c.at(c0, r0).kind == cellEmpty {
			c.set(c0, r0, r, kind)
		}
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			c0 += sx
		}
		if e2 <= dx {
			err += dx
			r0 += sy
		}
	}
}

// String renders the grid without styling, one line per row with trailing
// blanks trimmed.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.height; row++ {
		var line strings.Builder
		for col := 0; col < c.width; col++ {
			cl := c.at(col, row)
			if !cl.cont {
				line.WriteRune(cl.r)
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		if row < c.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render styles runs of same-kind cells with theme.
func (c *Canvas) Render(theme Theme) string {
	lines := make([]string, c.height)
	for row := 0; row < c.height; row++ {
		var b, run strings.Builder
		kind := cellEmpty
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(theme.styleFor(kind).Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.width; col++ {
			cl := c.at(col, row)
			if cl.cont {
				continue
			}
			if cl.kind != kind {
				flush()
				kind = cl.kind
			}
			run.WriteRune(cl.r)
		}
		flush()
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (t Theme) styleFor(k cellKind) lipgloss.Style {
	switch k {
	case cellLink:
		return t.LinkText
	case cellLabel:
		return t.Label
	case cellMatch:
		return t.MatchText
	case cellInternal:
		return t.InternalNode
	case cellLeaf:
		return t.LeafNode
	case cellSelected:
		return t.Selected
	}
	return t.Renderer.NewStyle()
}

// project maps a layout point through the frame transform to a cell.
func project(f view.Frame, n *layout.LayoutNode) (int, int) {
	p := f.Transform.Apply(n.Pos())
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

// DrawDiagram projects a ready diagram frame onto a cols×rows canvas. Labels
// go down first and links only fill the cells they leave empty; node glyphs
// go on top. The node with id selected is drawn highlighted.
func DrawDiagram(f view.Frame, cols, rows int, selected string) *Canvas {
	c := NewCanvas(cols, rows)
	if f.Layout == nil {
		return c
	}
	res := f.Layout

	res.Each(func(n *layout.LayoutNode) {
		col, row := project(f, n)
		kind := cellLabel
		if search.Matches(n.Name, f.Query) {
			kind = cellMatch
		}
		if n.ID == selected {
			kind = cellSelected
		}
		top := row
		if n.Anchor == layout.AnchorMiddle {
			top = row + 1
		}
		for i, text := range n.Lines {
			w := runewidth.StringWidth(text)
			var x int
			switch n.Anchor {
			case layout.AnchorEnd:
				x = col - 1 - w
			case layout.AnchorMiddle:
				x = col - w/2
			default:
				x = col + 2
			}
			c.text(x, top+i, text, kind)
		}
	})

	for _, l := range res.Links {
		s, t := res.Nodes[l.Source], res.Nodes[l.Target]
		if s == nil || t == nil {
			continue
		}
		c0, r0 := project(f, s)
		c1, r1 := project(f, t)
		c.line(c0, r0, c1, r1, glyphLink, cellLink)
	}

	res.Each(func(n *layout.LayoutNode) {
		col, row := project(f, n)
		g, kind := glyphLeaf, cellLeaf
		if n.HasChildren {
			g, kind = glyphInternal, cellInternal
		}
		if search.Matches(n.Name, f.Query) {
			kind = cellMatch
		}
		if n.ID == selected {
			kind = cellSelected
		}
		c.set(col, row, g, kind)
	})
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
