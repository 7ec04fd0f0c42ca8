package export

import (
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// FontMeasurer measures labels with the Go Regular font, the face the PNG
// surface draws with. SVG output names the same family so wrapped lines
// fit in viewers that have it.
type FontMeasurer struct {
	mu    sync.Mutex
	font  *truetype.Font
	faces map[float64]font.Face
}

var (
	goRegularOnce sync.Once
	goRegular     *truetype.Font
)

// NewFontMeasurer returns a measurer backed by Go Regular. If the embedded
// font cannot be parsed it falls back to the fixed 7x13 face.
func NewFontMeasurer() *FontMeasurer {
	goRegularOnce.Do(func() {
		goRegular, _ = truetype.Parse(goregular.TTF)
	})
	return &FontMeasurer{font: goRegular, faces: make(map[float64]font.Face)}
}

// Face returns the face for a pixel size. Sizes are rounded to a quarter
// pixel so a zoomed export does not build a face per node.
func (m *FontMeasurer) Face(size float64) font.Face {
	size = math.Max(math.Round(size*4)/4, 1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[size]; ok {
		return f
	}
	var f font.Face = basicfont.Face7x13
	if m.font != nil {
		f = truetype.NewFace(m.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	}
	m.faces[size] = f
	return f
}

// Measure implements layout.Measurer.
func (m *FontMeasurer) Measure(text string, fontSize float64) (float64, error) {
	adv := font.MeasureString(m.Face(fontSize), text)
	return float64(adv) / 64, nil
}
