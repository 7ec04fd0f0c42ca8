package layout

import (
	"errors"
	"math"

	"github.com/mattn/go-runewidth"
)

// ErrMeasureUnavailable is returned by a Measurer that cannot measure yet,
// for example before any font has been loaded.
var ErrMeasureUnavailable = errors.New("text measurement unavailable")

// DefaultCharWidth is the width of one terminal cell in em, used when a
// label cannot be measured. It is wider than the average proportional glyph,
// so estimated boxes err on the large side.
const DefaultCharWidth = 0.62

// Measurer reports the rendered width of a label. The rendering surface
// provides it; layout never holds one beyond a single call.
type Measurer interface {
	Measure(text string, fontSize float64) (float64, error)
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(text string, fontSize float64) (float64, error)

// Measure calls f.
func (f MeasureFunc) Measure(text string, fontSize float64) (float64, error) {
	return f(text, fontSize)
}

// EstimateWidth is the fallback width of text at fontSize.
func EstimateWidth(text string, fontSize float64) float64 {
	return float64(runewidth.StringWidth(text)) * fontSize * DefaultCharWidth
}

func measureOrDefault(m Measurer, text string, fontSize float64) float64 {
	if m == nil {
		return EstimateWidth(text, fontSize)
	}
	w, err := m.Measure(text, fontSize)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return EstimateWidth(text, fontSize)
	}
	return w
}
