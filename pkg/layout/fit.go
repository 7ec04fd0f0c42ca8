package layout

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform is a uniform scale followed by a translation.
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{K: 1}

// Apply maps a layout point to viewport coordinates.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// ApplyBox maps a layout box to viewport coordinates.
func (t Transform) ApplyBox(b r2.Box) r2.Box {
	return r2.Box{Min: t.Apply(b.Min), Max: t.Apply(b.Max)}
}

// String renders the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%.2f,%.2f) scale(%.4f)", t.X, t.Y, t.K)
}

// Fit returns the transform that centers bounds in a width by height
// viewport using the largest scale no greater than 1 that keeps padding on
// every side.
func Fit(bounds r2.Box, width, height, padding float64) Transform {
	size := bounds.Size()
	k := 1.0
	availW, availH := width-2*padding, height-2*padding
	if availW <= 0 || availH <= 0 {
		availW, availH = width, height
	}
	if size.X > 0 && availW > 0 {
		k = math.Min(k, availW/size.X)
	}
	if size.Y > 0 && availH > 0 {
		k = math.Min(k, availH/size.Y)
	}
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		k = 1
	}
	return Transform{
		X: (width-size.X*k)/2 - bounds.Min.X*k,
		Y: (height-size.Y*k)/2 - bounds.Min.Y*k,
		K: k,
	}
}

// FitResult fits r into the viewport using its own padding option.
func FitResult(r *Result, width, height float64) Transform {
	if r.Len() == 0 {
		return Identity
	}
	return Fit(r.Bounds(), width, height, r.Options.Padding)
}
