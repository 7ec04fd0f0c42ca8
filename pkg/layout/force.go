package layout

import (
	"context"
	"math"
	"math/rand"

	"github.com/vanderheijden86/mindview/pkg/metrics"
	"github.com/vanderheijden86/mindview/pkg/model"
	"gonum.org/v1/gonum/graph"
	graphlayout "gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"
)

// ForceOptions configures a Simulation. The defaults follow d3-force.
type ForceOptions struct {
	Width, Height     float64 // viewport; the centering force targets its middle
	LinkDistance      float64
	ChargeStrength    float64 // negative repels
	DistanceMin       float64
	CollideStrength   float64
	CollisionPadding  float64
	PlaceholderRadius float64
	AlphaMin          float64
	AlphaDecay        float64
	VelocityDecay     float64
	MaxIterations     int
	Seed              int64
}

// DefaultForceOptions returns d3-like settings for a width by height view.
func DefaultForceOptions(width, height float64) ForceOptions {
	alphaMin := 0.001
	return ForceOptions{
		Width:             width,
		Height:            height,
		LinkDistance:      90,
		ChargeStrength:    -30,
		DistanceMin:       1,
		CollideStrength:   0.7,
		CollisionPadding:  4,
		PlaceholderRadius: 20,
		AlphaMin:          alphaMin,
		AlphaDecay:        1 - math.Pow(alphaMin, 1.0/300),
		VelocityDecay:     0.4,
		MaxIterations:     300,
		Seed:              1,
	}
}

func (o ForceOptions) normalized() ForceOptions {
	d := DefaultForceOptions(o.Width, o.Height)
	if o.LinkDistance <= 0 {
		o.LinkDistance = d.LinkDistance
	}
	if o.ChargeStrength == 0 {
		o.ChargeStrength = d.ChargeStrength
	}
	if o.DistanceMin <= 0 {
		o.DistanceMin = d.DistanceMin
	}
	if o.CollideStrength <= 0 {
		o.CollideStrength = d.CollideStrength
	}
	if o.PlaceholderRadius <= 0 {
		o.PlaceholderRadius = d.PlaceholderRadius
	}
	if o.AlphaMin <= 0 {
		o.AlphaMin = d.AlphaMin
	}
	if o.AlphaDecay <= 0 {
		o.AlphaDecay = 1 - math.Pow(o.AlphaMin, 1.0/300)
	}
	if o.VelocityDecay <= 0 || o.VelocityDecay >= 1 {
		o.VelocityDecay = d.VelocityDecay
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	return o
}

// forceGraph is the simulation's graph. It also stores the node positions,
// which makes gonum's optimizer write straight into it.
type forceGraph struct {
	*simple.UndirectedGraph
	pos []r2.Vec
}

func (g *forceGraph) IsInitialized() bool          { return len(g.pos) != 0 }
func (g *forceGraph) SetCoord2(id int64, p r2.Vec) { g.pos[id] = p }
func (g *forceGraph) Coord2(id int64) r2.Vec       { return g.pos[id] }
func (g *forceGraph) degree(id int64) int          { return g.From(id).Len() }

var _ graphlayout.LayoutR2 = (*forceGraph)(nil)

type spring struct {
	source, target int64
	bias, strength float64
}

// Simulation is a force-directed layout advanced one tick per Step call.
// Abandoning a run is simply not calling Step again.
type Simulation struct {
	opts    ForceOptions
	res     *Result
	g       *forceGraph
	opt     graphlayout.OptimizerR2
	ids     []string
	vel     []r2.Vec
	radii   []float64
	springs []spring
	rng     *rand.Rand

	alpha      float64
	iterations int
	measured   bool
}

// NewSimulation builds a simulation for root. Labels are not measured yet:
// collision uses PlaceholderRadius until Measure or SetRadii is called.
func NewSimulation(root *model.Node, layoutOpts Options, opts ForceOptions) *Simulation {
	if root == nil {
		return nil
	}
	opts = opts.normalized()
	s := &Simulation{
		opts:  opts,
		res:   newResult(root, layoutOpts.Normalized()),
		alpha: 1,
		rng:   rand.New(rand.NewSource(opts.Seed)),
	}

	n := s.res.Len()
	s.g = &forceGraph{UndirectedGraph: simple.NewUndirectedGraph(), pos: make([]r2.Vec, n)}
	s.ids = make([]string, n)
	index := make(map[string]int64, n)
	for i, id := range s.res.Order {
		s.ids[i] = id
		index[id] = int64(i)
		s.g.AddNode(simple.Node(i))
	}
	for _, l := range s.res.Links {
		s.g.SetEdge(simple.Edge{F: simple.Node(index[l.Source]), T: simple.Node(index[l.Target])})
	}
	for _, l := range s.res.Links {
		src, dst := index[l.Source], index[l.Target]
		ds, dt := float64(s.g.degree(src)), float64(s.g.degree(dst))
		s.springs = append(s.springs, spring{
			source:   src,
			target:   dst,
			bias:     ds / (ds + dt),
			strength: 1 / math.Min(ds, dt),
		})
	}

	s.vel = make([]r2.Vec, n)
	s.radii = make([]float64, n)
	for i := range s.radii {
		s.radii[i] = opts.PlaceholderRadius
	}

	// phyllotaxis arrangement, as d3 seeds unpositioned nodes
	center := r2.Vec{X: opts.Width / 2, Y: opts.Height / 2}
	angle := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		radius := 10 * math.Sqrt(0.5+float64(i))
		a := float64(i) * angle
		s.g.pos[i] = r2.Add(center, r2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
	}

	s.opt = graphlayout.NewOptimizerR2(s.g, s.tick)
	return s
}

// Step advances the simulation by one tick and reports whether more ticks
// would still move nodes.
func (s *Simulation) Step() bool {
	if s == nil || !s.Running() {
		return false
	}
	defer metrics.Timer(metrics.ForceTick)()
	return s.opt.Update()
}

// Run steps until the simulation settles or ctx is done.
func (s *Simulation) Run(ctx context.Context) error {
	for s.Step() {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Running reports whether the simulation still has energy and iterations left.
func (s *Simulation) Running() bool {
	return s.alpha >= s.opts.AlphaMin && s.iterations < s.opts.MaxIterations
}

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Iterations returns the number of ticks since the last (re)start.
func (s *Simulation) Iterations() int { return s.iterations }

// Measured reports whether label geometry has been applied.
func (s *Simulation) Measured() bool { return s.measured }

// Reheat restores the initial energy and restarts the iteration count.
func (s *Simulation) Reheat() {
	s.alpha = 1
	s.iterations = 0
}

// SetRadii replaces the collision radius of every node.
func (s *Simulation) SetRadii(radius func(id string) float64) {
	for i, id := range s.ids {
		s.radii[i] = radius(id)
	}
}

// Measure wraps and measures every label, switches collision to the real
// footprints and reheats. It is the second half of the two-phase start: the
// first frames are laid out with placeholder radii.
func (s *Simulation) Measure(m Measurer) {
	s.res.measure(m, true)
	pad := s.opts.CollisionPadding
	s.SetRadii(func(id string) float64 {
		n := s.res.Nodes[id]
		return math.Hypot(n.Box.Size().X, n.Box.Size().Y)/2 + pad
	})
	s.measured = true
	s.Reheat()
}

// Snapshot returns the current positions as an independent Result.
func (s *Simulation) Snapshot() *Result {
	for i, id := range s.ids {
		n := s.res.Nodes[id]
		p := s.opt.Coord2(int64(i))
		n.X, n.Y = p.X, p.Y
		n.Radius = s.radii[i]
		if !s.measured {
			n.Lines = []string{n.Name}
			n.Anchor = AnchorMiddle
			r := s.radii[i] / math.Sqrt2
			n.Box = r2.Box{Min: r2.Vec{X: -r, Y: -r}, Max: r2.Vec{X: r, Y: r}}
		}
	}
	return s.res.Clone()
}

func (s *Simulation) tick(_ graph.Graph, l graphlayout.LayoutR2) bool {
	if !s.Running() {
		return false
	}
	s.alpha += (0 - s.alpha) * s.opts.AlphaDecay

	s.applyLinks(l)
	s.applyCharge(l)
	s.applyCollide(l)

	keep := 1 - s.opts.VelocityDecay
	for i := range s.vel {
		s.vel[i] = r2.Scale(keep, s.vel[i])
		l.SetCoord2(int64(i), r2.Add(l.Coord2(int64(i)), s.vel[i]))
	}
	s.applyCenter(l)

	s.iterations++
	return s.Running()
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func (s *Simulation) applyLinks(l graphlayout.LayoutR2) {
	for _, sp := range s.springs {
		src := r2.Add(l.Coord2(sp.source), s.vel[sp.source])
		dst := r2.Add(l.Coord2(sp.target), s.vel[sp.target])
		d := r2.Sub(dst, src)
		if d.X == 0 {
			d.X = s.jiggle()
		}
		if d.Y == 0 {
			d.Y = s.jiggle()
		}
		dist := r2.Norm(d)
		d = r2.Scale((dist-s.opts.LinkDistance)/dist*s.alpha*sp.strength, d)
		s.vel[sp.target] = r2.Sub(s.vel[sp.target], r2.Scale(sp.bias, d))
		s.vel[sp.source] = r2.Add(s.vel[sp.source], r2.Scale(1-sp.bias, d))
	}
}

// applyCharge is the naive O(n²) many-body term.
func (s *Simulation) applyCharge(l graphlayout.LayoutR2) {
	min2 := s.opts.DistanceMin * s.opts.DistanceMin
	for i := range s.vel {
		pi := l.Coord2(int64(i))
		for j := range s.vel {
			if i == j {
				continue
			}
			d := r2.Sub(l.Coord2(int64(j)), pi)
			if d.X == 0 {
				d.X = s.jiggle()
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
			}
			dist2 := r2.Norm2(d)
			if dist2 < min2 {
				dist2 = math.Sqrt(min2 * dist2)
			}
			s.vel[i] = r2.Add(s.vel[i], r2.Scale(s.opts.ChargeStrength*s.alpha/dist2, d))
		}
	}
}

func (s *Simulation) applyCollide(l graphlayout.LayoutR2) {
	for i := range s.vel {
		ri := s.radii[i]
		ri2 := ri * ri
		pi := r2.Add(l.Coord2(int64(i)), s.vel[i])
		for j := i + 1; j < len(s.vel); j++ {
			rj := s.radii[j]
			r := ri + rj
			d := r2.Sub(pi, r2.Add(l.Coord2(int64(j)), s.vel[j]))
			dist2 := r2.Norm2(d)
			if dist2 >= r*r {
				continue
			}
			if d.X == 0 {
				d.X = s.jiggle()
				dist2 += d.X * d.X
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
				dist2 += d.Y * d.Y
			}
			dist := math.Sqrt(dist2)
			d = r2.Scale((r-dist)/dist*s.opts.CollideStrength, d)
			share := rj * rj / (ri2 + rj*rj)
			s.vel[i] = r2.Add(s.vel[i], r2.Scale(share, d))
			s.vel[j] = r2.Sub(s.vel[j], r2.Scale(1-share, d))
		}
	}
}

func (s *Simulation) applyCenter(l graphlayout.LayoutR2) {
	n := len(s.vel)
	if n == 0 {
		return
	}
	var mean r2.Vec
	for i := 0; i < n; i++ {
		mean = r2.Add(mean, l.Coord2(int64(i)))
	}
	mean = r2.Scale(1/float64(n), mean)
	shift := r2.Sub(r2.Vec{X: s.opts.Width / 2, Y: s.opts.Height / 2}, mean)
	for i := 0; i < n; i++ {
		l.SetCoord2(int64(i), r2.Add(l.Coord2(int64(i)), shift))
	}
}
