// Package view owns the current mind map and turns user intent (query,
// mode, viewport) into render-ready frames.
//
// The Controller has a single writer: the UI event loop. The current
// tree, mode and query live in one immutable State that is swapped
// atomically, so other goroutines may read State at any time.
package view

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vanderheijden86/mindview/pkg/debug"
	"github.com/vanderheijden86/mindview/pkg/layout"
	"github.com/vanderheijden86/mindview/pkg/model"
	"github.com/vanderheijden86/mindview/pkg/search"
)

// ErrNoTree is reported when an import yields no root node.
var ErrNoTree = errors.New("import produced no tree")

// Mode selects the presenter.
type Mode string

const (
	ModeDiagram Mode = "diagram"
	ModeList    Mode = "list"
)

// ParseMode accepts "diagram" or "list".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDiagram, ModeList:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want diagram or list)", s)
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeList {
		return ModeDiagram
	}
	return ModeList
}

// Algorithm selects the diagram layout.
type Algorithm string

const (
	AlgorithmTree  Algorithm = "tree"
	AlgorithmForce Algorithm = "force"
)

// ParseAlgorithm accepts "tree" or "force".
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmTree, AlgorithmForce:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("unknown algorithm %q (want tree or force)", s)
}

// Toggle returns the other algorithm.
func (a Algorithm) Toggle() Algorithm {
	if a == AlgorithmForce {
		return AlgorithmTree
	}
	return AlgorithmForce
}

// Outcome is how a render cycle ended.
type Outcome int

const (
	// OutcomeEmpty means there is no tree yet.
	OutcomeEmpty Outcome = iota
	// OutcomeNoMatch means the query matched nothing.
	OutcomeNoMatch
	// OutcomeOversize means the display guard refused the layout.
	OutcomeOversize
	// OutcomeReady means the frame has something to draw.
	OutcomeReady
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeNoMatch:
		return "no-match"
	case OutcomeOversize:
		return "oversize"
	case OutcomeReady:
		return "ready"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Messages shown instead of a diagram or list.
const (
	MsgNoData  = "No data to display."
	MsgNoMatch = "No matching nodes found."
)

// OversizeMessage explains a display guard refusal.
func OversizeMessage(count, limit int) string {
	return fmt.Sprintf("Mind map is too large to display (%d nodes, limit %d). Narrow the search or raise the node display limit.", count, limit)
}

// Options configures a Controller.
type Options struct {
	NodeDisplayLimit int
	FilterMaxDepth   int
	Mode             Mode
	Algorithm        Algorithm
	Layout           layout.Options
	Force            layout.ForceOptions
}

// DefaultOptions returns the standard controller settings.
func DefaultOptions() Options {
	return Options{
		NodeDisplayLimit: 20,
		FilterMaxDepth:   2,
		Mode:             ModeDiagram,
		Algorithm:        AlgorithmTree,
		Layout:           layout.DefaultOptions(),
		Force:            layout.DefaultForceOptions(0, 0),
	}
}

// State is the authoritative tree, mode and query. It is never mutated;
// every change installs a new State.
type State struct {
	Tree  *model.Node
	Mode  Mode
	Query string
}

// Frame is everything a rendering surface needs for one cycle.
type Frame struct {
	Generation uint64
	Mode       Mode
	Algorithm  Algorithm
	Query      string
	MaxDepth   int
	Limit      int
	Outcome    Outcome
	Message    string

	Tree      *model.Node    // filtered tree; nil unless Outcome is Ready
	Layout    *layout.Result // diagram mode only
	Transform layout.Transform
	Animating bool // force layout still has energy
	Measured  bool // force layout has real label geometry

	Count   int // nodes in the filtered tree
	Total   int // nodes in the whole tree
	Matches int
	Notice  error // last import failure, kept until the next success
}

type filterKey struct {
	tree  *model.Node
	query string
	depth int
}

// Controller orchestrates filter and layout for one session.
type Controller struct {
	opts     Options
	measurer layout.Measurer
	state    atomic.Pointer[State]

	width, height float64

	gen    uint64
	sim    *layout.Simulation
	notice error

	cacheKey filterKey
	cached   *model.Node
}

// New returns a Controller with no data. m may be nil until the surface can
// measure text.
func New(m layout.Measurer, opts Options) *Controller {
	if opts.NodeDisplayLimit < 1 {
		opts.NodeDisplayLimit = DefaultOptions().NodeDisplayLimit
	}
	if opts.FilterMaxDepth < 0 {
		opts.FilterMaxDepth = 0
	}
	if opts.Mode == "" {
		opts.Mode = ModeDiagram
	}
	if opts.Algorithm == "" {
		opts.Algorithm = AlgorithmTree
	}
	opts.Layout = opts.Layout.Normalized()

	c := &Controller{opts: opts, measurer: m}
	c.state.Store(&State{Mode: opts.Mode})
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return *c.state.Load()
}

// Options returns the active settings.
func (c *Controller) Options() Options {
	return c.opts
}

// Generation identifies the latest render. Force steps carrying an older
// generation are ignored.
func (c *Controller) Generation() uint64 {
	return c.gen
}

// SetMeasurer swaps the text measurer used by later layouts.
func (c *Controller) SetMeasurer(m layout.Measurer) {
	c.measurer = m
}

// Import installs a freshly imported tree, clears the query and renders.
// A nil tree counts as a failed import.
func (c *Controller) Import(root *model.Node) Frame {
	if root == nil {
		return c.ImportFailed(ErrNoTree)
	}
	prev := c.state.Load()
	c.state.Store(&State{Tree: root, Mode: prev.Mode})
	c.notice = nil
	debug.Log("view: imported tree with %d nodes", root.Count())
	return c.Render()
}

// ImportFailed records err and keeps whatever tree was loaded before.
func (c *Controller) ImportFailed(err error) Frame {
	if err == nil {
		err = ErrNoTree
	}
	c.notice = err
	debug.Log("view: import failed, keeping prior tree: %v", err)
	return c.Render()
}

// ClearNotice forgets the last import failure.
func (c *Controller) ClearNotice() {
	c.notice = nil
}

// SetQuery re-filters the current tree.
func (c *Controller) SetQuery(q string) Frame {
	prev := c.state.Load()
	c.state.Store(&State{Tree: prev.Tree, Mode: prev.Mode, Query: q})
	return c.Render()
}

// SetMode switches presenter, keeping tree and query.
func (c *Controller) SetMode(m Mode) Frame {
	prev := c.state.Load()
	c.state.Store(&State{Tree: prev.Tree, Mode: m, Query: prev.Query})
	return c.Render()
}

// SetAlgorithm switches the diagram layout.
func (c *Controller) SetAlgorithm(a Algorithm) Frame {
	c.opts.Algorithm = a
	return c.Render()
}

// SetMaxDepth changes how much context a match reveals.
func (c *Controller) SetMaxDepth(d int) Frame {
	if d < 0 {
		d = 0
	}
	c.opts.FilterMaxDepth = d
	return c.Render()
}

// SetLimit changes the display guard.
func (c *Controller) SetLimit(n int) Frame {
	if n < 1 {
		n = 1
	}
	c.opts.NodeDisplayLimit = n
	return c.Render()
}

// Resize lays out the current result again for a new viewport.
func (c *Controller) Resize(width, height float64) Frame {
	c.width, c.height = width, height
	return c.Render()
}

// Guard reports whether count nodes may be laid out as a diagram.
func (c *Controller) Guard(count int) bool {
	return count <= c.opts.NodeDisplayLimit
}

func (c *Controller) filtered(st *State) *model.Node {
	key := filterKey{tree: st.Tree, query: search.Normalize(st.Query), depth: c.opts.FilterMaxDepth}
	if key == c.cacheKey && c.cached != nil {
		return c.cached
	}
	c.cacheKey = key
	c.cached = search.Filter(st.Tree, st.Query, c.opts.FilterMaxDepth)
	return c.cached
}

// Render runs filter and layout for the current state. Every call starts a
// new generation, which abandons any running force simulation.
func (c *Controller) Render() Frame {
	c.gen++
	c.sim = nil

	st := c.state.Load()
	f := Frame{
		Generation: c.gen,
		Mode:       st.Mode,
		Algorithm:  c.opts.Algorithm,
		Query:      st.Query,
		MaxDepth:   c.opts.FilterMaxDepth,
		Limit:      c.opts.NodeDisplayLimit,
		Notice:     c.notice,
	}
	if st.Tree == nil {
		f.Outcome = OutcomeEmpty
		f.Message = MsgNoData
		return f
	}
	f.Total = st.Tree.Count()
	f.Matches = search.MatchCount(st.Tree, st.Query)

	tree := c.filtered(st)
	if tree == nil {
		f.Outcome = OutcomeNoMatch
		f.Message = MsgNoMatch
		return f
	}
	f.Count = tree.Count()

	if st.Mode == ModeList {
		f.Outcome = OutcomeReady
		f.Tree = tree
		return f
	}

	if !c.Guard(f.Count) {
		f.Outcome = OutcomeOversize
		f.Message = OversizeMessage(f.Count, c.opts.NodeDisplayLimit)
		return f
	}

	f.Outcome = OutcomeReady
	f.Tree = tree
	switch c.opts.Algorithm {
	case AlgorithmForce:
		fo := c.opts.Force
		fo.Width, fo.Height = c.width, c.height
		c.sim = layout.NewSimulation(tree, c.opts.Layout, fo)
		c.fillForce(&f)
	default:
		f.Layout = layout.Tree(tree, c.measurer, c.opts.Layout)
		f.Transform = layout.FitResult(f.Layout, c.width, c.height)
		f.Measured = true
	}
	return f
}

func (c *Controller) fillForce(f *Frame) {
	f.Layout = c.sim.Snapshot()
	f.Transform = layout.FitResult(f.Layout, c.width, c.height)
	f.Animating = c.sim.Running()
	f.Measured = c.sim.Measured()
}

// forceFrame rebuilds the frame for the running simulation.
func (c *Controller) forceFrame() Frame {
	st := c.state.Load()
	tree := c.filtered(st)
	f := Frame{
		Generation: c.gen,
		Mode:       st.Mode,
		Algorithm:  c.opts.Algorithm,
		Query:      st.Query,
		MaxDepth:   c.opts.FilterMaxDepth,
		Limit:      c.opts.NodeDisplayLimit,
		Outcome:    OutcomeReady,
		Tree:       tree,
		Count:      tree.Count(),
		Total:      st.Tree.Count(),
		Matches:    search.MatchCount(st.Tree, st.Query),
		Notice:     c.notice,
	}
	c.fillForce(&f)
	return f
}

// Step advances the force simulation started by generation gen. It returns
// false, and no frame, when gen is stale or the simulation has settled.
func (c *Controller) Step(gen uint64) (Frame, bool) {
	if gen != c.gen || c.sim == nil {
		return Frame{}, false
	}
	more := c.sim.Step()
	return c.forceFrame(), more
}

// MeasureForce applies real label geometry to the simulation of generation
// gen and restarts it hot.
func (c *Controller) MeasureForce(gen uint64) (Frame, bool) {
	if gen != c.gen || c.sim == nil {
		return Frame{}, false
	}
	c.sim.Measure(c.measurer)
	return c.forceFrame(), true
}
