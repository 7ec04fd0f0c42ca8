package layout

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vanderheijden86/mindview/pkg/model"
)

func TestSimulation_ConvergesWithinCap(t *testing.T) {
	s := NewSimulation(sampleTree(), DefaultOptions(), DefaultForceOptions(800, 600))
	steps := 0
	for s.Step() {
		steps++
		if steps > 1000 {
			t.Fatal("simulation did not stop")
		}
	}
	if s.Running() {
		t.Error("expected simulation to be settled")
	}
	if s.Iterations() > 300 {
		t.Errorf("expected at most 300 iterations, got %d", s.Iterations())
	}
	if s.Step() {
		t.Error("expected Step on a settled simulation to report false")
	}
}

func TestSimulation_CentersAndSpreads(t *testing.T) {
	s := NewSimulation(sampleTree(), DefaultOptions(), DefaultForceOptions(800, 600))
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()

	var sx, sy float64
	snap.Each(func(n *LayoutNode) { sx += n.X; sy += n.Y })
	cx, cy := sx/float64(snap.Len()), sy/float64(snap.Len())
	if math.Abs(cx-400) > 1 || math.Abs(cy-300) > 1 {
		t.Errorf("expected mean near (400,300), got (%.2f,%.2f)", cx, cy)
	}

	for _, l := range snap.Links {
		a, b := snap.Nodes[l.Source], snap.Nodes[l.Target]
		d := math.Hypot(a.X-b.X, a.Y-b.Y)
		if d < 10 || d > 400 {
			t.Errorf("link %s-%s has implausible length %.2f", l.Source, l.Target, d)
		}
	}
}

func TestSimulation_TwoPhaseSizing(t *testing.T) {
	s := NewSimulation(sampleTree(), Options{TextMaxWidth: 20}, DefaultForceOptions(800, 600))
	for i := 0; i < 10; i++ {
		s.Step()
	}
	before := s.Snapshot()
	before.Each(func(n *LayoutNode) {
		if n.Radius != 20 {
			t.Errorf("expected placeholder radius for %s, got %v", n.ID, n.Radius)
		}
		if len(n.Lines) != 1 || n.Lines[0] != n.Name {
			t.Errorf("expected unwrapped label before measuring, got %q", n.Lines)
		}
	})
	if s.Alpha() >= 1 {
		t.Fatalf("expected energy to decay, got %v", s.Alpha())
	}

	s.Measure(runeMeasurer)
	if s.Alpha() != 1 || s.Iterations() != 0 || !s.Measured() {
		t.Errorf("expected reheated simulation, got alpha=%v iterations=%d", s.Alpha(), s.Iterations())
	}
	after := s.Snapshot()
	d := after.Nodes["d"]
	want := math.Hypot(d.Box.Size().X, d.Box.Size().Y)/2 + 4
	if math.Abs(d.Radius-want) > 1e-9 {
		t.Errorf("expected measured radius %v, got %v", want, d.Radius)
	}
	if d.Anchor != AnchorMiddle || len(d.Lines) < 2 {
		t.Errorf("expected wrapped centered label, got %v %q", d.Anchor, d.Lines)
	}
}

func TestSimulation_SnapshotIsIndependent(t *testing.T) {
	s := NewSimulation(sampleTree(), DefaultOptions(), DefaultForceOptions(800, 600))
	snap := s.Snapshot()
	snap.Nodes["a"].X = -1e6
	s.Step()
	if s.Snapshot().Nodes["a"].X == -1e6 {
		t.Error("snapshot aliases simulation state")
	}
}

func TestSimulation_RunHonoursContext(t *testing.T) {
	s := NewSimulation(sampleTree(), DefaultOptions(), DefaultForceOptions(800, 600))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if s.Iterations() != 1 {
		t.Errorf("expected a single step before cancellation, got %d", s.Iterations())
	}
}

func TestSimulation_SingleNode(t *testing.T) {
	s := NewSimulation(&model.Node{ID: "solo", Name: "Solo"}, DefaultOptions(), DefaultForceOptions(200, 100))
	_ = s.Run(context.Background())
	n := s.Snapshot().Nodes["solo"]
	if math.Abs(n.X-100) > 1e-6 || math.Abs(n.Y-50) > 1e-6 {
		t.Errorf("expected lone node at center, got (%v,%v)", n.X, n.Y)
	}
}

func TestSimulation_Nil(t *testing.T) {
	var s *Simulation
	if s.Step() {
		t.Error("expected nil simulation not to step")
	}
	if NewSimulation(nil, DefaultOptions(), DefaultForceOptions(1, 1)) != nil {
		t.Error("expected nil simulation for nil tree")
	}
}
