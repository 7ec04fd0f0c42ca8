package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/vanderheijden86/mindview/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

func sampleTree() *model.Node {
	return &model.Node{ID: "root", Name: "Project", Children: []*model.Node{
		{ID: "a", Name: "Design"},
		{ID: "b", Name: "Build", Children: []*model.Node{
			{ID: "c", Name: "Testing"},
			{ID: "d", Name: "Release candidate with a rather long label"},
		}},
	}}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTree_Positions(t *testing.T) {
	r := Tree(sampleTree(), runeMeasurer, DefaultOptions())
	if r.Len() != 5 {
		t.Fatalf("expected 5 nodes, got %d", r.Len())
	}

	root := r.Nodes["root"]
	if root.X != 0 || root.Y != 0 {
		t.Errorf("expected root at origin, got (%v, %v)", root.X, root.Y)
	}
	for id, depth := range map[string]int{"a": 1, "b": 1, "c": 2, "d": 2} {
		n := r.Nodes[id]
		if n.Depth != depth || !approx(n.X, float64(depth)*180) {
			t.Errorf("%s: expected depth %d at x=%v, got depth %d x=%v", id, depth, float64(depth)*180, n.Depth, n.X)
		}
	}

	// leaves a, c, d take one 70px slot each
	a, b, c, d := r.Nodes["a"], r.Nodes["b"], r.Nodes["c"], r.Nodes["d"]
	if !approx(c.Y-a.Y, 70) || !approx(d.Y-c.Y, 70) {
		t.Errorf("expected 70px leaf spacing, got a=%v c=%v d=%v", a.Y, c.Y, d.Y)
	}
	if !approx(b.Y, (c.Y+d.Y)/2) {
		t.Errorf("expected b centered over its children, got %v", b.Y)
	}
	if !approx(root.Y, (a.Y+b.Y)/2) {
		t.Errorf("expected root centered over its children")
	}
}

func TestTree_LinksAndRefs(t *testing.T) {
	r := Tree(sampleTree(), runeMeasurer, DefaultOptions())
	want := []Link{{"root", "a"}, {"root", "b"}, {"b", "c"}, {"b", "d"}}
	if !reflect.DeepEqual(r.Links, want) {
		t.Errorf("expected links %v, got %v", want, r.Links)
	}
	if r.Nodes["c"].Parent != "b" || !reflect.DeepEqual(r.Nodes["b"].Children, []string{"c", "d"}) {
		t.Errorf("unexpected parent/child refs")
	}
	if !r.Nodes["b"].HasChildren || r.Nodes["c"].HasChildren {
		t.Errorf("unexpected HasChildren flags")
	}
}

func TestTree_LabelsAndFootprints(t *testing.T) {
	r := Tree(sampleTree(), runeMeasurer, Options{TextMaxWidth: 20})
	d := r.Nodes["d"]
	if len(d.Lines) < 2 {
		t.Fatalf("expected long label to wrap, got %q", d.Lines)
	}
	if d.Anchor != AnchorStart || d.Box.Max.X <= d.Box.Min.X {
		t.Errorf("expected leaf label to the right, got %v %+v", d.Anchor, d.Box)
	}
	b := r.Nodes["b"]
	if b.Anchor != AnchorEnd || b.Box.Min.X >= -b.Width {
		t.Errorf("expected internal label to the left, got %v %+v", b.Anchor, b.Box)
	}
	if !approx(d.Height, float64(len(d.Lines))*11) {
		t.Errorf("expected height from line count, got %v", d.Height)
	}
}

func TestTree_Deterministic(t *testing.T) {
	first := Tree(sampleTree(), runeMeasurer, DefaultOptions())
	second := Tree(sampleTree(), runeMeasurer, DefaultOptions())
	for _, id := range first.Order {
		a, b := first.Nodes[id], second.Nodes[id]
		if a.X != b.X || a.Y != b.Y || !reflect.DeepEqual(a.Lines, b.Lines) || a.Box != b.Box {
			t.Errorf("node %s differs between runs", id)
		}
	}
}

func TestTree_DuplicateIDsStayDistinct(t *testing.T) {
	root := &model.Node{ID: "x", Name: "one", Children: []*model.Node{{ID: "x", Name: "two"}}}
	r := Tree(root, nil, DefaultOptions())
	if r.Len() != 2 || r.Nodes["x~2"] == nil {
		t.Errorf("expected duplicate id to be suffixed, got %v", r.Order)
	}
}

func TestTree_Nil(t *testing.T) {
	if Tree(nil, nil, DefaultOptions()) != nil {
		t.Error("expected nil result for nil tree")
	}
}

func TestFit_ScalesDownAndCenters(t *testing.T) {
	b := r2.Box{Min: r2.Vec{X: -100, Y: -50}, Max: r2.Vec{X: 900, Y: 450}}
	tr := Fit(b, 540, 540, 20)
	if !approx(tr.K, 0.5) {
		t.Fatalf("expected scale 0.5, got %v", tr.K)
	}
	min, max := tr.Apply(b.Min), tr.Apply(b.Max)
	if !approx((min.X+max.X)/2, 270) || !approx((min.Y+max.Y)/2, 270) {
		t.Errorf("expected centered box, got %v %v", min, max)
	}
}

func TestFit_NeverScalesUp(t *testing.T) {
	b := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 10, Y: 10}}
	tr := Fit(b, 1000, 1000, 20)
	if tr.K != 1 {
		t.Errorf("expected scale 1, got %v", tr.K)
	}
	if c := tr.Apply(r2.Vec{X: 5, Y: 5}); !approx(c.X, 500) || !approx(c.Y, 500) {
		t.Errorf("expected center at 500,500, got %v", c)
	}
}

func TestFit_DegenerateBox(t *testing.T) {
	tr := Fit(r2.Box{Min: r2.Vec{X: 3, Y: 4}, Max: r2.Vec{X: 3, Y: 4}}, 100, 60, 20)
	if tr.K != 1 {
		t.Errorf("expected scale 1, got %v", tr.K)
	}
	if c := tr.Apply(r2.Vec{X: 3, Y: 4}); !approx(c.X, 50) || !approx(c.Y, 30) {
		t.Errorf("expected point centered, got %v", c)
	}
}

func TestFitResult_UsesFootprints(t *testing.T) {
	r := Tree(sampleTree(), runeMeasurer, DefaultOptions())
	tr := FitResult(r, 800, 600)
	view := tr.ApplyBox(r.Bounds())
	if view.Min.X < 20-1e-6 || view.Min.Y < 20-1e-6 || view.Max.X > 780+1e-6 || view.Max.Y > 580+1e-6 {
		t.Errorf("expected footprints inside padded viewport, got %+v", view)
	}
}
