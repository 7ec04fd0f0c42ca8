package search

import (
	"fmt"
	"testing"

	"github.com/vanderheijden86/mindview/pkg/model"
	"pgregory.net/rapid"
)

func sampleTree() *model.Node {
	return &model.Node{ID: "root", Name: "Project", Children: []*model.Node{
		{ID: "a", Name: "Design"},
		{ID: "b", Name: "Build", Children: []*model.Node{
			{ID: "c", Name: "Testing"},
		}},
	}}
}

func ids(n *model.Node) []string {
	if n == nil {
		return nil
	}
	return n.IDs()
}

func assertIDs(t *testing.T, got *model.Node, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, gotIDs)
		}
	}
}

func TestFilter_AncestorOfMatchKeepsOnlyMatchingBranch(t *testing.T) {
	got := Filter(sampleTree(), "design", 1)
	assertIDs(t, got, "root", "a")
}

func TestFilter_SelfMatchAtZeroDepthIsAlone(t *testing.T) {
	got := Filter(sampleTree(), "project", 0)
	assertIDs(t, got, "root")
}

func TestFilter_SelfMatchRevealsContext(t *testing.T) {
	got := Filter(sampleTree(), "build", 1)
	assertIDs(t, got, "root", "b", "c")

	got = Filter(sampleTree(), "PROJECT", 1)
	assertIDs(t, got, "root", "a", "b")
}

func TestFilter_NoMatchReturnsNil(t *testing.T) {
	if got := Filter(sampleTree(), "nomatch", 2); got != nil {
		t.Errorf("expected nil, got %v", ids(got))
	}
}

func TestFilter_BlankQueryIsIdentity(t *testing.T) {
	root := sampleTree()
	for _, q := range []string{"", "   ", "\t\n"} {
		if got := Filter(root, q, 2); got != root {
			t.Errorf("expected identity for query %q", q)
		}
	}
}

func TestFilter_NegativeDepthTreatedAsZero(t *testing.T) {
	got := Filter(sampleTree(), "build", -3)
	assertIDs(t, got, "root", "b")
}

func TestFilter_DoesNotMutateSource(t *testing.T) {
	root := sampleTree()
	before := ids(root)
	got := Filter(root, "testing", 2)
	got.Name = "mutated"
	got.Children[0].Children = nil

	after := ids(root)
	if fmt.Sprint(before) != fmt.Sprint(after) || root.Name != "Project" {
		t.Errorf("source tree changed: before %v after %v", before, after)
	}
}

func TestMatchCountAndPaths(t *testing.T) {
	root := sampleTree()
	if got := MatchCount(root, "i"); got != 3 {
		t.Errorf("expected 3 matches for 'i', got %d", got)
	}
	paths := Paths(root, "testing")
	if len(paths) != 1 || fmt.Sprint(paths[0]) != "[root b c]" {
		t.Errorf("unexpected paths %v", paths)
	}
	if Paths(root, " ") != nil {
		t.Error("expected nil paths for blank query")
	}
}

var names = []string{"alpha", "Beta", "gamma ray", "delta", "ALPHA beta", "", "epsilon"}

func drawTree(t *rapid.T) *model.Node {
	next := 0
	var build func(level int) *model.Node
	build = func(level int) *model.Node {
		n := &model.Node{ID: fmt.Sprintf("n%d", next), Name: rapid.SampledFrom(names).Draw(t, "name")}
		next++
		if level < 4 {
			k := rapid.IntRange(0, 3).Draw(t, "fanout")
			for i := 0; i < k; i++ {
				n.Children = append(n.Children, build(level+1))
			}
		}
		return n
	}
	return build(0)
}

func parents(root *model.Node) map[string]string {
	out := map[string]string{}
	root.Walk(func(n *model.Node, _ int) bool {
		for _, c := range n.Children {
			out[c.ID] = n.ID
		}
		return true
	})
	return out
}

func TestFilterProperties(t *testing.T) {
	queries := []string{"a", "beta", "ray", "alpha", "zzz", "E"}

	rapid.Check(t, func(t *rapid.T) {
		root := drawTree(t)
		q := rapid.SampledFrom(queries).Draw(t, "query")
		d1 := rapid.IntRange(0, 3).Draw(t, "d1")
		d2 := rapid.IntRange(d1, 5).Draw(t, "d2")

		// identity
		if Filter(root, "", d1) != root {
			t.Fatal("blank query must return the source tree")
		}

		small := Filter(root, q, d1)
		large := Filter(root, q, d2)

		// monotonic in depth
		if small != nil {
			if large == nil {
				t.Fatalf("depth %d matched but depth %d did not", d1, d2)
			}
			have := map[string]bool{}
			for _, id := range large.IDs() {
				have[id] = true
			}
			for _, id := range small.IDs() {
				if !have[id] {
					t.Fatalf("node %s present at depth %d but missing at depth %d", id, d1, d2)
				}
			}
		}
		if large == nil {
			return
		}

		// no aliasing
		source := map[*model.Node]bool{}
		root.Walk(func(n *model.Node, _ int) bool { source[n] = true; return true })
		large.Walk(func(n *model.Node, _ int) bool {
			if source[n] {
				t.Fatalf("filtered node %s aliases the source tree", n.ID)
			}
			return true
		})

		// ancestor chains: same root, and every kept edge is a source edge
		if large.ID != root.ID {
			t.Fatalf("expected root %s, got %s", root.ID, large.ID)
		}
		want := parents(root)
		for child, parent := range parents(large) {
			if want[child] != parent {
				t.Fatalf("node %s has parent %s, source parent is %s", child, parent, want[child])
			}
		}
	})
}
