package testutil

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/mindview/pkg/model"
)

// CollectIDs returns the ids of root in pre-order, or nil for a nil tree.
func CollectIDs(root *model.Node) []string {
	if root == nil {
		return nil
	}
	return root.IDs()
}

// CollectNames returns the names of root in pre-order.
func CollectNames(root *model.Node) []string {
	var names []string
	root.Walk(func(n *model.Node, _ int) bool {
		names = append(names, n.Name)
		return true
	})
	return names
}

// AssertIDs verifies the pre-order ids of root.
func AssertIDs(t testing.TB, root *model.Node, want ...string) {
	t.Helper()
	if got := CollectIDs(root); !reflect.DeepEqual(got, want) && !(len(got) == 0 && len(want) == 0) {
		t.Errorf("expected ids %v, got %v", want, got)
	}
}

// AssertNames verifies the pre-order names of root.
func AssertNames(t testing.TB, root *model.Node, want ...string) {
	t.Helper()
	if got := CollectNames(root); !reflect.DeepEqual(got, want) && !(len(got) == 0 && len(want) == 0) {
		t.Errorf("expected names %v, got %v", want, got)
	}
}

// AssertNodeCount verifies the size of root.
func AssertNodeCount(t testing.TB, root *model.Node, want int) {
	t.Helper()
	if got := root.Count(); got != want {
		t.Errorf("expected %d nodes, got %d", want, got)
	}
}

// AssertUniqueIDs verifies that no id appears twice in root.
func AssertUniqueIDs(t testing.TB, root *model.Node) {
	t.Helper()
	seen := make(map[string]bool)
	for _, id := range CollectIDs(root) {
		if seen[id] {
			t.Errorf("duplicate node id: %s", id)
		}
		seen[id] = true
	}
}

// AssertNoAlias verifies that got shares no node pointer with src.
func AssertNoAlias(t testing.TB, src, got *model.Node) {
	t.Helper()
	owned := make(map[*model.Node]bool)
	src.Walk(func(n *model.Node, _ int) bool {
		owned[n] = true
		return true
	})
	got.Walk(func(n *model.Node, _ int) bool {
		if owned[n] {
			t.Errorf("node %s is shared with the source tree", n.ID)
		}
		return true
	})
}

// AssertUnchanged verifies that root still equals before, deeply.
func AssertUnchanged(t testing.TB, before, root *model.Node) {
	t.Helper()
	if !reflect.DeepEqual(before, root) {
		t.Errorf("expected tree to be unchanged\nbefore: %v\nafter:  %v", CollectIDs(before), CollectIDs(root))
	}
}
