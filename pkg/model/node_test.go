package model

import "testing"

func sample() *Node {
	return &Node{ID: "root", Name: "Project", Children: []*Node{
		{ID: "a", Name: "Design", Attributes: map[string]string{"COLOR": "#ff0000"}},
		{ID: "b", Name: "Build", Children: []*Node{
			{ID: "c", Name: "Testing"},
		}},
	}}
}

func TestNode_CountAndDepth(t *testing.T) {
	root := sample()
	if got := root.Count(); got != 4 {
		t.Errorf("expected 4 nodes, got %d", got)
	}
	if got := root.Depth(); got != 2 {
		t.Errorf("expected depth 2, got %d", got)
	}
	var nilNode *Node
	if nilNode.Count() != 0 {
		t.Error("expected nil node count 0")
	}
}

func TestNode_WalkOrderAndSkip(t *testing.T) {
	root := sample()
	if got := root.IDs(); len(got) != 4 || got[0] != "root" || got[1] != "a" || got[2] != "b" || got[3] != "c" {
		t.Errorf("unexpected pre-order %v", got)
	}

	var visited []string
	root.Walk(func(n *Node, depth int) bool {
		visited = append(visited, n.ID)
		return n.ID != "b"
	})
	if len(visited) != 3 {
		t.Errorf("expected descendants of b to be skipped, got %v", visited)
	}
}

func TestNode_Find(t *testing.T) {
	root := sample()
	if n := root.Find("c"); n == nil || n.Name != "Testing" {
		t.Errorf("expected to find Testing, got %+v", n)
	}
	if n := root.Find("missing"); n != nil {
		t.Errorf("expected nil for missing id, got %+v", n)
	}
}

func TestNode_CloneIsDeep(t *testing.T) {
	root := sample()
	clone := root.Clone()

	clone.Name = "changed"
	clone.Children[0].Attributes["COLOR"] = "#000000"
	clone.Children[1].Children[0].Name = "changed"

	if root.Name != "Project" {
		t.Error("clone shares root with source")
	}
	if root.Children[0].Attributes["COLOR"] != "#ff0000" {
		t.Error("clone shares attributes with source")
	}
	if root.Children[1].Children[0].Name != "Testing" {
		t.Error("clone shares grandchild with source")
	}
}

func TestNode_CloneDepth(t *testing.T) {
	root := sample()
	if got := root.CloneDepth(0); got.HasChildren() {
		t.Errorf("expected no children at depth 0, got %d", len(got.Children))
	}
	if got := root.CloneDepth(1).Count(); got != 3 {
		t.Errorf("expected 3 nodes at depth 1, got %d", got)
	}
	if got := root.CloneDepth(5).Count(); got != 4 {
		t.Errorf("expected full copy at depth 5, got %d", got)
	}
}
