// Package model defines the mind-map tree that every other package operates on.
package model

// Node is one labeled entry in a mind map.
//
// Children keep the declared source order; an empty slice marks a leaf.
// Attributes carry the original document metadata and are never interpreted.
type Node struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []*Node           `json:"children,omitempty"`
}

// HasChildren reports whether n is an internal node.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Depth returns the height of the subtree rooted at n (a single node is 0).
func (n *Node) Depth() int {
	if n == nil {
		return -1
	}
	max := 0
	for _, c := range n.Children {
		if d := c.Depth() + 1; d > max {
			max = d
		}
	}
	return max
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// node's descendants.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the first node with the given id, or nil.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Copy returns a fresh node with the same fields and no children.
// Attributes are copied so the result never shares a map with n.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	out := &Node{ID: n.ID, Name: n.Name}
	if n.Attributes != nil {
		out.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// Clone deep-copies the subtree rooted at n.
func (n *Node) Clone() *Node {
	return n.CloneDepth(-1)
}

// CloneDepth deep-copies n and its descendants down to maxDepth levels below
// it. A negative maxDepth copies the whole subtree.
func (n *Node) CloneDepth(maxDepth int) *Node {
	if n == nil {
		return nil
	}
	out := n.Copy()
	if maxDepth == 0 || len(n.Children) == 0 {
		return out
	}
	out.Children = make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		out.Children = append(out.Children, c.CloneDepth(maxDepth-1))
	}
	return out
}

// IDs returns every id in the subtree in pre-order.
func (n *Node) IDs() []string {
	ids := make([]string, 0, n.Count())
	n.Walk(func(node *Node, _ int) bool {
		ids = append(ids, node.ID)
		return true
	})
	return ids
}
