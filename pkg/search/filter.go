// Package search narrows a mind map to the branches whose labels contain a query.
package search

import (
	"strings"

	"github.com/vanderheijden86/mindview/pkg/metrics"
	"github.com/vanderheijden86/mindview/pkg/model"
)

// Normalize trims the query and lower-cases it for matching.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches reports whether name contains the query, case-insensitively.
// An empty query matches nothing.
func Matches(name, query string) bool {
	q := Normalize(query)
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), q)
}

// Filter returns the part of root relevant to query.
//
// A node whose name contains the query is kept together with its descendants
// down to maxDepth levels below it. A node that does not match is kept only
// when one of its children survives, and then only with those children.
// Every returned node is a fresh copy; root is never modified.
//
// A blank query returns root itself. Filter returns nil when nothing matches.
func Filter(root *model.Node, query string, maxDepth int) *model.Node {
	if root == nil {
		return nil
	}
	q := Normalize(query)
	if q == "" {
		return root
	}
	defer metrics.Timer(metrics.Filter)()

	if maxDepth < 0 {
		maxDepth = 0
	}
	return filter(root, q, maxDepth)
}

func filter(n *model.Node, q string, maxDepth int) *model.Node {
	if strings.Contains(strings.ToLower(n.Name), q) {
		return n.CloneDepth(maxDepth)
	}

	var kept []*model.Node
	for _, c := range n.Children {
		if fc := filter(c, q, maxDepth); fc != nil {
			kept = append(kept, fc)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	out := n.Copy()
	out.Children = kept
	return out
}

// MatchCount returns how many nodes in root match query on their own.
func MatchCount(root *model.Node, query string) int {
	q := Normalize(query)
	if q == "" || root == nil {
		return 0
	}
	count := 0
	root.Walk(func(n *model.Node, _ int) bool {
		if strings.Contains(strings.ToLower(n.Name), q) {
			count++
		}
		return true
	})
	return count
}

// Paths returns the id path from root to every self-matching node, in
// pre-order.
func Paths(root *model.Node, query string) [][]string {
	q := Normalize(query)
	if q == "" || root == nil {
		return nil
	}
	var out [][]string
	var stack []string
	var visit func(n *model.Node)
	visit = func(n *model.Node) {
		stack = append(stack, n.ID)
		if strings.Contains(strings.ToLower(n.Name), q) {
			out = append(out, append([]string(nil), stack...))
		}
		for _, c := range n.Children {
			visit(c)
		}
		stack = stack[:len(stack)-1]
	}
	visit(root)
	return out
}
