// Package testutil provides mind-map fixtures and assertions for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vanderheijden86/mindview/pkg/model"
)

// GeneratorConfig controls tree generation.
type GeneratorConfig struct {
	Seed     int64    // random seed (0 = 42)
	IDPrefix string   // prefix for node ids (default: "n")
	Words    []string // vocabulary for labels (nil = built-in)
}

var defaultWords = []string{
	"plan", "design", "build", "test", "release", "review", "research",
	"budget", "hiring", "roadmap", "launch", "support", "docs", "metrics",
	"security", "backlog", "retro", "demo", "feedback", "ops",
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, IDPrefix: "n", Words: defaultWords}
}

// Generator creates mind maps of various shapes. Ids are the prefix
// followed by the pre-order index, so they are unique within one tree.
type Generator struct {
	cfg  GeneratorConfig
	rng  *rand.Rand
	next int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "n"
	}
	if len(cfg.Words) == 0 {
		cfg.Words = defaultWords
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) node(name string) *model.Node {
	n := &model.Node{ID: fmt.Sprintf("%s%d", g.cfg.IDPrefix, g.next), Name: name}
	g.next++
	return n
}

func (g *Generator) label(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = g.cfg.Words[g.rng.Intn(len(g.cfg.Words))]
	}
	return strings.Join(parts, " ")
}

// Balanced creates a complete tree: every node above depth has fanout
// children. depth 0 is a single node.
func (g *Generator) Balanced(depth, fanout int) *model.Node {
	g.next = 0
	var build func(level int, name string) *model.Node
	build = func(level int, name string) *model.Node {
		n := g.node(name)
		if level < depth {
			for i := 0; i < fanout; i++ {
				n.Children = append(n.Children, build(level+1, fmt.Sprintf("%s.%d", name, i)))
			}
		}
		return n
	}
	return build(0, "root")
}

// Chain creates a path of n nodes, each the only child of the previous one.
func (g *Generator) Chain(n int) *model.Node {
	g.next = 0
	if n < 1 {
		return nil
	}
	root := g.node("step 0")
	cur := root
	for i := 1; i < n; i++ {
		c := g.node(fmt.Sprintf("step %d", i))
		cur.Children = []*model.Node{c}
		cur = c
	}
	return root
}

// Star creates a root with n-1 leaf children, n nodes in total.
func (g *Generator) Star(n int) *model.Node {
	g.next = 0
	if n < 1 {
		return nil
	}
	root := g.node("hub")
	for i := 1; i < n; i++ {
		root.Children = append(root.Children, g.node(fmt.Sprintf("spoke %d", i)))
	}
	return root
}

// Random creates a tree of n nodes where each new node hangs under a
// uniformly chosen earlier node. Labels are one to four random words.
func (g *Generator) Random(n int) *model.Node {
	g.next = 0
	if n < 1 {
		return nil
	}
	nodes := make([]*model.Node, 0, n)
	nodes = append(nodes, g.node(g.label(1)))
	for len(nodes) < n {
		parent := nodes[g.rng.Intn(len(nodes))]
		c := g.node(g.label(1 + g.rng.Intn(4)))
		if g.rng.Intn(4) == 0 {
			c.Attributes = map[string]string{"priority": fmt.Sprint(1 + g.rng.Intn(3))}
		}
		parent.Children = append(parent.Children, c)
		nodes = append(nodes, c)
	}
	return nodes[0]
}

// Sample returns the small project map used across tests:
//
//	Project (root)
//	├── Design (a)
//	└── Build (b)
//	    └── Testing (c)
func Sample() *model.Node {
	return &model.Node{ID: "root", Name: "Project", Children: []*model.Node{
		{ID: "a", Name: "Design"},
		{ID: "b", Name: "Build", Children: []*model.Node{
			{ID: "c", Name: "Testing"},
		}},
	}}
}

// QuickBalanced creates a balanced tree with default settings.
func QuickBalanced(depth, fanout int) *model.Node {
	return NewDefault().Balanced(depth, fanout)
}

// QuickRandom creates a random tree with default settings.
func QuickRandom(n int) *model.Node {
	return NewDefault().Random(n)
}
