package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/mindview/pkg/model"
	"github.com/vanderheijden86/mindview/pkg/testutil"
)

func TestBuildRows_Prefixes(t *testing.T) {
	root := &model.Node{ID: "r", Name: "Root", Children: []*model.Node{
		{ID: "a", Name: "A", Children: []*model.Node{
			{ID: "a1", Name: "A1"},
			{ID: "a2", Name: "A2"},
		}},
		{ID: "b", Name: "B", Children: []*model.Node{
			{ID: "b1", Name: "B1"},
		}},
	}}

	rows := BuildRows(root, "")
	want := []string{
		"Root",
		"├── A",
		"│   ├── A1",
		"│   └── A2",
		"└── B",
		"    └── B1",
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, r := range rows {
		if got := r.Prefix + r.Label(); got != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got)
		}
	}
	if rows[2].Depth != 2 {
		t.Errorf("expected depth 2, got %d", rows[2].Depth)
	}
}

func TestBuildRows_Matches(t *testing.T) {
	rows := BuildRows(testutil.Sample(), "BUILD")
	var matched []string
	for _, r := range rows {
		if r.Match {
			matched = append(matched, r.Node.ID)
		}
	}
	if len(matched) != 1 || matched[0] != "b" {
		t.Errorf("expected only b to match, got %v", matched)
	}
	if BuildRows(nil, "") != nil {
		t.Error("expected no rows for a nil tree")
	}
}

func TestRowLabel_Untitled(t *testing.T) {
	r := Row{Node: &model.Node{ID: "x", Name: "  \n "}}
	if r.Label() != untitled {
		t.Errorf("expected %q, got %q", untitled, r.Label())
	}
	r = Row{Node: &model.Node{ID: "x", Name: "two\nlines"}}
	if r.Label() != "two lines" {
		t.Errorf("expected whitespace collapsed, got %q", r.Label())
	}
}

func TestRenderRows_Truncates(t *testing.T) {
	theme := DefaultTheme(lipgloss.NewRenderer(nil))
	root := &model.Node{ID: "r", Name: "Root", Children: []*model.Node{
		{ID: "a", Name: "A rather long label that will not fit"},
	}}
	lines := RenderRows(BuildRows(root, ""), "", 16, -1, theme)
	got := stripANSI(lines[1])
	if !strings.HasPrefix(got, "└── A rather") {
		t.Errorf("unexpected row %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected truncation tail, got %q", got)
	}
	if w := lipgloss.Width(got); w > 16 {
		t.Errorf("expected at most 16 columns, got %d", w)
	}
}

func TestRenderRows_Styles(t *testing.T) {
	theme := DefaultTheme(lipgloss.NewRenderer(nil))
	rows := BuildRows(testutil.Sample(), "test")
	lines := RenderRows(rows, "test", 80, 0, theme)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if got := stripANSI(lines[3]); got != "    └── Testing" {
		t.Errorf("unexpected row %q", got)
	}
}
