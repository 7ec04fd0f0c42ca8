package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

const freeplaneDoc = `<?xml version="1.0" encoding="UTF-8"?>
<map version="freeplane 1.9.13">
<!--To view this file, download free mind mapping software Freeplane from https://www.freeplane.org -->
<node TEXT="Project" ID="ID_root" CREATED="1700000000000" MODIFIED="1700000000001">
  <font BOLD="true"/>
  <hook NAME="MapStyle"/>
  <node TEXT="Design" POSITION="right" ID="ID_design">
    <edge COLOR="#ff0000"/>
    <attribute NAME="owner" VALUE="ana"/>
  </node>
  <node TEXT="Build" POSITION="right" ID="ID_build">
    <node ID="ID_testing">
      <richcontent TYPE="NODE"><html><head></head><body><p>Testing &amp;   <b>QA</b>&nbsp;plan</p></body></html></richcontent>
    </node>
    <node TEXT="Release"/>
  </node>
</node>
</map>`

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestParse_Freeplane(t *testing.T) {
	root, err := ParseWithOptions(strings.NewReader(freeplaneDoc), FormatMindMap, ParseOptions{NewID: counterIDs()})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if root.ID != "ID_root" || root.Name != "Project" {
		t.Errorf("unexpected root %q %q", root.ID, root.Name)
	}
	if root.Attributes["CREATED"] != "1700000000000" {
		t.Errorf("expected XML attributes copied, got %v", root.Attributes)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected only <node> children, got %d", len(root.Children))
	}

	design := root.Children[0]
	if design.Attributes["owner"] != "ana" || design.Attributes["POSITION"] != "right" {
		t.Errorf("expected attribute rows merged, got %v", design.Attributes)
	}
	if design.HasChildren() {
		t.Error("expected design to be a leaf")
	}

	build := root.Children[1]
	qa := build.Children[0]
	if qa.Name != "Testing & QA plan" {
		t.Errorf("expected rich content text, got %q", qa.Name)
	}
	if release := build.Children[1]; release.ID != "gen-1" || release.Name != "Release" {
		t.Errorf("expected generated id, got %q %q", release.ID, release.Name)
	}
}

func TestParse_FreeplaneTextWinsOverRichContent(t *testing.T) {
	doc := `<map><node TEXT="plain" ID="x"><richcontent TYPE="NODE"><html><body>rich</body></html></richcontent></node></map>`
	root, err := ParseMindMap(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != "plain" {
		t.Errorf("expected TEXT attribute to win, got %q", root.Name)
	}
}

func TestParse_GeneratedIDsAreUnique(t *testing.T) {
	doc := `<map><node TEXT="a"><node TEXT="b"/><node TEXT="c"/></node></map>`
	root, err := Parse(strings.NewReader(doc), FormatAuto)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, id := range root.IDs() {
		if !strings.HasPrefix(id, GeneratedIDPrefix) {
			t.Errorf("expected generated id prefix, got %q", id)
		}
		if seen[id] {
			t.Errorf("duplicate generated id %q", id)
		}
		seen[id] = true
	}
}

func TestParse_DuplicateIDsRegenerated(t *testing.T) {
	doc := `<map><node TEXT="a" ID="same"><node TEXT="b" ID="same"/></node></map>`
	var warnings []string
	root, err := ParseWithOptions(strings.NewReader(doc), FormatMindMap, ParseOptions{
		NewID:          counterIDs(),
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatal(err)
	}
	child := root.Children[0]
	if child.ID != "gen-1" || child.Attributes["ID"] != "same" {
		t.Errorf("expected regenerated id with original kept, got %q %v", child.ID, child.Attributes)
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
		want   error
	}{
		{"not a map", `<foo><node TEXT="x"/></foo>`, FormatMindMap, ErrNotMindMap},
		{"empty map", `<map version="1.0"></map>`, FormatMindMap, ErrNoRoot},
		{"unknown", `hello world`, FormatAuto, ErrUnsupportedFormat},
		{"empty opml", `<opml><head/><body/></opml>`, FormatOPML, ErrNoRoot},
		{"null json", `null`, FormatJSON, ErrNoRoot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(strings.NewReader(tt.doc), tt.format)
			if root != nil {
				t.Errorf("expected no tree, got %v", root.IDs())
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			var ie *ImportError
			if !errors.As(err, &ie) {
				t.Errorf("expected *ImportError, got %T", err)
			}
		})
	}
}

func TestParse_MalformedXML(t *testing.T) {
	for _, doc := range []string{
		`<map><node TEXT="unterminated"`,
		`<map><node TEXT="a"></map>`,
		``,
	} {
		root, err := Parse(strings.NewReader(doc), FormatMindMap)
		if err == nil || root != nil {
			t.Errorf("expected failure for %q", doc)
		}
	}
}

func TestParse_OPML(t *testing.T) {
	single := `<?xml version="1.0"?><opml version="2.0"><head><title>Plan</title></head><body>
<outline text="Project" id="p"><outline text="Design"/><outline title="Build"><outline text="Testing"/></outline></outline>
</body></opml>`
	root, err := Parse(strings.NewReader(single), FormatAuto)
	if err != nil {
		t.Fatal(err)
	}
	if root.ID != "p" || root.Name != "Project" || root.Count() != 4 {
		t.Errorf("unexpected outline tree %q %q %d", root.ID, root.Name, root.Count())
	}
	if root.Children[1].Name != "Build" {
		t.Errorf("expected title fallback, got %q", root.Children[1].Name)
	}

	multi := `<opml><head><title>  Two   roots </title></head><body><outline text="a"/><outline text="b"/></body></opml>`
	root, err = ParseOPML(strings.NewReader(multi))
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != "Two roots" || len(root.Children) != 2 {
		t.Errorf("expected synthetic root, got %q with %d children", root.Name, len(root.Children))
	}
}

func TestParse_JSON(t *testing.T) {
	doc := `{"id": 1, "name": "Project", "attributes": {"k": "v"}, "children": [
		{"id": "a", "name": "Design"},
		{"text": "Build", "children": [{"id": 3, "name": ""}]}
	]}`
	root, err := ParseWithOptions(strings.NewReader(doc), FormatAuto, ParseOptions{NewID: counterIDs()})
	if err != nil {
		t.Fatal(err)
	}
	if root.ID != "1" || root.Attributes["k"] != "v" {
		t.Errorf("unexpected root %+v", root)
	}
	build := root.Children[1]
	if build.Name != "Build" || build.ID != "gen-1" {
		t.Errorf("expected text fallback and generated id, got %q %q", build.Name, build.ID)
	}
	if build.Children[0].ID != "3" || build.Children[0].Name != "" {
		t.Errorf("expected numeric id and empty name, got %+v", build.Children[0])
	}
}

func TestSniffAndFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"\xEF\xBB\xBF<map>":         FormatMindMap,
		"  {\"name\": \"x\"}":       FormatJSON,
		"<?xml?>\n<opml><body/>":    FormatOPML,
		"plain text":                FormatAuto,
	}
	for in, want := range cases {
		if got := Sniff([]byte(in)); got != want {
			t.Errorf("Sniff(%q) = %q, want %q", in, got, want)
		}
	}
	if FormatFromPath("x/Plan.MM") != FormatMindMap || FormatFromPath("a.opml") != FormatOPML || FormatFromPath("a.txt") != FormatAuto {
		t.Error("unexpected extension mapping")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.mm")
	if err := os.WriteFile(path, []byte(freeplaneDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	root, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if root.Count() != 5 {
		t.Errorf("expected 5 nodes, got %d", root.Count())
	}

	bad := filepath.Join(dir, "bad.mm")
	if err := os.WriteFile(bad, []byte("<map>"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(bad)
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Path != bad {
		t.Errorf("expected import error naming %s, got %v", bad, err)
	}

	_, err = Load(filepath.Join(dir, "missing.mm"))
	if !errors.As(err, &ie) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped not-exist error, got %v", err)
	}
}

func TestParse_SizeLimit(t *testing.T) {
	_, err := ParseWithOptions(strings.NewReader(freeplaneDoc), FormatMindMap, ParseOptions{MaxBytes: 16})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestParse_NeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.SampledFrom([]string{"", "<map>", "<map><node TEXT=\"a\">", "<opml><body>", "{\"children\":["}).Draw(t, "prefix")
		noise := rapid.SliceOf(rapid.Byte()).Draw(t, "noise")
		format := rapid.SampledFrom([]Format{FormatAuto, FormatMindMap, FormatOPML, FormatJSON}).Draw(t, "format")

		root, err := Parse(strings.NewReader(prefix+string(noise)), format)
		if err == nil && root == nil {
			t.Fatal("expected either a tree or an error")
		}
		if err != nil {
			var ie *ImportError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *ImportError, got %T", err)
			}
		}
	})
}
