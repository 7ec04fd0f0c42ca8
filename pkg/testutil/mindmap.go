package testutil

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/vanderheijden86/mindview/pkg/model"
)

type xmlMap struct {
	XMLName xml.Name `xml:"map"`
	Version string   `xml:"version,attr"`
	Root    *xmlNode `xml:"node"`
}

type xmlNode struct {
	ID         string         `xml:"ID,attr,omitempty"`
	Text       string         `xml:"TEXT,attr"`
	Attributes []xmlAttribute `xml:"attribute"`
	Children   []*xmlNode     `xml:"node"`
}

type xmlAttribute struct {
	Name  string `xml:"NAME,attr"`
	Value string `xml:"VALUE,attr"`
}

func toXML(n *model.Node) *xmlNode {
	x := &xmlNode{ID: n.ID, Text: n.Name}
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		if k != "ID" && k != "TEXT" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		x.Attributes = append(x.Attributes, xmlAttribute{Name: k, Value: n.Attributes[k]})
	}
	for _, c := range n.Children {
		x.Children = append(x.Children, toXML(c))
	}
	return x
}

// MindMapXML serializes root as a Freeplane document.
func MindMapXML(root *model.Node) ([]byte, error) {
	out, err := xml.MarshalIndent(xmlMap{Version: "freeplane 1.9.13", Root: toXML(root)}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// WriteMindMap writes root to dir/map.mm and returns the path.
func WriteMindMap(t testing.TB, dir string, root *model.Node) string {
	t.Helper()
	return WriteMindMapNamed(t, dir, "map.mm", root)
}

// WriteMindMapNamed writes root to dir/name and returns the path.
func WriteMindMapNamed(t testing.TB, dir, name string, root *model.Node) string {
	t.Helper()
	data, err := MindMapXML(root)
	if err != nil {
		t.Fatalf("marshal mind map: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write mind map: %v", err)
	}
	return path
}
