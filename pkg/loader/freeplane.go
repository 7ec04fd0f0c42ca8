package loader

import (
	"bytes"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html"

	"github.com/vanderheijden86/mindview/pkg/model"
)

type mmMap struct {
	XMLName xml.Name `xml:"map"`
	Nodes   []mmNode `xml:"node"`
}

type mmNode struct {
	Attrs      []xml.Attr    `xml:",any,attr"`
	Nodes      []mmNode      `xml:"node"`
	Rich       []mmRich      `xml:"richcontent"`
	Attributes []mmAttribute `xml:"attribute"`
}

// mmRich is <richcontent>. FreeMind writes TYPE="NODE"; some exporters write
// type="html".
type mmRich struct {
	Type      string `xml:"TYPE,attr"`
	LowerType string `xml:"type,attr"`
	Inner     []byte `xml:",innerxml"`
}

// mmAttribute is a Freeplane key/value attribute row.
type mmAttribute struct {
	Name  string `xml:"NAME,attr"`
	Value string `xml:"VALUE,attr"`
}

func (r mmRich) isNodeText() bool {
	t := strings.ToLower(r.Type + r.LowerType)
	return t == "node" || t == "html"
}

// parseMindMap converts a Freeplane/FreeMind document. The tree root is the
// first <node> under <map>.
func parseMindMap(data []byte) (*model.Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity

	var doc mmMap
	if err := dec.Decode(&doc); err != nil {
		if _, ok := err.(xml.UnmarshalError); ok || strings.Contains(err.Error(), "expected element type <map>") {
			return nil, ErrNotMindMap
		}
		return nil, err
	}
	if len(doc.Nodes) == 0 {
		return nil, ErrNoRoot
	}
	return convertMMNode(&doc.Nodes[0]), nil
}

func convertMMNode(x *mmNode) *model.Node {
	n := &model.Node{Attributes: make(map[string]string, len(x.Attrs))}
	for _, a := range x.Attrs {
		n.Attributes[a.Name.Local] = a.Value
	}
	n.ID = n.Attributes["ID"]
	n.Name = n.Attributes["TEXT"]

	if n.Name == "" {
		for _, r := range x.Rich {
			if r.isNodeText() {
				n.Name = htmlText(r.Inner)
				break
			}
		}
	}
	for _, a := range x.Attributes {
		if a.Name == "" {
			continue
		}
		if _, taken := n.Attributes[a.Name]; !taken {
			n.Attributes[a.Name] = a.Value
		}
	}

	if len(x.Nodes) > 0 {
		n.Children = make([]*model.Node, 0, len(x.Nodes))
		for i := range x.Nodes {
			n.Children = append(n.Children, convertMMNode(&x.Nodes[i]))
		}
	}
	return n
}

// htmlText returns the visible text of an HTML fragment with whitespace
// collapsed.
func htmlText(fragment []byte) string {
	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return ""
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if n.Data == "head" || n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return collapse(b.String())
}
