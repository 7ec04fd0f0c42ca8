package loader

import (
	"bytes"
	"encoding/xml"

	"github.com/vanderheijden86/mindview/pkg/model"
)

type opmlDoc struct {
	XMLName xml.Name `xml:"opml"`
	Title   string   `xml:"head>title"`
	Body    struct {
		Outlines []opmlOutline `xml:"outline"`
	} `xml:"body"`
}

type opmlOutline struct {
	Attrs    []xml.Attr    `xml:",any,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

// parseOPML converts an OPML outline. A body with several top-level
// outlines gets a synthetic root named after the document title.
func parseOPML(data []byte) (*model.Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity

	var doc opmlDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	switch len(doc.Body.Outlines) {
	case 0:
		return nil, ErrNoRoot
	case 1:
		return convertOutline(&doc.Body.Outlines[0]), nil
	}

	root := &model.Node{Name: collapse(doc.Title)}
	for i := range doc.Body.Outlines {
		root.Children = append(root.Children, convertOutline(&doc.Body.Outlines[i]))
	}
	return root, nil
}

func convertOutline(o *opmlOutline) *model.Node {
	n := &model.Node{Attributes: make(map[string]string, len(o.Attrs))}
	for _, a := range o.Attrs {
		n.Attributes[a.Name.Local] = a.Value
	}
	n.ID = n.Attributes["id"]
	n.Name = n.Attributes["text"]
	if n.Name == "" {
		n.Name = n.Attributes["title"]
	}
	n.Name = collapse(n.Name)
	for i := range o.Outlines {
		n.Children = append(n.Children, convertOutline(&o.Outlines[i]))
	}
	return n
}
