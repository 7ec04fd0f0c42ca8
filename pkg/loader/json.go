package loader

import (
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/mindview/pkg/model"
)

// jsonNode mirrors model.Node but tolerates numeric ids and a "text" label.
type jsonNode struct {
	ID         flexID            `json:"id"`
	Name       *string           `json:"name"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes"`
	Children   []*jsonNode       `json:"children"`
}

// flexID accepts both string and numeric ids.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	*f = flexID(b)
	return nil
}

func parseJSON(data []byte) (*model.Node, error) {
	var doc *jsonNode
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNoRoot
	}
	return convertJSON(doc), nil
}

func convertJSON(j *jsonNode) *model.Node {
	n := &model.Node{ID: string(j.ID), Attributes: j.Attributes}
	if j.Name != nil {
		n.Name = *j.Name
	} else {
		n.Name = j.Text
	}
	for _, c := range j.Children {
		if c != nil {
			n.Children = append(n.Children, convertJSON(c))
		}
	}
	return n
}
