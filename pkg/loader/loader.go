// Package loader imports mind-map documents into a model tree.
//
// Supported formats are Freeplane/FreeMind (.mm), OPML outlines (.opml) and
// the d3 hierarchy JSON shape ({id, name, attributes, children}). Malformed
// input is reported as an *ImportError and never panics.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vanderheijden86/mindview/pkg/debug"
	"github.com/vanderheijden86/mindview/pkg/metrics"
	"github.com/vanderheijden86/mindview/pkg/model"
)

// Format names a supported document format.
type Format string

const (
	FormatAuto    Format = ""
	FormatMindMap Format = "mm"
	FormatOPML    Format = "opml"
	FormatJSON    Format = "json"
)

// GeneratedIDPrefix starts every id made up by the loader.
const GeneratedIDPrefix = "genid-"

// Common errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNotMindMap        = errors.New("no <map> element found")
	ErrNoRoot            = errors.New("document has no root node")
	ErrTooLarge          = errors.New("document exceeds size limit")
)

// DefaultMaxBytes caps how much of a document is read (64MB).
const DefaultMaxBytes = 64 << 20

// ImportError wraps a failure to turn a document into a tree.
type ImportError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ImportError) Error() string {
	where := e.Path
	if where == "" {
		where = "input"
	}
	if e.Format != FormatAuto {
		return fmt.Sprintf("importing %s (%s): %v", where, e.Format, e.Err)
	}
	return fmt.Sprintf("importing %s: %v", where, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// ParseOptions configures parsing.
type ParseOptions struct {
	// WarningHandler receives non-fatal problems such as duplicate ids.
	// If nil, warnings go to the debug log.
	WarningHandler func(string)

	// NewID generates ids for nodes that lack one. Defaults to
	// "genid-" followed by a random UUID.
	NewID func() string

	// MaxBytes limits the document size. 0 means DefaultMaxBytes.
	MaxBytes int64
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.WarningHandler == nil {
		o.WarningHandler = func(msg string) { debug.Log("loader: %s", msg) }
	}
	if o.NewID == nil {
		o.NewID = func() string { return GeneratedIDPrefix + uuid.NewString() }
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	return o
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mm", ".xml":
		return FormatMindMap
	case ".opml":
		return FormatOPML
	case ".json":
		return FormatJSON
	}
	return FormatAuto
}

// Sniff guesses the format from the start of a document.
func Sniff(data []byte) Format {
	head := bytes.TrimSpace(stripBOM(data))
	if len(head) > 4096 {
		head = head[:4096]
	}
	switch {
	case bytes.HasPrefix(head, []byte("{")):
		return FormatJSON
	case bytes.Contains(head, []byte("<opml")):
		return FormatOPML
	case bytes.Contains(head, []byte("<map")):
		return FormatMindMap
	}
	return FormatAuto
}

// Load reads and parses the document at path.
func Load(path string) (*model.Node, error) {
	return LoadWithOptions(path, ParseOptions{})
}

// LoadWithOptions reads and parses the document at path with custom options.
func LoadWithOptions(path string, opts ParseOptions) (*model.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ImportError{Path: path, Err: fmt.Errorf("failed to open mind map: %w", err)}
	}
	defer file.Close()

	root, err := ParseWithOptions(file, FormatFromPath(path), opts)
	if err != nil {
		var ie *ImportError
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return nil, err
	}
	return root, nil
}

// Parse reads a document of the given format; FormatAuto sniffs it.
func Parse(r io.Reader, format Format) (*model.Node, error) {
	return ParseWithOptions(r, format, ParseOptions{})
}

// ParseMindMap reads a Freeplane/FreeMind document.
func ParseMindMap(r io.Reader) (*model.Node, error) {
	return ParseWithOptions(r, FormatMindMap, ParseOptions{})
}

// ParseOPML reads an OPML outline.
func ParseOPML(r io.Reader) (*model.Node, error) {
	return ParseWithOptions(r, FormatOPML, ParseOptions{})
}

// ParseJSON reads a d3 hierarchy document.
func ParseJSON(r io.Reader) (*model.Node, error) {
	return ParseWithOptions(r, FormatJSON, ParseOptions{})
}

// ParseWithOptions is Parse with custom options.
func ParseWithOptions(r io.Reader, format Format, opts ParseOptions) (root *model.Node, err error) {
	defer metrics.Timer(metrics.Import)()
	opts = opts.withDefaults()

	defer func() {
		// a parser bug must degrade to an import failure, not a crash
		if p := recover(); p != nil {
			root = nil
			err = &ImportError{Format: format, Err: fmt.Errorf("parser panic: %v", p)}
		}
	}()

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return nil, &ImportError{Format: format, Err: fmt.Errorf("reading document: %w", err)}
	}
	if int64(len(data)) > opts.MaxBytes {
		return nil, &ImportError{Format: format, Err: ErrTooLarge}
	}
	data = stripBOM(data)

	if format == FormatAuto {
		format = Sniff(data)
	}
	switch format {
	case FormatMindMap:
		root, err = parseMindMap(data)
	case FormatOPML:
		root, err = parseOPML(data)
	case FormatJSON:
		root, err = parseJSON(data)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, &ImportError{Format: format, Err: err}
	}
	if root == nil {
		return nil, &ImportError{Format: format, Err: ErrNoRoot}
	}

	assignIDs(root, opts)
	debug.Log("loader: parsed %s document with %d nodes", format, root.Count())
	return root, nil
}

// assignIDs fills missing ids and replaces repeated ones so ids are unique
// within the tree.
func assignIDs(root *model.Node, opts ParseOptions) {
	seen := make(map[string]bool)
	root.Walk(func(n *model.Node, _ int) bool {
		switch {
		case n.ID == "":
			n.ID = opts.NewID()
		case seen[n.ID]:
			opts.WarningHandler(fmt.Sprintf("duplicate node id %q regenerated", n.ID))
			if n.Attributes == nil {
				n.Attributes = make(map[string]string, 1)
			}
			if _, ok := n.Attributes["ID"]; !ok {
				n.Attributes["ID"] = n.ID
			}
			n.ID = opts.NewID()
		}
		seen[n.ID] = true
		return true
	})
}

func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

// collapse joins whitespace runs into single spaces and trims.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
