// Package export writes mind-map views to files: SVG and PNG diagrams, a
// JSON layout document and a Markdown outline.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/mindview/pkg/debug"
	"github.com/vanderheijden86/mindview/pkg/layout"
	"github.com/vanderheijden86/mindview/pkg/metrics"
	"github.com/vanderheijden86/mindview/pkg/model"
	"github.com/vanderheijden86/mindview/pkg/view"
)

// Format is an output file format.
type Format string

const (
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatJSON, FormatMarkdown}

// Default export viewport.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// ErrNoTree is returned when there is nothing to export.
var ErrNoTree = errors.New("no mind map to export")

// SnapshotOptions controls a single export.
type SnapshotOptions struct {
	Path      string // output path; format inferred from extension when Format is empty
	Format    Format
	Title     string
	Tree      *model.Node
	Query     string
	Algorithm view.Algorithm
	MaxDepth  int // context revealed below a match
	Limit     int // display guard; 0 means the default
	Force     bool
	Width     int
	Height    int
	Layout    layout.Options
}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatSVG, FormatPNG, FormatJSON, FormatMarkdown:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported format %q (want svg, png, json or md)", s)
}

// resolve fills defaults and settles format and path. A path without an
// extension gets one for the format.
func (o SnapshotOptions) resolve() (SnapshotOptions, error) {
	if o.Tree == nil {
		return o, ErrNoTree
	}
	if o.Path == "" {
		return o, fmt.Errorf("output path is required")
	}
	ext := filepath.Ext(o.Path)
	if o.Format == "" {
		if ext == "" {
			o.Format = FormatSVG
		} else {
			f, err := ParseFormat(ext)
			if err != nil {
				return o, err
			}
			o.Format = f
		}
	} else {
		f, err := ParseFormat(string(o.Format))
		if err != nil {
			return o, err
		}
		o.Format = f
	}
	if ext == "" {
		o.Path += "." + string(o.Format)
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Algorithm == "" {
		o.Algorithm = view.AlgorithmTree
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	o.Layout = o.Layout.Normalized()
	return o, nil
}

// SaveSnapshot renders the view described by opts and writes it to
// opts.Path, creating parent directories.
func SaveSnapshot(opts SnapshotOptions) error {
	return SaveSnapshotContext(context.Background(), opts)
}

// SaveSnapshotContext is SaveSnapshot with cancellation of the force layout.
func SaveSnapshotContext(ctx context.Context, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.Export)()

	opts, err := opts.resolve()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(ctx, &buf, opts); err != nil {
		return err
	}
	if err := os.WriteFile(opts.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.Path, err)
	}
	debug.Log("export: wrote %s (%s, %d bytes)", opts.Path, opts.Format, buf.Len())
	return nil
}

// WriteSnapshot renders opts to w. Path is only used to infer the format.
func WriteSnapshot(ctx context.Context, w io.Writer, opts SnapshotOptions) error {
	if opts.Path == "" && opts.Format != "" {
		opts.Path = "snapshot"
	}
	opts, err := opts.resolve()
	if err != nil {
		return err
	}

	fm := NewFontMeasurer()
	mode := view.ModeDiagram
	if opts.Format == FormatMarkdown {
		mode = view.ModeList
	}
	frame, err := RenderFrame(ctx, opts, mode, fm)
	if err != nil {
		return err
	}

	defer metrics.Timer(metrics.Render)()
	switch opts.Format {
	case FormatSVG:
		return renderSVG(w, buildScene(frame, opts))
	case FormatPNG:
		return renderPNG(w, buildScene(frame, opts), fm)
	case FormatJSON:
		return renderJSON(w, frame, opts)
	case FormatMarkdown:
		return renderMarkdown(w, frame, opts)
	}
	return fmt.Errorf("unhandled format %q", opts.Format)
}

// RenderFrame runs filter, guard and layout headlessly. A force layout is
// measured up front and stepped until it settles.
func RenderFrame(ctx context.Context, opts SnapshotOptions, mode view.Mode, m layout.Measurer) (view.Frame, error) {
	vo := view.DefaultOptions()
	vo.Mode = mode
	vo.Algorithm = opts.Algorithm
	vo.FilterMaxDepth = opts.MaxDepth
	vo.Layout = opts.Layout
	if opts.Limit > 0 {
		vo.NodeDisplayLimit = opts.Limit
	}
	if opts.Force {
		vo.NodeDisplayLimit = math.MaxInt
	}

	c := view.New(m, vo)
	c.Resize(float64(opts.Width), float64(opts.Height))
	c.Import(opts.Tree)
	frame := c.SetQuery(opts.Query)

	if frame.Outcome == view.OutcomeReady && frame.Algorithm == view.AlgorithmForce && frame.Layout != nil {
		f, _ := c.MeasureForce(frame.Generation)
		frame = f
		for {
			if err := ctx.Err(); err != nil {
				return frame, err
			}
			f, more := c.Step(frame.Generation)
			if f.Layout != nil {
				frame = f
			}
			if !more {
				break
			}
		}
	}
	return frame, nil
}
