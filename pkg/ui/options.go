package ui

import (
	"github.com/vanderheijden86/mindview/pkg/config"
	"github.com/vanderheijden86/mindview/pkg/layout"
	"github.com/vanderheijden86/mindview/pkg/view"
)

// LayoutOptions maps the configured geometry onto layout options. Unset
// values keep their defaults.
func LayoutOptions(cfg config.Config) layout.Options {
	o := layout.DefaultOptions()
	o.LevelSpacing = cfg.Layout.LevelSpacing
	o.SiblingSpacing = cfg.Layout.SiblingSpacing
	o.TextMaxWidth = cfg.Layout.TextMaxWidth
	o.FontSize = cfg.Layout.FontSize
	return o.Normalized()
}

// ControllerOptions maps a config onto controller settings.
func ControllerOptions(cfg config.Config) view.Options {
	o := view.DefaultOptions()
	if cfg.NodeDisplayLimit > 0 {
		o.NodeDisplayLimit = cfg.NodeDisplayLimit
	}
	if cfg.FilterMaxDepth >= 0 {
		o.FilterMaxDepth = cfg.FilterMaxDepth
	}
	if m, err := view.ParseMode(cfg.Mode); err == nil {
		o.Mode = m
	}
	if a, err := view.ParseAlgorithm(cfg.Algorithm); err == nil {
		o.Algorithm = a
	}
	o.Layout = LayoutOptions(cfg)
	return o
}
