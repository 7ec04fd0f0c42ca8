package export

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/mindview/pkg/debug"
)

// SplitPaths flattens repeated, comma-separated path arguments.
func SplitPaths(args ...string) []string {
	var out []string
	for _, a := range args {
		for _, p := range strings.Split(a, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// SaveAll writes opts to every path concurrently, each in the format its
// extension names. The first failure cancels the exports still running.
func SaveAll(ctx context.Context, opts SnapshotOptions, paths ...string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no export paths given")
	}
	seen := make(map[string]bool, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		o := opts
		o.Path = p
		o.Format = ""
		g.Go(func() error {
			if err := SaveSnapshotContext(ctx, o); err != nil {
				return fmt.Errorf("export %s: %w", o.Path, err)
			}
			return nil
		})
	}
	err := g.Wait()
	debug.LogIf(err != nil, "export: batch failed: %v", err)
	return err
}
