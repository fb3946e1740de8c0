// Package cleanup removes previously built artifacts from the installation
// layout. Removal is best-effort by policy: missing paths are skipped
// silently and filesystem errors are logged and discarded, never propagated.
package cleanup

import (
	"log/slog"
	"os"

	"github.com/craylabs/smartbuild/internal/layout"
	"github.com/craylabs/smartbuild/internal/logfields"
)

// Scope selects how much of the layout is removed.
type Scope int

const (
	// Selective removes the staging tree and the AI-extension artifacts,
	// leaving the server executables and IP extension in place.
	Selective Scope = iota
	// Full additionally removes the IP extension and the server executables.
	Full
)

// String implements fmt.Stringer.
func (s Scope) String() string {
	if s == Full {
		return "full"
	}
	return "selective"
}

// Clean removes artifacts from the layout according to scope and returns the
// paths that were actually removed. It never returns an error.
func Clean(lay layout.Layout, scope Scope) []string {
	targets := []string{
		lay.StagingDir(),
		lay.AIExtension(),
		lay.BackendsDir(),
	}
	if scope == Full {
		targets = append(targets,
			lay.IPExtension(),
			lay.ServerBinary(),
			lay.CLIBinary(),
		)
	}

	var removed []string
	for _, path := range targets {
		if _, err := os.Lstat(path); err != nil {
			continue // absent, nothing to report
		}
		if err := os.RemoveAll(path); err != nil {
			slog.Warn("Failed to remove artifact", logfields.Path(path), logfields.Error(err))
			continue
		}
		slog.Info("Removed artifact", logfields.Path(path), logfields.Scope(scope.String()))
		removed = append(removed, path)
	}
	return removed
}
