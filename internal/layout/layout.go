// Package layout describes the on-disk installation layout the build pipeline
// writes into and the cleanup command removes from.
//
// The layout under an installation root is fixed:
//
//	lib/              shared libraries (redisai.so, libredisip.so)
//	lib/backends/     per-backend AI runtime trees
//	bin/              server executables (redis-server, redis-cli)
//	.third-party/     staging area for intermediate build trees
//
// The layout is durable across invocations but carries no versioning or
// locking; concurrent invocations against the same root are unsupported.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names within the layout.
const (
	AIExtensionName = "redisai.so"
	IPExtensionName = "libredisip.so"
	ServerBinName   = "redis-server"
	CLIBinName      = "redis-cli"

	libDirName     = "lib"
	binDirName     = "bin"
	backendsName   = "backends"
	stagingDirName = ".third-party"
)

// Layout is a value describing the installation tree under Root.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root.
func New(root string) Layout {
	return Layout{Root: root}
}

// LibDir returns the shared-library directory.
func (l Layout) LibDir() string { return filepath.Join(l.Root, libDirName) }

// BinDir returns the server-executable directory.
func (l Layout) BinDir() string { return filepath.Join(l.Root, binDirName) }

// StagingDir returns the intermediate build-tree directory.
func (l Layout) StagingDir() string { return filepath.Join(l.Root, stagingDirName) }

// BackendsDir returns the AI backends directory under lib/.
func (l Layout) BackendsDir() string { return filepath.Join(l.LibDir(), backendsName) }

// AIExtension returns the path of the primary AI-extension artifact.
func (l Layout) AIExtension() string { return filepath.Join(l.LibDir(), AIExtensionName) }

// IPExtension returns the path of the IP-extension artifact.
func (l Layout) IPExtension() string { return filepath.Join(l.LibDir(), IPExtensionName) }

// ServerBinary returns the path of the key-value server executable.
func (l Layout) ServerBinary() string { return filepath.Join(l.BinDir(), ServerBinName) }

// CLIBinary returns the path of the key-value CLI executable.
func (l Layout) CLIBinary() string { return filepath.Join(l.BinDir(), CLIBinName) }

// EnsureBuildDirs creates the directories the build stages write into
// (lib/ and the staging area) if they do not yet exist.
func (l Layout) EnsureBuildDirs() error {
	for _, dir := range []string{l.LibDir(), l.StagingDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create build directory %s: %w", dir, err)
		}
	}
	return nil
}
