package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/gookit/color"

	"github.com/craylabs/smartbuild/internal/config"
	"github.com/craylabs/smartbuild/internal/history"
	"github.com/craylabs/smartbuild/internal/layout"
	"github.com/craylabs/smartbuild/internal/logfields"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"smartbuild.yaml"`
	Prefix  string           `short:"p" help:"Installation root directory (overrides SMARTBUILD_HOME)"`
	Verbose bool             `short:"v" help:"Enable verbose logging and stream build output"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the key-value server, IP extension and AI extension"`
	Clean   CleanCmd   `cmd:"" help:"Remove AI-extension artifacts and the staging area"`
	Clobber ClobberCmd `cmd:"" help:"Remove all built artifacts, including server executables"`
	Env     EnvCmd     `cmd:"" help:"Report detected platform, resolved options and script availability"`
	Site    SiteCmd    `cmd:"" help:"Print the installation layout paths"`
	History HistoryCmd `cmd:"" help:"Show recent build and clean invocations"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// Console status colors, kept apart from the structured slog channel.
var (
	colArrow   = color.FgCyan
	colSuccess = color.FgGreen
	colWarn    = color.FgYellow
)

func statusLine(c color.Color, msg string) {
	colArrow.Print("-> ")
	c.Println(msg)
}

// buildContext bundles what every command needs: the optional config file,
// the installation layout and the build-script directory.
type buildContext struct {
	file       *config.File
	lay        layout.Layout
	scriptsDir string
}

func (c *CLI) loadContext() (*buildContext, error) {
	file, err := config.LoadFile(c.Config)
	if err != nil {
		return nil, err
	}
	root, scriptsDir := config.ResolvePaths(c.Prefix, os.LookupEnv, file)
	return &buildContext{
		file:       file,
		lay:        layout.New(root),
		scriptsDir: scriptsDir,
	}, nil
}

// historyPath locates the invocation ledger under the installation root.
func historyPath(lay layout.Layout) string {
	return filepath.Join(lay.Root, ".smartbuild-history.db")
}

// recordHistory appends one ledger record. Failures are logged and
// discarded; bookkeeping never fails a build or clean.
func recordHistory(lay layout.Layout, rec history.Record) {
	store, err := history.Open(historyPath(lay))
	if err != nil {
		slog.Warn("Could not open build history", logfields.Error(err))
		return
	}
	defer store.Close()

	if err := store.Append(context.Background(), rec); err != nil {
		slog.Warn("Could not record build history", logfields.Error(err))
	}
}
