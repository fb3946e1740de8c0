package commands

import (
	"time"

	"github.com/google/uuid"

	"github.com/craylabs/smartbuild/internal/cleanup"
	"github.com/craylabs/smartbuild/internal/history"
)

// CleanCmd removes the staging area and AI-extension artifacts.
type CleanCmd struct{}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	return runClean(root, "clean", cleanup.Selective)
}

// ClobberCmd removes everything the build pipeline produces.
type ClobberCmd struct{}

func (c *ClobberCmd) Run(_ *Global, root *CLI) error {
	return runClean(root, "clobber", cleanup.Full)
}

func runClean(root *CLI, command string, scope cleanup.Scope) error {
	bctx, err := root.loadContext()
	if err != nil {
		return err
	}

	started := time.Now()
	removed := cleanup.Clean(bctx.lay, scope)
	reportRemovals(removed)

	recordHistory(bctx.lay, history.Record{
		RunID:     uuid.NewString(),
		Command:   command,
		Outcome:   history.OutcomeSuccess,
		Duration:  time.Since(started),
		StartedAt: started,
	})
	return nil
}
