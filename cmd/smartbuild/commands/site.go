package commands

import (
	"fmt"
	"os"
)

// SiteCmd prints the installation layout paths so other tooling can locate
// built artifacts.
type SiteCmd struct{}

func (s *SiteCmd) Run(_ *Global, root *CLI) error {
	bctx, err := root.loadContext()
	if err != nil {
		return err
	}
	lay := bctx.lay

	rows := []struct {
		label string
		path  string
	}{
		{"root", lay.Root},
		{"lib", lay.LibDir()},
		{"backends", lay.BackendsDir()},
		{"bin", lay.BinDir()},
		{"staging", lay.StagingDir()},
		{"ai extension", lay.AIExtension()},
		{"ip extension", lay.IPExtension()},
		{"server", lay.ServerBinary()},
		{"cli", lay.CLIBinary()},
	}

	for _, row := range rows {
		marker := ""
		if _, err := os.Stat(row.path); err == nil {
			marker = " (present)"
		}
		fmt.Printf("%-14s %s%s\n", row.label, row.path, marker)
	}
	return nil
}
