package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/craylabs/smartbuild/internal/history"
)

// HistoryCmd shows recent build and clean invocations from the ledger.
type HistoryCmd struct {
	Limit int `short:"n" default:"10" help:"Number of records to show"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	bctx, err := root.loadContext()
	if err != nil {
		return err
	}

	path := historyPath(bctx.lay)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		statusLine(colWarn, "no build history yet")
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		statusLine(colWarn, "no build history yet")
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-7s %-8s %-3s %s",
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.Command, rec.Outcome, rec.Device,
			rec.Duration.Round(10*time.Millisecond))
		if rec.FailedStage != "" {
			line += fmt.Sprintf("  failed at %s (exit %d)", rec.FailedStage, rec.ExitCode)
		}
		fmt.Println(line)
	}
	return nil
}
