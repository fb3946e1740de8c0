package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/craylabs/smartbuild/internal/cleanup"
	"github.com/craylabs/smartbuild/internal/config"
	"github.com/craylabs/smartbuild/internal/errors"
	"github.com/craylabs/smartbuild/internal/history"
	"github.com/craylabs/smartbuild/internal/logfields"
	"github.com/craylabs/smartbuild/internal/pipeline"
	"github.com/craylabs/smartbuild/internal/platform"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Device  *string `help:"Device to build the AI extension for (cpu|gpu)"`
	NoPt    *bool   `name:"no-pt" help:"Disable the PyTorch backend"`
	NoTf    *bool   `name:"no-tf" help:"Disable the TensorFlow backend"`
	Tflite  *bool   `name:"tflite" help:"Enable the TFLite backend"`
	Onnx    *bool   `name:"onnx" help:"Enable the ONNX backend"`
	Clean   bool    `help:"Remove AI-extension artifacts and staging before building"`
	Clobber bool    `help:"Remove all built artifacts before building"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	bctx, err := root.loadContext()
	if err != nil {
		return err
	}

	plat := platform.Host()
	cfg, err := config.Resolve(b.overrides(root), os.LookupEnv, bctx.file, plat)
	if err != nil {
		return err
	}

	switch {
	case b.Clobber:
		reportRemovals(cleanup.Clean(bctx.lay, cleanup.Full))
	case b.Clean:
		reportRemovals(cleanup.Clean(bctx.lay, cleanup.Selective))
	}

	if err := bctx.lay.EnsureBuildDirs(); err != nil {
		return err
	}

	runID := uuid.NewString()
	stages := pipeline.BuildStages(cfg, bctx.scriptsDir, bctx.lay)

	slog.Info("Starting build pipeline",
		logfields.RunID(runID),
		logfields.Platform(plat.String()),
		logfields.Device(string(cfg.Device)),
		slog.String("backends", backendsString(cfg)),
		logfields.Path(bctx.lay.Root))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := &pipeline.Runner{
		Verbose:  root.Verbose,
		Progress: true,
		RunID:    runID,
	}

	started := time.Now()
	report, runErr := runner.Run(ctx, stages)

	recordHistory(bctx.lay, buildRecord(runID, cfg, runErr, started, ctx.Err() != nil))

	if runErr != nil {
		return runErr
	}

	statusLine(colSuccess, fmt.Sprintf("build complete (%d stages, %s)",
		len(report.Completed), time.Since(started).Round(time.Second)))
	return nil
}

// overrides converts CLI switches to resolver overrides. The disable
// switches invert: --no-pt means PyTorch=false.
func (b *BuildCmd) overrides(root *CLI) config.Overrides {
	ov := config.Overrides{
		Device:  b.Device,
		TFLite:  b.Tflite,
		ONNX:    b.Onnx,
		Verbose: root.Verbose,
	}
	if b.NoPt != nil {
		v := !*b.NoPt
		ov.PyTorch = &v
	}
	if b.NoTf != nil {
		v := !*b.NoTf
		ov.TensorFlow = &v
	}
	return ov
}

func buildRecord(runID string, cfg config.BuildConfig, runErr error, started time.Time, canceled bool) history.Record {
	rec := history.Record{
		RunID:     runID,
		Command:   "build",
		Device:    string(cfg.Device),
		Backends:  backendsString(cfg),
		Outcome:   history.OutcomeSuccess,
		Duration:  time.Since(started),
		StartedAt: started,
	}
	if runErr != nil {
		rec.Outcome = history.OutcomeFailed
		if canceled {
			rec.Outcome = history.OutcomeCanceled
		}
		if be, ok := runErr.(*errors.BuildError); ok {
			if stage, ok := be.Context["stage"].(string); ok {
				rec.FailedStage = stage
			}
			rec.ExitCode = be.ExitCode
		}
	}
	return rec
}

func backendsString(cfg config.BuildConfig) string {
	var on []string
	if cfg.PyTorch {
		on = append(on, "pt")
	}
	if cfg.TensorFlow {
		on = append(on, "tf")
	}
	if cfg.TFLite {
		on = append(on, "tflite")
	}
	if cfg.ONNX {
		on = append(on, "onnx")
	}
	return strings.Join(on, ",")
}

func reportRemovals(removed []string) {
	for _, path := range removed {
		statusLine(colSuccess, "removed "+path)
	}
	if len(removed) == 0 {
		statusLine(colWarn, "nothing to remove")
	}
}
