package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/craylabs/smartbuild/internal/errors"
	"github.com/craylabs/smartbuild/internal/logfields"
)

// outputTail bounds how much captured output a stage failure carries.
const outputTail = 8 * 1024

// Runner executes a stage sequence in order, halting on the first failure.
type Runner struct {
	Verbose  bool      // stream child output as it is produced
	Progress bool      // draw a progress bar in non-verbose mode
	RunID    string    // identifies this invocation in logs and reports
	Stdout   io.Writer // defaults to os.Stdout
	Stderr   io.Writer // defaults to os.Stderr
}

// Report summarizes a pipeline run for logging and the history ledger.
type Report struct {
	RunID     string
	Completed []string
	Durations map[string]time.Duration
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// Run executes stages sequentially. The first non-zero exit stops the
// pipeline; later stages are never attempted. Partial artifacts from a
// failed stage are left on disk for the cleanup command. Context
// cancellation best-effort kills the in-flight child process group.
func (r *Runner) Run(ctx context.Context, stages []Stage) (*Report, error) {
	report := &Report{
		RunID:     r.RunID,
		Durations: make(map[string]time.Duration),
	}

	var bar *progressbar.ProgressBar
	if !r.Verbose && r.Progress {
		bar = progressbar.NewOptions(len(stages),
			progressbar.OptionSetWriter(r.stderr()),
			progressbar.OptionSetDescription("building"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, st := range stages {
		select {
		case <-ctx.Done():
			return report, canceledError(st.Name, ctx.Err())
		default:
		}

		if bar != nil {
			bar.Describe(st.Name)
		}

		t0 := time.Now()
		err := r.runStage(ctx, st)
		dur := time.Since(t0)
		report.Durations[st.Name] = dur

		if err != nil {
			slog.Error("Build stage failed",
				logfields.Stage(st.Name),
				logfields.RunID(r.RunID),
				logfields.DurationMS(float64(dur.Milliseconds())),
				logfields.Error(err))
			return report, err
		}

		report.Completed = append(report.Completed, st.Name)
		slog.Debug("Build stage completed",
			logfields.Stage(st.Name),
			logfields.RunID(r.RunID),
			logfields.DurationMS(float64(dur.Milliseconds())))
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return report, nil
}

// runStage invokes a single stage's script and waits for it.
func (r *Runner) runStage(ctx context.Context, st Stage) error {
	if _, err := os.Stat(st.Script); err != nil {
		return errors.MissingScript(st.Name, st.Script)
	}

	cmd := exec.Command(st.Script, st.Args...)
	cmd.Env = append(os.Environ(), st.Env...)

	var buf bytes.Buffer
	if r.Verbose {
		cmd.Stdout = r.stdout()
		cmd.Stderr = r.stderr()
	} else {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	// Isolate the child in its own process group so cancellation can take
	// down the whole build script tree, not just the shell.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	slog.Debug("Invoking build script",
		logfields.Stage(st.Name),
		logfields.Script(st.Script),
		logfields.RunID(r.RunID))

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, errors.CategoryScript, errors.SeverityFatal,
			fmt.Sprintf("failed to start build script for stage %s", st.Name))
	}

	pgid := cmd.Process.Pid
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	if waitErr == nil {
		return nil
	}

	if ctx.Err() != nil {
		return canceledError(st.Name, ctx.Err())
	}

	exitCode := -1
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	// Non-verbose runs buffered the child's output; surface it now, both on
	// the console and on the error.
	output := tail(buf.Bytes())
	if len(output) > 0 {
		fmt.Fprintf(r.stderr(), "--- output of stage %s ---\n%s\n", st.Name, output)
	}

	failure := errors.StageFailure(st.Name, exitCode,
		fmt.Sprintf("stage %s failed with exit code %d", st.Name, exitCode))
	failure.Cause = waitErr
	if len(output) > 0 {
		failure = failure.WithContext("output", string(output))
	}
	return failure
}

// canceledError reports a stage aborted by context cancellation. It carries
// no child exit code; the CLI maps it to the generic build-failure code.
func canceledError(stage string, cause error) *errors.BuildError {
	err := errors.New(errors.CategoryStage, errors.SeverityFatal,
		fmt.Sprintf("stage %s canceled", stage))
	err.Cause = cause
	return err.WithContext("stage", stage)
}

func tail(b []byte) []byte {
	if len(b) <= outputTail {
		return bytes.TrimSpace(b)
	}
	return bytes.TrimSpace(b[len(b)-outputTail:])
}
