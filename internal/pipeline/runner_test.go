package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craylabs/smartbuild/internal/errors"
)

// writeScript drops an executable shell script into dir and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	dir := t.TempDir()
	trace := filepath.Join(dir, "trace")

	stages := []Stage{
		{Name: "one", Script: writeScript(t, dir, "one.sh", "echo one >> "+trace)},
		{Name: "two", Script: writeScript(t, dir, "two.sh", "echo two >> "+trace)},
		{Name: "three", Script: writeScript(t, dir, "three.sh", "echo three >> "+trace)},
	}

	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	report, err := r.Run(context.Background(), stages)
	require.NoError(t, err)

	data, err := os.ReadFile(trace)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(data))

	assert.Equal(t, []string{"one", "two", "three"}, report.Completed)
	assert.Len(t, report.Durations, 3)
}

func TestRunStopsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "stage3-ran")

	stages := []Stage{
		{Name: "one", Script: writeScript(t, dir, "one.sh", "exit 0")},
		{Name: "two", Script: writeScript(t, dir, "two.sh", "exit 7")},
		{Name: "three", Script: writeScript(t, dir, "three.sh", "touch "+marker)},
	}

	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	report, err := r.Run(context.Background(), stages)
	require.Error(t, err)

	be, ok := err.(*errors.BuildError)
	require.True(t, ok, "expected *errors.BuildError, got %T", err)
	assert.Equal(t, errors.CategoryStage, be.Category)
	assert.Equal(t, 7, be.ExitCode)
	assert.Equal(t, "two", be.Context["stage"])

	// Stage three must never have been invoked.
	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "stage three ran after a failure")
	assert.Equal(t, []string{"one"}, report.Completed)
}

func TestRunMissingScript(t *testing.T) {
	stages := []Stage{
		{Name: "one", Script: filepath.Join(t.TempDir(), "absent.sh")},
	}

	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err := r.Run(context.Background(), stages)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryScript))
}

func TestRunBuffersOutputAndSurfacesItOnFailure(t *testing.T) {
	dir := t.TempDir()
	stages := []Stage{
		{Name: "noisy", Script: writeScript(t, dir, "noisy.sh", "echo kaboom >&2; exit 3")},
	}

	var stderr bytes.Buffer
	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &stderr}
	_, err := r.Run(context.Background(), stages)
	require.Error(t, err)

	be := err.(*errors.BuildError)
	assert.Contains(t, be.Context["output"], "kaboom")
	assert.Contains(t, stderr.String(), "kaboom")
}

func TestRunDiscardsOutputOnSuccess(t *testing.T) {
	dir := t.TempDir()
	stages := []Stage{
		{Name: "quiet", Script: writeScript(t, dir, "quiet.sh", "echo should-not-appear")},
	}

	var stdout, stderr bytes.Buffer
	r := &Runner{Stdout: &stdout, Stderr: &stderr}
	_, err := r.Run(context.Background(), stages)
	require.NoError(t, err)

	assert.NotContains(t, stdout.String(), "should-not-appear")
	assert.NotContains(t, stderr.String(), "should-not-appear")
}

func TestRunVerboseStreamsOutput(t *testing.T) {
	dir := t.TempDir()
	stages := []Stage{
		{Name: "chatty", Script: writeScript(t, dir, "chatty.sh", "echo streamed")},
	}

	var stdout bytes.Buffer
	r := &Runner{Verbose: true, Stdout: &stdout, Stderr: &bytes.Buffer{}}
	_, err := r.Run(context.Background(), stages)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "streamed")
}

func TestRunPassesArgsAndEnv(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "seen")
	stages := []Stage{
		{
			Name:   "inspect",
			Script: writeScript(t, dir, "inspect.sh", `echo "$1 $2 $BUILD_ONNX" > `+out),
			Args:   []string{"/install/root", "/install/root/.third-party"},
			Env:    []string{"BUILD_ONNX=1"},
		},
	}

	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err := r.Run(context.Background(), stages)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "/install/root /install/root/.third-party 1\n", string(data))
}

func TestRunCancellationKillsChild(t *testing.T) {
	dir := t.TempDir()
	stages := []Stage{
		{Name: "sleepy", Script: writeScript(t, dir, "sleepy.sh", "sleep 30")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	start := time.Now()
	_, err := r.Run(ctx, stages)
	require.Error(t, err)

	assert.True(t, errors.IsCategory(err, errors.CategoryStage))
	assert.Contains(t, err.(*errors.BuildError).Message, "canceled")
	assert.Less(t, time.Since(start), 10*time.Second, "cancellation should not wait for the child")
}

func TestRunCanceledBeforeStart(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	stages := []Stage{
		{Name: "never", Script: writeScript(t, dir, "never.sh", "touch "+marker)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err := r.Run(ctx, stages)
	require.Error(t, err)

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "stage ran despite pre-canceled context")
}
