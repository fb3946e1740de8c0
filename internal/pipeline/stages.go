// Package pipeline defines the ordered build-stage sequence and the runner
// that executes each stage as an external process, fail-fast.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/craylabs/smartbuild/internal/config"
	"github.com/craylabs/smartbuild/internal/layout"
)

// Canonical stage names, in pipeline order.
const (
	StageKeyValueServer = "build-key-value-server"
	StageIPExtension    = "build-ip-extension"
	StageAIExtension    = "build-ai-extension"
)

// Build-script file names expected in the scripts directory.
const (
	ScriptServer = "build-redis.sh"
	ScriptIP     = "build-redisip.sh"
	ScriptAICPU  = "build-redisai-cpu.sh"
	ScriptAIGPU  = "build-redisai-gpu.sh"
)

// Stage is one step of the build pipeline: an external script invocation
// with its parameters. Stages are value records fixed at orchestration
// start; none is retried or rolled back.
type Stage struct {
	Name   string
	Script string   // path of the build script
	Args   []string // positional arguments passed to the script
	Env    []string // KEY=VAL entries appended to the parent environment
}

// BuildStages returns the fixed stage sequence for the given configuration.
// Every script receives the installation root and staging directory as
// positional arguments; the AI-extension stage additionally branches on the
// device and carries the backend enable flags in its environment.
func BuildStages(cfg config.BuildConfig, scriptsDir string, lay layout.Layout) []Stage {
	aiScript := ScriptAICPU
	if cfg.Device == config.DeviceGPU {
		aiScript = ScriptAIGPU
	}

	args := []string{lay.Root, lay.StagingDir()}

	return []Stage{
		{
			Name:   StageKeyValueServer,
			Script: filepath.Join(scriptsDir, ScriptServer),
			Args:   args,
		},
		{
			Name:   StageIPExtension,
			Script: filepath.Join(scriptsDir, ScriptIP),
			Args:   args,
		},
		{
			Name:   StageAIExtension,
			Script: filepath.Join(scriptsDir, aiScript),
			Args:   args,
			Env:    backendEnv(cfg),
		},
	}
}

// backendEnv encodes the four backend enable flags the way the build
// scripts consume them: "1" enabled, "0" disabled.
func backendEnv(cfg config.BuildConfig) []string {
	flag := func(key string, on bool) string {
		v := "0"
		if on {
			v = "1"
		}
		return fmt.Sprintf("%s=%s", key, v)
	}
	return []string{
		flag("BUILD_PT", cfg.PyTorch),
		flag("BUILD_TF", cfg.TensorFlow),
		flag("BUILD_TFLITE", cfg.TFLite),
		flag("BUILD_ONNX", cfg.ONNX),
	}
}
