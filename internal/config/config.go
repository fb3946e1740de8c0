// Package config resolves build options from explicit CLI switches, named
// environment variables, an optional YAML configuration file, and defaults.
//
// Precedence is a single documented order, highest first:
//
//	explicit CLI switch > environment variable > config file > default
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/craylabs/smartbuild/internal/errors"
	"github.com/craylabs/smartbuild/internal/platform"
)

// Device selects which variant of the AI-extension build runs.
type Device string

const (
	DeviceCPU Device = "cpu"
	DeviceGPU Device = "gpu"
)

// Environment variable names consumed by Resolve and ResolvePaths.
// Boolean variables take the values "1" and "0".
const (
	EnvDevice     = "SMARTBUILD_DEVICE"
	EnvPyTorch    = "SMARTBUILD_PT"
	EnvTensorFlow = "SMARTBUILD_TF"
	EnvTFLite     = "SMARTBUILD_TFLITE"
	EnvONNX       = "SMARTBUILD_ONNX"
	EnvHome       = "SMARTBUILD_HOME"
	EnvScripts    = "SMARTBUILD_SCRIPTS"
)

// ParseDevice validates a device token. Matching is case-sensitive and
// unrecognized tokens are rejected rather than silently treated as CPU.
func ParseDevice(s string) (Device, error) {
	switch Device(s) {
	case DeviceCPU:
		return DeviceCPU, nil
	case DeviceGPU:
		return DeviceGPU, nil
	default:
		return "", errors.Validation(fmt.Sprintf("unrecognized device %q (expected cpu or gpu)", s))
	}
}

// BuildConfig is the resolved, validated set of build options. It is
// constructed once per invocation and never mutated afterwards.
type BuildConfig struct {
	Device     Device
	PyTorch    bool
	TensorFlow bool
	TFLite     bool
	ONNX       bool
	Verbose    bool
}

// Defaults returns the built-in configuration: CPU device, PyTorch and
// TensorFlow enabled, TFLite and ONNX disabled.
func Defaults() BuildConfig {
	return BuildConfig{
		Device:     DeviceCPU,
		PyTorch:    true,
		TensorFlow: true,
		TFLite:     false,
		ONNX:       false,
	}
}

// Overrides carries explicit CLI switches. Nil pointer fields mean the
// switch was not given on the command line.
type Overrides struct {
	Device     *string
	PyTorch    *bool
	TensorFlow *bool
	TFLite     *bool
	ONNX       *bool
	Verbose    bool
}

// Backends is the per-backend section of the configuration file.
type Backends struct {
	PyTorch    *bool `yaml:"pytorch,omitempty"`
	TensorFlow *bool `yaml:"tensorflow,omitempty"`
	TFLite     *bool `yaml:"tflite,omitempty"`
	ONNX       *bool `yaml:"onnx,omitempty"`
}

// File represents the optional smartbuild.yaml configuration file.
type File struct {
	Device      string   `yaml:"device,omitempty"`
	Backends    Backends `yaml:"backends,omitempty"`
	InstallRoot string   `yaml:"install_root,omitempty"`
	ScriptsDir  string   `yaml:"scripts_dir,omitempty"`
}

// LoadFile loads the configuration file at path. A missing file is not an
// error; LoadFile returns (nil, nil) so resolution falls through to
// environment variables and defaults.
func LoadFile(path string) (*File, error) {
	// Load .env file if it exists so env-var overrides and ${VAR} expansion
	// in the YAML body see it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "failed to read config file")
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var f File
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "failed to parse config file")
	}
	return &f, nil
}

// LookupFunc reads one environment variable; os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// Resolve merges overrides, environment variables, the optional config file
// and defaults into a validated BuildConfig for the given platform. It is
// pure given its inputs and has no side effects.
func Resolve(ov Overrides, lookup LookupFunc, file *File, plat platform.Platform) (BuildConfig, error) {
	cfg := Defaults()
	cfg.Verbose = ov.Verbose

	// Config file layer.
	if file != nil {
		if file.Device != "" {
			d, err := ParseDevice(file.Device)
			if err != nil {
				return BuildConfig{}, err
			}
			cfg.Device = d
		}
		applyBool(&cfg.PyTorch, file.Backends.PyTorch)
		applyBool(&cfg.TensorFlow, file.Backends.TensorFlow)
		applyBool(&cfg.TFLite, file.Backends.TFLite)
		applyBool(&cfg.ONNX, file.Backends.ONNX)
	}

	// Environment layer.
	if v, ok := lookup(EnvDevice); ok {
		d, err := ParseDevice(v)
		if err != nil {
			return BuildConfig{}, err
		}
		cfg.Device = d
	}
	for _, e := range []struct {
		key  string
		dest *bool
	}{
		{EnvPyTorch, &cfg.PyTorch},
		{EnvTensorFlow, &cfg.TensorFlow},
		{EnvTFLite, &cfg.TFLite},
		{EnvONNX, &cfg.ONNX},
	} {
		if v, ok := lookup(e.key); ok {
			b, err := parseBoolVar(e.key, v)
			if err != nil {
				return BuildConfig{}, err
			}
			*e.dest = b
		}
	}

	// Explicit switch layer.
	if ov.Device != nil {
		d, err := ParseDevice(*ov.Device)
		if err != nil {
			return BuildConfig{}, err
		}
		cfg.Device = d
	}
	applyBool(&cfg.PyTorch, ov.PyTorch)
	applyBool(&cfg.TensorFlow, ov.TensorFlow)
	applyBool(&cfg.TFLite, ov.TFLite)
	applyBool(&cfg.ONNX, ov.ONNX)

	if err := validate(cfg, plat); err != nil {
		return BuildConfig{}, err
	}
	return cfg, nil
}

// validate rejects option/platform combinations before any stage runs.
func validate(cfg BuildConfig, plat platform.Platform) error {
	if plat == platform.Unsupported {
		return errors.PlatformError("platform unsupported")
	}
	if plat == platform.MacOS {
		if cfg.Device == DeviceGPU {
			return errors.Validation("GPU unsupported on this platform")
		}
		if cfg.ONNX {
			return errors.Validation("ONNX unsupported on this platform")
		}
	}
	return nil
}

// ResolvePaths determines the installation root and build-script directory.
// Precedence mirrors Resolve: explicit flag > environment > config file >
// default (current directory, scripts under <root>/build-scripts).
func ResolvePaths(prefix string, lookup LookupFunc, file *File) (root, scriptsDir string) {
	root = prefix
	if root == "" {
		if v, ok := lookup(EnvHome); ok && v != "" {
			root = v
		}
	}
	if root == "" && file != nil {
		root = file.InstallRoot
	}
	if root == "" {
		root = "."
	}

	if v, ok := lookup(EnvScripts); ok && v != "" {
		scriptsDir = v
	}
	if scriptsDir == "" && file != nil {
		scriptsDir = file.ScriptsDir
	}
	if scriptsDir == "" {
		scriptsDir = filepath.Join(root, "build-scripts")
	}
	return root, scriptsDir
}

func applyBool(dest *bool, v *bool) {
	if v != nil {
		*dest = *v
	}
}

func parseBoolVar(key, value string) (bool, error) {
	switch value {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, errors.Validation(fmt.Sprintf("%s must be \"1\" or \"0\", got %q", key, value))
	}
}
