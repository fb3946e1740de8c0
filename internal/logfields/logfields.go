package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyScript     = "script"
	KeyDevice     = "device"
	KeyPlatform   = "platform"
	KeyPath       = "path"
	KeyScope      = "scope"
	KeyRunID      = "run_id"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Script(path string) slog.Attr    { return slog.String(KeyScript, path) }
func Device(d string) slog.Attr       { return slog.String(KeyDevice, d) }
func Platform(p string) slog.Attr     { return slog.String(KeyPlatform, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Scope(s string) slog.Attr        { return slog.String(KeyScope, s) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
