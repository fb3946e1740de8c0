package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Stage", KeyStage, "build-ai-extension", Stage("build-ai-extension")},
		{"Script", KeyScript, "build-redisai-cpu.sh", Script("build-redisai-cpu.sh")},
		{"Device", KeyDevice, "gpu", Device("gpu")},
		{"Platform", KeyPlatform, "linux", Platform("linux")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Scope", KeyScope, "full", Scope("full")},
		{"RunID", KeyRunID, "abc-123", RunID("abc-123")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Errorf("%s: key = %q, want %q", tc.name, tc.attr.Key, tc.attrKey)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Errorf("%s: value = %q, want %q", tc.name, tc.attr.Value.String(), tc.attrVal)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := ExitCode(7); a.Key != KeyExitCode || a.Value.Int64() != 7 {
		t.Errorf("ExitCode(7) = %v", a)
	}
	if a := DurationMS(12.5); a.Key != KeyDurationMS || a.Value.Float64() != 12.5 {
		t.Errorf("DurationMS(12.5) = %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Errorf("Error(nil) value = %q, want empty", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Errorf("Error value = %q, want %q", a.Value.String(), "boom")
	}
}
