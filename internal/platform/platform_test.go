package platform

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		hostOS string
		want   Platform
	}{
		{"linux", Linux},
		{"linux-gnu", Linux},
		{"darwin", MacOS},
		{"darwin21", MacOS},
		{"windows", Unsupported},
		{"freebsd", Unsupported},
		{"", Unsupported},
		{"Linux", Unsupported}, // matching is case-sensitive
	}

	for _, tc := range cases {
		if got := Detect(tc.hostOS); got != tc.want {
			t.Errorf("Detect(%q) = %v, want %v", tc.hostOS, got, tc.want)
		}
	}
}

func TestHostReturnsValue(t *testing.T) {
	// Host never fails; on any machine running the tests it must map to one
	// of the three known identifiers.
	switch Host() {
	case Linux, MacOS, Unsupported:
	default:
		t.Errorf("Host() returned unknown platform %q", Host())
	}
}
