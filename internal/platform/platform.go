// Package platform normalizes the host operating system to the small set of
// identifiers the build pipeline gates on.
package platform

import (
	"runtime"
	"strings"
)

// Platform identifies a supported (or unsupported) host environment.
type Platform string

const (
	Linux       Platform = "linux"
	MacOS       Platform = "macos"
	Unsupported Platform = "unsupported"
)

// Detect maps a host OS identifier to a Platform. Identifiers beginning with
// "linux" or "darwin" are recognized; everything else is Unsupported.
func Detect(hostOS string) Platform {
	switch {
	case strings.HasPrefix(hostOS, "linux"):
		return Linux
	case strings.HasPrefix(hostOS, "darwin"):
		return MacOS
	default:
		return Unsupported
	}
}

// Host returns the Platform of the machine the process is running on.
func Host() Platform {
	return Detect(runtime.GOOS)
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}
