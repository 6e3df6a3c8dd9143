package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/larsks/crosshairs/internal/version.Version=..."
var (
	Version   = ""
	BuildDate = ""
)

// GetVersion returns the build version, falling back to module build info
// when no version was injected at link time.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "(devel)"
}

// Info returns the version string shown by --version.
func Info() string {
	if BuildDate != "" {
		return fmt.Sprintf("%s (built %s)", GetVersion(), BuildDate)
	}
	return GetVersion()
}
