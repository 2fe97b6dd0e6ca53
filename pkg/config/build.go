package config

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X ula/pkg/config.BuildVersion=...".
var (
	BuildVersion   = "unknown"
	BuildTimestamp = "unknown"
)

// GetBuildInfo describes the running binary. Without ldflags the module
// version and VCS stamp recorded by the go tool are used.
func GetBuildInfo() string {
	version, stamp := BuildVersion, BuildTimestamp
	if bi, ok := debug.ReadBuildInfo(); ok {
		if version == "unknown" && bi.Main.Version != "" {
			version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.time" && stamp == "unknown":
				stamp = s.Value
			case s.Key == "vcs.revision" && len(s.Value) >= 12:
				version += "+" + s.Value[:12]
			}
		}
	}
	return fmt.Sprintf("ula %s (%s) %s/%s", version, stamp, runtime.GOOS, runtime.GOARCH)
}
