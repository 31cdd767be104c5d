// Package appinfo reports the build identity of the running binary
package appinfo

import (
	"os"
	"runtime/debug"
)

// Version is overridden at link time with -ldflags "-X rekaloka/internal/utils/appinfo.Version=..."
var Version = ""

// GetVersion returns the application version. Lookup order: the linked
// Version, APP_VERSION, the module version, the VCS revision.
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				if len(setting.Value) > 12 {
					return setting.Value[:12]
				}
				return setting.Value
			}
		}
	}

	return "0.0.0-dev"
}
