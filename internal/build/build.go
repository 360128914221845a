// Package build carries version information stamped at build time via
// ldflags, with a module build info fallback for plain go install builds.
package build

import "runtime/debug"

// Set with:
//
//	go build -ldflags "-X github.com/folium-app/folium/internal/build.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

func init() {
	if Version != "dev" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "" {
				Date = setting.Value
			}
		}
	}
}
