// Package version reports build metadata. Values set with -ldflags win;
// otherwise the module version and VCS revision recorded by the Go toolchain
// are used.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via ldflags during build.
var (
	Version   = "dev"
	Commit    = "none"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

var readBuildInfo = debug.ReadBuildInfo

// Platform returns GOOS/GOARCH.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Summary returns the version with a short commit when one is known.
func Summary() string {
	v, rev := resolve()
	if rev == "" {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, shortRevision(rev))
}

// resolve merges ldflags values with the embedded build info.
func resolve() (ver, rev string) {
	ver, rev = Version, Commit
	if ver == "" {
		ver = "dev"
	}
	if rev == "none" {
		rev = ""
	}

	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ver, rev
	}
	if ver == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		ver = info.Main.Version
	}
	if rev == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				rev = s.Value
			}
		}
	}
	return ver, rev
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
