package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Version and Commit identify the build. Release builds stamp them via
// ldflags:
//
//	go build -ldflags="-X github.com/muurk/printbridge/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/printbridge/internal/version.Commit=abc123"
//
// Unstamped builds fall back to the VCS metadata Go embeds, and to a dev
// placeholder when that is missing too (go run, test binaries).
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the git commit hash
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo()
	}

	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills unset fields from the VCS settings embedded by the
// Go toolchain.
func fromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if Commit == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			Commit = rev
		}
	}

	// Build info carries no tags, so an unstamped Version becomes a dev
	// marker dated by the commit.
	if Version == "" {
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			Version = "dev-" + t.Format("20060102")
		}
	}
}

// Full returns the version with the commit appended, as printed by the
// version commands.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
