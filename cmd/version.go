// Package cmd holds build metadata stamped in with -ldflags "-X".
package cmd

import "runtime/debug"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Info returns the stamped metadata. Values left at their defaults are
// filled from the build info Go embeds, which covers go install builds.
func Info() Build {
	b := Build{Version: Version, Commit: Commit, Date: Date}
	if bi, ok := debug.ReadBuildInfo(); ok {
		b = b.fill(bi)
	}
	return b
}

func (b Build) fill(bi *debug.BuildInfo) Build {
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && b.Commit == "none":
			b.Commit = s.Value
		case s.Key == "vcs.time" && b.Date == "unknown":
			b.Date = s.Value
		}
	}
	return b
}
