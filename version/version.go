// Package version exposes build information for the running binary.
//
// Version and Commit can be stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/audiodesk/version.Version=1.2.0" ./cmd/audiodesk
//
// Unstamped builds fall back to the VCS data the Go toolchain embeds.
package version

import (
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

var (
	once   sync.Once
	cached Info
)

// Get returns the build info, reading the embedded VCS data once.
func Get() Info {
	once.Do(func() { cached = read(Version, Commit, debug.ReadBuildInfo) })
	return cached
}

// Short returns "version" or "version-commit", with a "-dirty" suffix for
// builds from a modified tree.
func Short() string {
	return Get().String()
}

func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		s += "-" + i.Commit
	}
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

func read(version, commit string, buildInfo func() (*debug.BuildInfo, bool)) Info {
	info := Info{Version: version, Commit: commit}
	bi, ok := buildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}
