package version

import (
	"crypto/sha256"
	"fmt"
	"runtime/debug"
	"sync"
)

// Version is the release shared by the binary and the Vim plugin.
const Version = "0.3.0"

// Stamped by the release build:
//
//	go build -ldflags "-X github.com/ediezindell/denops-typescript-estree.vim/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Commit = ""
	Date   = ""
)

// Full returns Version with the commit and build date, e.g.
// "0.3.0 (commit 1a2b3c4, built 2026-10-01)". Without ldflags the VCS stamp
// embedded by the go command is used.
func Full() string {
	commit, date := Commit, Date
	if commit == "" || date == "" {
		vcsCommit, vcsDate := vcsStamp()
		if commit == "" {
			commit = vcsCommit
		}
		if date == "" {
			date = vcsDate
		}
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, commit, date)
}

func vcsStamp() (commit, date string) {
	commit, date = "unknown", "development"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, date
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 7 {
				commit = s.Value[:7]
			} else if s.Value != "" {
				commit = s.Value
			}
		case "vcs.time":
			if s.Value != "" {
				date = s.Value
			}
		}
	}
	return commit, date
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID fingerprints the running binary. The Vim plugin compares it with
// the answer to "ping" and restarts a server left over from an older build.
func BuildID() string {
	buildIDOnce.Do(func() {
		buildID = computeBuildID()
	})
	return buildID
}

func computeBuildID() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}

	h := sha256.New()
	for _, part := range []string{info.GoVersion, info.Main.Path, info.Main.Version, Commit} {
		h.Write([]byte(part))
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified", "vcs.time":
			h.Write([]byte(s.Key + "=" + s.Value))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
