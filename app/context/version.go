package context

import (
	"fmt"
	"regexp"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

// The semantic version of the application.
// It is overridden by vcsVersion when that is set at build time.
const version = "0.0.0"

var (
	vcsVersion string // version from VCS set at build time via -ldflags
	// Simplified semver regex. A more complete one can be found on https://semver.org/
	versionRx = regexp.MustCompile(`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*).*`)
	commitRx  = regexp.MustCompile(`^g[0-9a-f]{6,}$`)
)

// VersionInfo stores app version information.
type VersionInfo struct {
	Semantic    string
	Commit      string
	TagDistance int // number of commits since the latest tag
	Dirty       bool
}

// GetVersion returns the app version including VCS and Go runtime information.
// The VCS version set at build time takes precedence, and the VCS information
// provided by the Go runtime is the fallback for binaries built without
// setting -ldflags (e.g. Homebrew).
// See https://github.com/golang/go/issues/50603
func GetVersion() (*VersionInfo, error) {
	vi := &VersionInfo{}

	if vcsVersion != "" {
		if err := vi.parseGitDescribe(vcsVersion); err != nil {
			return nil, fmt.Errorf("failed reading VCS version '%s': %w", vcsVersion, err)
		}
	}

	vi.readBuildInfo()

	if vi.Semantic == "" {
		vi.Semantic = version
	}

	return vi, nil
}

// String returns the full version information.
func (vi *VersionInfo) String() string {
	goInfo := fmt.Sprintf("%s, %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	if vi.Commit == "" {
		return fmt.Sprintf("v%s (%s)", vi.Semantic, goInfo)
	}

	var distance, dirty string
	if vi.TagDistance > 0 {
		distance = fmt.Sprintf("-%d", vi.TagDistance)
	}
	if vi.Dirty {
		dirty = "-dirty"
	}

	return fmt.Sprintf("v%s (commit/%s%s%s, %s)",
		vi.Semantic, vi.Commit, distance, dirty, goInfo)
}

// parseGitDescribe parses the output of `git describe --tags --dirty`,
// e.g. "v0.2.1-14-gdeadbee-dirty".
func (vi *VersionInfo) parseGitDescribe(desc string) error {
	verParts := []string{}
	for _, part := range strings.Split(desc, "-") {
		switch {
		case commitRx.MatchString(part):
			vi.Commit = strings.TrimPrefix(part, "g")
		case part == "dirty":
			vi.Dirty = true
		default:
			if distance, err := strconv.Atoi(part); err == nil {
				vi.TagDistance = distance
				continue
			}
			verParts = append(verParts, part)
		}
	}

	ver := strings.Join(verParts, "-")
	switch {
	case versionRx.MatchString(ver):
		vi.Semantic = strings.TrimPrefix(ver, "v")
	case vi.Commit == "":
		vi.Commit = ver
	}

	return nil
}

func (vi *VersionInfo) readBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, s := range buildInfo.Settings {
		switch s.Key {
		case "vcs.revision":
			if vi.Commit == "" {
				vi.Commit = s.Value[:min(len(s.Value), 10)]
			}
		case "vcs.modified":
			if s.Value == "true" {
				vi.Dirty = true
			}
		}
	}
}
