// Package buildinfo carries the version stamped into the binary at link time:
//
//	go build -ldflags "-X github.com/shaharia-lab/buildnotify/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// These variables are set at build time via -ldflags.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// String returns a single human-readable build info string.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, CommitSHA, BuildDate)
}

// Semver parses Version. Development builds ("dev", "unknown") and anything
// else that is not a semantic version return an error.
func Semver() (*semver.Version, error) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("version %q is not a release version: %w", Version, err)
	}
	return v, nil
}

// IsRelease reports whether the binary was stamped with a release version.
// Pre-releases such as v1.3.0-rc.1 count as releases.
func IsRelease() bool {
	_, err := Semver()
	return err == nil
}
