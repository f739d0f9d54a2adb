package common

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/epics-go/dbtools/internal/codegen/common.Version=x.y.z"
var Version = ""

// GetVersion returns the version string that was set at build time via ldflags.
// Returns "0.0.1-dev" if Version is empty (development builds only).
func GetVersion() (string, error) {
	if Version == "" {
		return "0.0.1-dev", nil
	}

	v, err := semver.NewVersion(Version)
	if err != nil {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z): %w", Version, err)
	}
	return v.String(), nil
}

// ParseVersion extracts major, minor, patch from a version string like "1.2.3" or "1.2.3-dirty".
// Unparseable versions yield zeros.
func ParseVersion(version string) (major, minor, patch int) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return 0, 0, 0
	}
	return int(v.Major()), int(v.Minor()), int(v.Patch())
}
