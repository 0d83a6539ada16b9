package entity

import (
	"strings"

	"github.com/hashicorp/go-version"
)

const (
	// DefaultMinimumServerVersion gates which servers the shell will display.
	DefaultMinimumServerVersion = "9.4.0"

	// HistoryPushMinimumVersion is the first version that accepts in-place
	// history pushes for deep links.
	HistoryPushMinimumVersion = "6.0.0"
)

// RemoteInfo is what a server reports about itself.
type RemoteInfo struct {
	SiteURL       string
	ServerVersion string
	HasPlaybooks  bool
	HasBoards     bool
}

// IsZero reports whether nothing is known about the server yet.
func (r RemoteInfo) IsZero() bool {
	return r == RemoteInfo{}
}

// VersionAtLeast reports whether the reported version is >= minimum.
// An unknown or unparsable server version is treated as compatible,
// since the server could not be asked.
func (r RemoteInfo) VersionAtLeast(minimum string) bool {
	if strings.TrimSpace(r.ServerVersion) == "" {
		return true
	}
	return VersionAtLeast(r.ServerVersion, minimum)
}

// KnownVersionAtLeast is VersionAtLeast but false when the version is unknown.
func (r RemoteInfo) KnownVersionAtLeast(minimum string) bool {
	if strings.TrimSpace(r.ServerVersion) == "" {
		return false
	}
	return VersionAtLeast(r.ServerVersion, minimum)
}

// VersionAtLeast compares two semver-style versions. Unparsable input
// on the server side counts as compatible.
func VersionAtLeast(have, minimum string) bool {
	haveV, err := version.NewVersion(strings.TrimPrefix(strings.TrimSpace(have), "v"))
	if err != nil {
		return true
	}
	minV, err := version.NewVersion(strings.TrimPrefix(strings.TrimSpace(minimum), "v"))
	if err != nil {
		return true
	}
	return haveV.Core().GreaterThanOrEqual(minV.Core())
}
