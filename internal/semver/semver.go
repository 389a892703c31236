// Package semver compares package version strings.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3 that falls back
// to plain string comparison for versions that are not semantic versions.
package semver

import (
	"strings"

	mm "github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// Version is a parsed semantic version.
type Version struct {
	v *mm.Version
}

// ParseVersion parses a semantic version. Leading "v" and short forms like "1.2" are accepted.
func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, zerr.With(zerr.Wrap(err, "invalid version"), "version", raw)
	}
	return Version{v: v}, nil
}

// String returns the canonical form of the version.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// Match reports whether two version strings denote the same version.
// "1.2" matches "1.2.0"; non-semantic strings must be identical after trimming.
func Match(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return true
	}
	va, errA := ParseVersion(a)
	vb, errB := ParseVersion(b)
	if errA != nil || errB != nil {
		return false
	}
	return Compare(va, vb) == 0
}

// Valid reports whether raw parses as a semantic version.
func Valid(raw string) bool {
	_, err := ParseVersion(raw)
	return err == nil
}
