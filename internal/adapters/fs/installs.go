package fs

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/modman/internal/core/ports"
	"go.trai.ch/modman/internal/semver"
)

// InstalledMarker is the file that marks a variant directory as installed.
// It holds the installed version, or nothing if the version is unknown.
const InstalledMarker = ".installed"

var _ ports.InstallIndex = (*InstallIndex)(nil)

// InstallIndex detects installed variants from marker files laid out as
// <root>/<package>/<variant>/.installed.
type InstallIndex struct{}

// NewInstallIndex creates a new InstallIndex.
func NewInstallIndex() *InstallIndex {
	return &InstallIndex{}
}

// Installed reports whether the variant's marker exists and records a matching version.
func (i *InstallIndex) Installed(root, packageID, variantID, version string) bool {
	if root == "" {
		return false
	}
	path := filepath.Join(root, filepath.FromSlash(packageID), variantID, InstalledMarker)
	data, err := os.ReadFile(path) //nolint:gosec // Path is built from catalog ids
	if err != nil {
		return false
	}

	installed := strings.TrimSpace(string(data))
	if installed == "" || version == "" {
		return true
	}
	return semver.Match(installed, version)
}
