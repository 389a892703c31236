package domain

import "path/filepath"

const (
	// StateDirName is the name of the default state directory.
	StateDirName = ".modman"

	// ProfilesDirName is the name of the profile directory inside the state directory.
	ProfilesDirName = "profiles"

	// DefaultProfileName is used when no profile is named.
	DefaultProfileName = "default"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStatePath returns the default state directory.
func DefaultStatePath() string {
	return StateDirName
}

// ProfilesPath returns the profile directory below the state root.
// It joins root and profiles.
func ProfilesPath(root string) string {
	return filepath.Join(root, ProfilesDirName)
}
