package ports

// InstallIndex reports which variants are installed locally.
//
//go:generate go run go.uber.org/mock/mockgen -source=install_index.go -destination=mocks/mock_install_index.go -package=mocks
type InstallIndex interface {
	// Installed reports whether the variant is installed under root at the given version.
	// An empty version matches any installed version.
	Installed(root, packageID, variantID, version string) bool
}
