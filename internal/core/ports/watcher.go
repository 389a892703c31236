package ports

import "context"

// Watcher reports file system changes below a set of directories.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Watch watches every root recursively until ctx is done.
	// Each received batch holds the paths that changed within one debounce window.
	// The channel is closed when watching stops. Roots that do not exist are skipped.
	Watch(ctx context.Context, roots ...string) (<-chan []string, error)
}
