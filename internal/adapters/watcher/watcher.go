// Package watcher reports changes to catalog and plugin directories using fsnotify.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	modfs "go.trai.ch/modman/internal/adapters/fs"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// DefaultDebounceWindow is the default time window for coalescing file events.
const DefaultDebounceWindow = 200 * time.Millisecond

// Watcher implements ports.Watcher. Each call to Watch opens its own fsnotify watcher.
type Watcher struct {
	logger ports.Logger
	window time.Duration
}

// New creates a Watcher that coalesces events within window.
func New(logger ports.Logger, window time.Duration) *Watcher {
	return &Watcher{logger: logger, window: window}
}

// Watch implements ports.Watcher.
func (w *Watcher) Watch(ctx context.Context, roots ...string) (<-chan []string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}

	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			w.logger.Warn(fmt.Sprintf("not watching %s, the directory does not exist", root))
			continue
		}
		for dir := range directories(root) {
			if err := fsw.Add(dir); err != nil {
				_ = fsw.Close()
				return nil, zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", dir)
			}
		}
	}

	out := make(chan []string)
	batches := make(chan []string, 1)
	debouncer := NewDebouncer(w.window, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})

	go func() {
		defer close(out)
		defer func() { _ = fsw.Close() }()
		defer debouncer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case batch := <-batches:
				select {
				case out <- batch:
				case <-ctx.Done():
					return
				}
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				w.handle(fsw, event, debouncer)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.logger.Warn(fmt.Sprintf("watcher: file system error: %v", err))
			}
		}
	}()

	return out, nil
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event, debouncer *Debouncer) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if name := filepath.Base(event.Name); hidden(name) && name != modfs.InstalledMarker {
		return
	}
	debouncer.Add(event.Name)

	if !event.Has(fsnotify.Create) {
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		for dir := range directories(event.Name) {
			_ = fsw.Add(dir)
		}
	}
}

// directories yields root and every non-hidden directory below it.
func directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Unreadable directories are not watched.
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && hidden(d.Name()) {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
