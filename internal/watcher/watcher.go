// Package watcher re-triggers searches when files under the target
// change. It wraps fsnotify with recursive directory registration and a
// debounce window, so one burst of writes becomes one Change batch.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced
	// events. Default: 200ms.
	DebounceWindow time.Duration
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = 200 * time.Millisecond
	}
	return o
}

// Watcher watches a file or directory tree and emits debounced Change
// batches.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	errs      chan error
	stopCh    chan struct{}
	stopOnce  sync.Once
	log       *slog.Logger
}

// New creates a Watcher.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fs:        fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
		errs:      make(chan error, 10),
		stopCh:    make(chan struct{}),
		log:       slog.Default(),
	}, nil
}

// Start watches path (a file or a directory tree) until the context is
// cancelled or Stop is called. It blocks; run it in its own goroutine
// and consume Changes concurrently.
func (w *Watcher) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat watch target: %w", err)
	}

	if info.IsDir() {
		if err := w.addRecursive(absPath); err != nil {
			return fmt.Errorf("register directories: %w", err)
		}
	} else {
		// Watch the parent so we see the file being replaced, which is
		// how most editors save.
		if err := w.fs.Add(filepath.Dir(absPath)); err != nil {
			return fmt.Errorf("register file parent: %w", err)
		}
	}

	defer w.debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// handleEvent feeds one fsnotify event into the debouncer and keeps the
// directory registrations current.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.emitError(err)
			}
		}
	}

	w.log.Debug("fs_event",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()))

	w.debouncer.Add(event.Name, removed)
}

// addRecursive registers root and every subdirectory with fsnotify.
// Unreadable directories are skipped, matching the walker's
// continue-on-entry-error policy.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			w.log.Warn("watch_add_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return nil
	})
}

// emitError sends a non-fatal error without blocking.
func (w *Watcher) emitError(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

// Changes returns the channel of debounced change batches. The channel
// is closed when the watcher stops.
func (w *Watcher) Changes() <-chan Change {
	return w.debouncer.Changes()
}

// Errors returns the channel of non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Stop stops the watcher and releases resources. Safe to call multiple
// times.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fs.Close()
	})
	return err
}
