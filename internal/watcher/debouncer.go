package watcher

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Change is one debounced batch of filesystem activity.
type Change struct {
	// Paths are the files and directories that changed in this window.
	Paths []string

	// Removed is true when any path was deleted or renamed away. The
	// per-file result cache cannot see those, so the searcher drops it.
	Removed bool
}

// Debouncer coalesces rapid file events so a burst of writes triggers a
// single re-search instead of one per event.
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]struct{}
	removed bool
	timer   *time.Timer
	output  chan Change
	stopped bool
}

// NewDebouncer creates a debouncer with the given window duration.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]struct{}),
		output:  make(chan Change, 16),
	}
}

// Add records activity on path. The flush timer restarts, so a steady
// stream of events keeps extending the window.
func (d *Debouncer) Add(path string, removed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[path] = struct{}{}
	if removed {
		d.removed = true
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush emits the pending batch. The non-blocking send happens under
// the lock so Stop cannot close the channel out from under it.
func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.pending) == 0 {
		return
	}

	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	change := Change{Paths: paths, Removed: d.removed}
	d.pending = make(map[string]struct{})
	d.removed = false

	select {
	case d.output <- change:
	default:
		// The consumer is still searching; it will pick up the next
		// batch anyway.
		slog.Warn("change_batch_dropped", slog.Int("paths", len(change.Paths)))
	}
}

// Changes returns the channel of debounced batches.
func (d *Debouncer) Changes() <-chan Change {
	return d.output
}

// Stop prevents further batches. Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
