package export

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/threadrag/internal/logger"
)

// DefaultDebounce coalesces the bursts of events an editor or exporter emits.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a set of export files.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
}

// NewWatcher creates a watcher for the given export file paths.
func NewWatcher(paths []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		files[filepath.Clean(p)] = true
	}
	return &Watcher{files: files, debounce: debounce}
}

// Run watches the parent directories of the files and calls onChange with
// the changed path once per debounced burst. It blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch directories so atomic rename-over writes are seen.
	dirs := make(map[string]bool)
	for path := range w.files {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	d := newDebouncer(w.debounce)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if path, relevant := w.relevant(event); relevant {
				d.touch(path)
			}

		case f := <-d.fire:
			if d.accept(f) {
				onChange(f.path)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// relevant reports whether an event changes the content of a watched file.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	path := filepath.Clean(event.Name)
	if !w.files[path] {
		return "", false
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		return path, true
	}
	return "", false
}

// firing is one expired quiet period of a path.
type firing struct {
	path string
	gen  uint64
}

// debouncer coalesces events per path into one firing after a quiet period.
// Only the goroutine that calls touch, accept and stop may touch its maps.
type debouncer struct {
	delay  time.Duration
	fire   chan firing
	done   chan struct{}
	wg     sync.WaitGroup
	timers map[string]*time.Timer
	gens   map[string]uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		fire:   make(chan firing),
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
		gens:   make(map[string]uint64),
	}
}

// touch restarts the quiet period of path. A timer that already expired
// keeps its old generation and is dropped by accept.
func (d *debouncer) touch(path string) {
	if t, ok := d.timers[path]; ok && t.Stop() {
		d.wg.Done()
	}
	d.gens[path]++
	f := firing{path: path, gen: d.gens[path]}

	d.wg.Add(1)
	d.timers[path] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		select {
		case d.fire <- f:
		case <-d.done:
		}
	})
}

// accept reports whether f is the current firing of its path and clears it.
func (d *debouncer) accept(f firing) bool {
	if _, ok := d.timers[f.path]; !ok || d.gens[f.path] != f.gen {
		return false
	}
	delete(d.timers, f.path)
	return true
}

// stop cancels pending timers and waits for expired ones to give up.
func (d *debouncer) stop() {
	for path, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, path)
	}
	close(d.done)
	d.wg.Wait()
}
