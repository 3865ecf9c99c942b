// Package watcher triggers rebuilds when Python sources change.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered.
const DefaultDebounce = 500 * time.Millisecond

// Filter decides which paths the watcher cares about. Paths are relative to
// the watched root and slash-separated.
type Filter interface {
	Matches(relPath string) bool
	ShouldIgnore(relPath string) bool
}

// Watcher monitors a source tree and delivers debounced batches of changed
// files. While paused, changes keep accumulating and are delivered on Resume.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	filter   Filter
	debounce time.Duration
	onChange func(files []string)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex // guards paused, pending and timer
	paused   bool
	pending  map[string]struct{}
	timer    *time.Timer
	fireCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

// New watches root recursively, skipping ignored directories.
func New(root string, filter Filter, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fsw,
		root:     root,
		filter:   filter,
		debounce: debounce,
		pending:  make(map[string]struct{}),
		fireCh:   make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins delivering changes to onChange. It returns immediately.
func (w *Watcher) Start(ctx context.Context, onChange func(files []string)) error {
	w.onChange = onChange
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.loop()
	return nil
}

// Stop ends the watch loop and releases the underlying watcher. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

// Pause holds back deliveries, typically while a rebuild runs.
func (w *Watcher) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = true
}

// Resume re-enables deliveries and flushes changes seen while paused.
func (w *Watcher) Resume() {
	w.mu.Lock()
	wasPaused := w.paused
	w.paused = false
	w.mu.Unlock()

	if wasPaused {
		w.flush()
	}
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
				w.timer = nil
			}
			w.mu.Unlock()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case <-w.fireCh:
			w.mu.Lock()
			paused := w.paused
			w.mu.Unlock()
			if !paused {
				w.flush()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.filter.ShouldIgnore(rel) {
				if err := w.addTree(event.Name); err != nil {
					log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if w.filter.ShouldIgnore(rel) || !w.filter.Matches(rel) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fireCh <- struct{}{}:
		default:
		}
	})
	w.mu.Unlock()
}

// flush delivers the pending batch, sorted, if any.
func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(files)
	if w.onChange != nil {
		w.onChange(files)
	}
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addTree adds every non-ignored directory under root to the watcher.
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if rel, ok := w.relative(path); ok && w.filter.ShouldIgnore(rel) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
