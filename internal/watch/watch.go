// internal/watch/watch.go
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before notifying.
const DefaultDebounce = 200 * time.Millisecond

// Event is a debounced batch of changed working-tree paths, slash-separated
// and relative to the root.
type Event struct {
	Paths []string
}

// Watcher reports changes to the working tree of a repository. The storage
// directory is never watched.
type Watcher struct {
	root       string
	storageDir string
	debounce   time.Duration

	watcher *fsnotify.Watcher
	events  chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error

	mu      sync.Mutex
	pending map[string]struct{}
}

// Options configures a Watcher
type Options struct {
	Debounce time.Duration
	Logger   *zap.Logger
}

// New starts watching every directory under root except storageDir.
func New(root, storageDir string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:       absRoot,
		storageDir: storageDir,
		debounce:   opts.Debounce,
		watcher:    fw,
		events:     make(chan Event, 1),
		done:       make(chan struct{}),
		logger:     opts.Logger,
		pending:    make(map[string]struct{}),
	}

	if err := w.addTree(absRoot); err != nil {
		fw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.watchLoop()

	return w, nil
}

// Events delivers debounced change batches. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher and closes the Events channel. Later calls
// return the first call's result.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

// addTree registers dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}

// ignored reports whether abs lies inside the storage directory.
func (w *Watcher) ignored(abs string) bool {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	return rel == w.storageDir || strings.HasPrefix(rel, w.storageDir+"/")
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()
	defer close(w.events)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handleFSEvent(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		case <-timer.C:
			w.flush()
		}
	}
}

// handleFSEvent records event and reports whether it is relevant.
func (w *Watcher) handleFSEvent(event fsnotify.Event) bool {
	if w.ignored(event.Name) {
		return false
	}
	if event.Op == fsnotify.Chmod {
		return false
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("adding new directory to watcher", zap.Error(err))
			}
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}

	w.mu.Lock()
	w.pending[filepath.ToSlash(rel)] = struct{}{}
	w.mu.Unlock()

	w.logger.Debug("working tree event",
		zap.String("path", rel),
		zap.String("op", event.Op.String()))
	return true
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	select {
	case w.events <- Event{Paths: paths}:
	case <-w.done:
	}
}
