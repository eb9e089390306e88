package recipe

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher holds the latest successfully loaded version of a recipe book file
// and reloads it when the file changes on disk.
type Watcher struct {
	path     string
	mu       sync.RWMutex
	current  *Book
	onChange []func(*Book)
	onError  []func(error)
}

// NewWatcher creates a Watcher and performs the initial load.
func NewWatcher(path string) (*Watcher, error) {
	b, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{path: path, current: b}, nil
}

// Book returns the current (latest) book.
func (w *Watcher) Book() *Book {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// OnChange registers a callback invoked with every successfully reloaded book.
func (w *Watcher) OnChange(fn func(*Book)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// OnError registers a callback invoked when a reload fails. The previous
// book stays current.
func (w *Watcher) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = append(w.onError, fn)
}

// Watch reloads the book on file changes until ctx is done.
// Watch returns once the watcher is installed.
func (w *Watcher) Watch(ctx context.Context) error {
	return WatchFile(ctx, w.path, func() { w.Reload() }, w.notifyError)
}

// WatchFile calls onWrite after every write to path, and onError for
// watcher errors, until ctx is done. The parent directory is watched so
// editors that replace the file on save are followed. WatchFile returns
// once the watcher is installed.
func WatchFile(ctx context.Context, path string, onWrite func(), onError func(error)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: add %s: %w", path, dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					onWrite()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Reload forces an immediate re-read of the book file and notifies
// OnChange or OnError callbacks.
func (w *Watcher) Reload() (*Book, error) {
	b, err := Load(w.path)
	if err != nil {
		w.notifyError(err)
		return nil, err
	}
	w.mu.Lock()
	w.current = b
	callbacks := make([]func(*Book), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(b)
	}
	return b, nil
}

func (w *Watcher) notifyError(err error) {
	w.mu.RLock()
	callbacks := make([]func(error), len(w.onError))
	copy(callbacks, w.onError)
	w.mu.RUnlock()
	for _, fn := range callbacks {
		fn(err)
	}
}
