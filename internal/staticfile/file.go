// Package staticfile serves a single JSON file from disk and keeps it in
// memory, reloading whenever the file changes.
package staticfile

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

var emptyObject = []byte("{}")

type File struct {
	path   string
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	content []byte

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// Open reads path and starts watching its directory. A missing file is not an
// error; it is served as an empty object until it appears.
func Open(path string, logger *zap.SugaredLogger) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// editors replace files by rename, so the directory is watched
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	f := &File{
		path:    absPath,
		logger:  logger,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	f.reload()

	f.wg.Add(1)
	go f.watch()

	return f, nil
}

func (f *File) Path() string {
	return f.path
}

// Bytes returns the current content.
func (f *File) Bytes() []byte {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.content == nil {
		return emptyObject
	}
	return f.content
}

func (f *File) Close() error {
	select {
	case <-f.done:
		return nil
	default:
	}
	close(f.done)
	err := f.watcher.Close()
	f.wg.Wait()
	return err
}

func (f *File) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Bytes())
}

func (f *File) watch() {
	defer f.wg.Done()

	for {
		select {
		case <-f.done:
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				f.reload()
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warnw("static file watcher error", "path", f.path, "error", err)
		}
	}
}

func (f *File) reload() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warnw("failed to read static file", "path", f.path, "error", err)
			return
		}
		data = nil
	}

	f.mu.Lock()
	f.content = data
	f.mu.Unlock()

	f.logger.Debugw("static file reloaded", "path", f.path, "bytes", len(data))
}
