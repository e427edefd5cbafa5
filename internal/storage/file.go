package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/jot/internal/logger"
)

// File persists every key into a single JSON object on disk
// ({"notes": "[...]", "showOnlyFavorites": "false", ...}).
// Writes replace the file atomically through a temp file + rename.
type File struct {
	path   string
	logger logger.Logger

	mu     sync.RWMutex
	values map[string]string

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// OpenFile loads path (a missing file is an empty storage) and creates
// its parent directory.
func OpenFile(path string, log logger.Logger) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	f := &File{
		path:   path,
		logger: log,
		values: make(map[string]string),
	}

	values, err := f.read()
	if err != nil {
		return nil, err
	}
	f.values = values
	return f, nil
}

func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		// An unreadable container loses every key; keep going with nothing
		// rather than refusing to start.
		f.logger.Warn("data file is not valid json, starting empty",
			logger.String("path", f.path),
			logger.Error(err))
		return make(map[string]string), nil
	}
	return values, nil
}

// writeLocked flushes the whole map. Caller holds f.mu.
func (f *File) writeLocked() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".jot-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.writeLocked(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.writeLocked(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

// Keys lists the keys held in the data file.
func (f *File) Keys(_ context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	return keys, nil
}

// Watch reports keys changed by another process editing the data file.
// onChange runs on the watcher goroutine with the list of changed keys;
// our own writes never show up since the cache already holds them.
func (f *File) Watch(onChange func(keys []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: rename-based writes replace the file inode.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch data directory: %w", err)
	}

	f.mu.Lock()
	f.watcher = watcher
	f.stopCh = make(chan struct{})
	stopCh := f.stopCh
	f.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(f.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if changed := f.reload(); len(changed) > 0 && onChange != nil {
					onChange(changed)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("data file watcher error", logger.Error(err))

			case <-stopCh:
				return
			}
		}
	}()

	return nil
}

// reload re-reads the file and returns the keys whose value differs from the cache.
// f.mu is held across the read so a Set cannot land between the read and
// the swap and be reverted by the older snapshot.
func (f *File) reload() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		f.logger.Debug("data file not readable yet", logger.Error(err))
		return nil
	}

	var changed []string
	for k, v := range values {
		if old, ok := f.values[k]; !ok || old != v {
			changed = append(changed, k)
		}
	}
	for k := range f.values {
		if _, ok := values[k]; !ok {
			changed = append(changed, k)
		}
	}
	if len(changed) > 0 {
		f.values = values
	}
	return changed
}

// Close stops the watcher, if any.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher == nil {
		return nil
	}
	close(f.stopCh)
	err := f.watcher.Close()
	f.watcher = nil
	return err
}
