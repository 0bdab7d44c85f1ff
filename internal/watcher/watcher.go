// Package watcher reloads selected configuration at runtime. It watches
// the .env file and applies changes that are safe to pick up without a
// restart, currently just the log level.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/linkvaultapp/linkvault-server/internal/config"
	"github.com/linkvaultapp/linkvault-server/internal/logger"
)

// settleDelay is how long a change must sit quiet before it is applied.
// Editors tend to fire several write events per save.
const settleDelay = 250 * time.Millisecond

// ConfigWatcher watches the env file and applies live-reloadable
// settings to the logger.
type ConfigWatcher struct {
	envFile string
	log     *logger.Logger
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
	once sync.Once
}

// New creates a watcher for the given env file. The file itself does
// not have to exist yet; its directory does.
func New(envFile string, log *logger.Logger) (*ConfigWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	// Watch the directory, not the file. Editors replace files on save,
	// which would silently drop a watch on the file itself.
	dir := filepath.Dir(envFile)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &ConfigWatcher{
		envFile: filepath.Clean(envFile),
		log:     log,
		watcher: fsw,
		done:    make(chan struct{}),
	}, nil
}

// Start processes file events until the context is cancelled or Stop is
// called. Blocks; run it in a goroutine.
func (w *ConfigWatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and releases resources.
func (w *ConfigWatcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		w.watcher.Close()
	})
}

func (w *ConfigWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.envFile {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	// Debounce; apply once the file stops changing.
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(settleDelay, w.applyChanges)
}

// applyChanges re-reads the env file and applies live-reloadable keys.
func (w *ConfigWatcher) applyChanges() {
	value, ok := config.ReadEnvFileValue(w.envFile, "LOG_LEVEL")
	if !ok {
		return
	}

	level := logger.ParseLevel(value)
	if level == w.log.Level() {
		return
	}

	w.log.SetLevel(level)
	w.log.Info("log level changed", "level", value)
}
