package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bastndev/bracketlens/internal/logging"
	"github.com/bastndev/bracketlens/pkg/config"
)

// configWatcher watches a config file and reloads it on change. It
// watches the parent directory rather than the file itself: editors
// commonly save via rename, which would otherwise drop the watch.
type configWatcher struct {
	fw   *fsnotify.Watcher
	path string
	done chan struct{}
}

// WatchConfig starts watching the config file at path. On every change
// the file is reloaded; a valid config replaces the current one and
// empties all caches, a broken one is logged and ignored.
func (e *Engine) WatchConfig(path string) error {
	if e.watcher != nil {
		return fmt.Errorf("config watcher already active for %s", e.watcher.path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &configWatcher{
		fw:   fw,
		path: abs,
		done: make(chan struct{}),
	}
	e.watcher = w

	go e.watchLoop(w)
	return nil
}

func (e *Engine) watchLoop(w *configWatcher) {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			e.reloadConfig(w.path)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			e.log.Warn("config watcher error", logging.FieldError, err)
		case <-w.done:
			return
		}
	}
}

// reloadConfig reads and applies the config file; failures keep the
// current configuration.
func (e *Engine) reloadConfig(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.log.Warn("config changed but unreadable, keeping current",
			logging.FieldConfig, path,
			logging.FieldError, err)
		return
	}

	cfg, err := config.FromYAML(data)
	if err != nil {
		e.log.Warn("config changed but invalid, keeping current",
			logging.FieldConfig, path,
			logging.FieldError, err)
		return
	}

	e.ApplyConfig(cfg)
	e.log.Info("configuration reloaded",
		logging.FieldConfig, path,
		logging.FieldMode, cfg.Mode)
}

// ApplyConfig swaps in a new configuration, resizes the caches, updates
// the debounce window, and empties all caches so nothing derived under
// the old settings survives.
func (e *Engine) ApplyConfig(cfg *config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()

	e.parseStates.SetCapacity(cfg.ParseStateCache.Capacity)
	e.parseStates.SetTTL(cfg.ParseStateCache.TTL)
	e.tokens.SetCapacity(cfg.TokenCache.Capacity)
	e.tokens.SetTTL(cfg.TokenCache.TTL)
	e.results.SetCapacity(cfg.ResultCache.Capacity)
	e.results.SetTTL(cfg.ResultCache.TTL)
	e.editors.SetCapacity(cfg.EditorCache.Capacity)
	e.editors.SetTTL(cfg.EditorCache.TTL)

	e.sched.setWindow(cfg.DebounceBase, cfg.DebounceMax)
	e.ClearAll()
}

func (w *configWatcher) stop() {
	close(w.done)
	w.fw.Close()
}
