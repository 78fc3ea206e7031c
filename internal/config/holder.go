package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Holder keeps the current device configuration and supports atomic
// reloading from file. Reloads are all-or-nothing: if the new file fails to
// parse or validate, the previous config stays active and the error is
// returned.
type Holder struct {
	mu      sync.RWMutex
	current *Config

	path    string
	watcher *fsnotify.Watcher
	logger  *logrus.Logger

	// notify is invoked with the new snapshot after a successful reload
	// that actually changed something. May be nil.
	notify func(*Config)
}

// NewHolder creates a holder around an initial, already validated config.
func NewHolder(initial *Config, path string, logger *logrus.Logger, notify func(*Config)) *Holder {
	return &Holder{
		current: initial.Clone(),
		path:    path,
		logger:  logger,
		notify:  notify,
	}
}

// Get returns a copy of the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Reload re-reads the config file, overlays the environment and validates
// the result before swapping it in.
func (h *Holder) Reload() error {
	cfg, err := Load(h.path)
	if err != nil {
		h.logger.WithError(err).Error("Config reload failed to load")
		return fmt.Errorf("load config: %w", err)
	}
	if err := ApplyEnv(cfg, h.logger); err != nil {
		h.logger.WithError(err).Error("Config reload failed on environment overlay")
		return fmt.Errorf("apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		h.logger.WithError(err).Error("Config reload failed validation, keeping previous config")
		return fmt.Errorf("validate config: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = cfg
	h.mu.Unlock()

	changes := Diff(old, cfg)
	if len(changes) == 0 {
		h.logger.Debug("Config reloaded, no effective changes")
		return nil
	}
	for _, ch := range changes {
		h.logger.WithFields(logrus.Fields{
			"field": ch.Field,
			"old":   ch.Old,
			"new":   ch.New,
		}).Info("Config changed")
	}

	if h.notify != nil {
		h.notify(cfg.Clone())
	}
	return nil
}

// StartWatcher begins watching the config file and reloading on change.
// It returns once the watcher is installed; the watch loop runs until ctx
// is cancelled.
func (h *Holder) StartWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(h.path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", h.path, err)
	}
	h.watcher = watcher
	h.logger.WithField("path", h.path).Info("Watching config file for changes")

	go h.watchLoop(ctx)
	return nil
}

// watchLoop debounces bursts of write events (editors tend to produce
// several per save) into a single reload.
func (h *Holder) watchLoop(ctx context.Context) {
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			_ = h.watcher.Close()
			h.logger.Debug("Config watcher stopped")
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			h.logger.WithField("op", event.Op.String()).Debug("Config file changed on disk")
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(ReloadDebounce, func() {
				if err := h.Reload(); err != nil {
					h.logger.WithError(err).Warn("Automatic config reload failed")
				}
			})

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.WithError(err).Warn("Config watcher error")
		}
	}
}

// Stop closes the underlying watcher, if any.
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}
