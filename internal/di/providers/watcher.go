package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/linkvaultapp/linkvault-server/internal/config"
	"github.com/linkvaultapp/linkvault-server/internal/logger"
	"github.com/linkvaultapp/linkvault-server/internal/watcher"
)

// ConfigWatcherHandle wraps the config watcher with Shutdownable.
type ConfigWatcherHandle struct {
	*watcher.ConfigWatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ConfigWatcherHandle) Shutdown() error {
	if h.ConfigWatcher == nil {
		return nil
	}
	h.cancel()
	h.Stop()
	return nil
}

// ProvideConfigWatcher provides the env file watcher for live log level
// changes. A missing env file is not an error; the watcher is simply
// not started.
func ProvideConfigWatcher(i do.Injector) (*ConfigWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	w, err := watcher.New(cfg.EnvFile, log)
	if err != nil {
		log.Warn("config watcher unavailable, log level changes need a restart", "error", err)
		return &ConfigWatcherHandle{ConfigWatcher: nil, cancel: func() {}}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	log.Info("Config watcher started", "env_file", cfg.EnvFile)

	return &ConfigWatcherHandle{ConfigWatcher: w, cancel: cancel}, nil
}
