package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"platter/internal/api"
	"platter/internal/binning"
	"platter/internal/binwatch"
	"platter/internal/catalog"
	"platter/internal/config"
	"platter/internal/logging"
)

// Daemon coordinates the catalog services and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *catalog.Store

	catalogSvc *api.CatalogService
	binningSvc *api.BinningService
	reportSvc  *api.ReportService

	lockPath string
	lock     *flock.Flock

	apiServer *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	engine := binning.NewEngine(store, logger)
	watcher := binwatch.NewWatcher(store, engine, logger)

	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		catalogSvc: api.NewCatalogService(store, watcher, logger),
		binningSvc: api.NewBinningService(store, engine, watcher, logger),
		reportSvc:  api.NewReportService(store, logger),
		lockPath:   cfg.LockPath(),
		lock:       flock.New(cfg.LockPath()),
	}

	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiServer = server
	return d, nil
}

// Start acquires the daemon lock and brings up the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another platter daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if d.apiServer != nil {
		if err := d.apiServer.start(runCtx); err != nil {
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("platter daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.apiServer != nil {
		d.apiServer.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("platter daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start has completed without a matching Stop.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the single-instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
