package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"platter/internal/api"
	"platter/internal/binning"
	"platter/internal/binwatch"
	"platter/internal/catalog"
	"platter/internal/config"
	"platter/internal/importer"
	"platter/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// appServices bundles the store and service layer for one command
// invocation.
type appServices struct {
	cfg      *config.Config
	store    *catalog.Store
	catalog  *api.CatalogService
	binning  *api.BinningService
	reports  *api.ReportService
	importer *importer.Importer
}

// withServices opens the catalog store, runs fn, and closes the store again.
// Command output goes through the command's own writer, so the service
// loggers stay quiet.
func (c *commandContext) withServices(fn func(*appServices) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := logging.NewNop()
	engine := binning.NewEngine(store, logger)
	watcher := binwatch.NewWatcher(store, engine, logger)

	app := &appServices{
		cfg:      cfg,
		store:    store,
		catalog:  api.NewCatalogService(store, watcher, logger),
		binning:  api.NewBinningService(store, engine, watcher, logger),
		reports:  api.NewReportService(store, logger),
		importer: importer.New(store, watcher, logger),
	}
	return fn(app)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
