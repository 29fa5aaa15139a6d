// Package container provides dependency injection for the sri-extractor
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"
	"time"

	"github.com/cristhianchimbo50/sri-extractor/internal/accounting"
	"github.com/cristhianchimbo50/sri-extractor/internal/browser"
	"github.com/cristhianchimbo50/sri-extractor/internal/config"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/portal"
	"github.com/cristhianchimbo50/sri-extractor/internal/registry"
	"github.com/cristhianchimbo50/sri-extractor/internal/storage"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	layout    storage.Layout
	registry  *registry.Registry
	archive   *storage.Archive
	launcher  portal.Launcher
	manager   *portal.Manager
	extractor *portal.Extractor

	accounting    *accounting.Repository
	accountingErr error
}

// Option customizes container construction.
type Option func(*buildOptions)

type buildOptions struct {
	logger   logging.Logger
	launcher portal.Launcher
	progress portal.ProgressFunc
	clock    portal.Clock
}

// WithLogger replaces the logger built from configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *buildOptions) { o.logger = logger }
}

// WithLauncher replaces the Chromium launcher.
func WithLauncher(l portal.Launcher) Option {
	return func(o *buildOptions) { o.launcher = l }
}

// WithProgress forwards portal progress events to fn.
func WithProgress(fn portal.ProgressFunc) Option {
	return func(o *buildOptions) { o.progress = fn }
}

// WithClock replaces the clock of the portal polling loops.
func WithClock(c portal.Clock) Option {
	return func(o *buildOptions) { o.clock = c }
}

// NewContainer creates and wires all application dependencies. A nil cfg
// means the built-in defaults.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	logger := bo.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	layout, err := storage.NewLayout(cfg.Storage.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}

	reg := registry.New(layout.RegistryPath(), logger)
	archive := storage.NewArchive(layout, reg, logger)

	launcher := bo.launcher
	if launcher == nil {
		launcher = browser.NewLauncher(browser.Config{
			Headless:   cfg.Browser.Headless,
			Bin:        cfg.Browser.Bin,
			SlowMotion: cfg.SlowMotion(),
		}, logger)
	}

	var portalOpts []portal.Option
	if bo.progress != nil {
		portalOpts = append(portalOpts, portal.WithProgress(bo.progress))
	}
	if bo.clock != nil {
		portalOpts = append(portalOpts, portal.WithClock(bo.clock))
	}

	popts := PortalOptions(cfg)
	manager := portal.NewManager(launcher, layout.SessionStatePath(), popts, logger, portalOpts...)
	extractor := portal.NewExtractor(launcher, archive, reg, popts, logger, portalOpts...)

	c := &Container{
		logger:    logger,
		config:    cfg,
		layout:    layout,
		registry:  reg,
		archive:   archive,
		launcher:  launcher,
		manager:   manager,
		extractor: extractor,
	}

	c.accounting, c.accountingErr = accounting.Open(AccountingConfig(cfg), logger)

	logger.Debug("Container initialized successfully",
		logging.Field{Key: logging.FieldFolder, Value: layout.Root},
		logging.Field{Key: "oracle_configured", Value: cfg.HasOracle()})

	return c, nil
}

// PortalOptions maps configuration onto the portal bounds. Unset values keep
// the portal defaults.
func PortalOptions(cfg *config.Config) portal.Options {
	opts := portal.DefaultOptions()
	opts.LoginAttempts = cfg.Portal.LoginAttempts
	opts.ProfileTimeout = time.Duration(cfg.Portal.ProfileTimeoutSeconds) * time.Second
	opts.NavigationTimeout = time.Duration(cfg.Portal.NavigationTimeoutSeconds) * time.Second
	opts.CaptchaAttempts = cfg.Portal.CaptchaAttempts
	opts.PanelAttempts = cfg.Portal.PanelAttempts
	return opts
}

// AccountingConfig maps configuration onto the Oracle repository settings.
func AccountingConfig(cfg *config.Config) accounting.Config {
	return accounting.Config{
		Host:           cfg.Oracle.Host,
		Port:           cfg.Oracle.Port,
		ServiceName:    cfg.Oracle.ServiceName,
		User:           cfg.Oracle.User,
		Password:       cfg.Oracle.Password,
		RetentionQuery: cfg.Oracle.RetentionQuery,
		Timeout:        cfg.OracleTimeout(),
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLayout returns the local archive layout.
func (c *Container) GetLayout() storage.Layout {
	return c.layout
}

// GetRegistry returns the disabled-issuer registry.
func (c *Container) GetRegistry() *registry.Registry {
	return c.registry
}

// GetArchive returns the local invoice archive.
func (c *Container) GetArchive() *storage.Archive {
	return c.archive
}

// GetSessionManager returns the portal session manager.
func (c *Container) GetSessionManager() *portal.Manager {
	return c.manager
}

// GetExtractor returns the received-invoices extractor.
func (c *Container) GetExtractor() *portal.Extractor {
	return c.extractor
}

// GetAccounting returns the accounting repository, or the reason it is
// unavailable (accounting.ErrNotConfigured when no host is set).
func (c *Container) GetAccounting() (*accounting.Repository, error) {
	return c.accounting, c.accountingErr
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	var firstErr error
	if err := c.manager.Close(); err != nil {
		firstErr = err
	}
	if c.accounting != nil {
		if err := c.accounting.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
