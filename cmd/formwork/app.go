package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/formwork/internal/config"
	"github.com/aretw0/formwork/internal/logging"
	"github.com/aretw0/formwork/pkg/adapters/file"
	"github.com/aretw0/formwork/pkg/adapters/loam"
	"github.com/aretw0/formwork/pkg/adapters/memory"
	"github.com/aretw0/formwork/pkg/adapters/redis"
	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/observability"
	"github.com/aretw0/formwork/pkg/persistence/middleware"
	"github.com/aretw0/formwork/pkg/ports"
	"github.com/aretw0/formwork/pkg/schema"
	"github.com/aretw0/formwork/pkg/session"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/spf13/cobra"
)

// app holds the wiring shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   ports.DefinitionStore
	locker  ports.DistributedLocker
	metrics *observability.Metrics
	kinds   schema.Kinds
	closers []func() error
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Storage.Path = dir
	}
	if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, cfg.Validate()
}

// newApp builds the store and logger described by cfg. Logs go to logOut.
func newApp(cfg config.Config, logOut io.Writer) (*app, error) {
	kinds, err := schema.LoadKinds(cfg.Designer.SchemaFile)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel(), logging.WithOutput(logOut)),
		kinds:  kinds,
	}

	switch cfg.Storage.Driver {
	case "memory":
		a.store = memory.NewStore()
	case "file":
		a.store = file.New(cfg.Storage.Path, file.WithFormat(file.Format(cfg.Storage.Format)))
	case "redis":
		opts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		a.store = rs
		a.locker = redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
		a.closers = append(a.closers, rs.Close)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	mws, err := storeMiddleware(cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = middleware.Chain(a.store, mws...)

	a.logger.Debug("Storage ready", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path,
		"encrypted", cfg.Storage.EncryptionKey != "", "redacted", len(cfg.Storage.Redact))
	return a, nil
}

// storeMiddleware builds the redaction and encryption layers. Redaction runs first
// so masked values are what gets encrypted.
func storeMiddleware(cfg config.StorageConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

// enableMetrics routes store calls through the Prometheus collectors.
func (a *app) enableMetrics() *observability.Metrics {
	if a.metrics == nil {
		a.metrics = observability.NewMetrics()
		a.store = observability.InstrumentStore(a.store, a.metrics)
	}
	return a.metrics
}

func (a *app) designerOptions() []designer.Option {
	d := a.cfg.Designer
	return []designer.Option{
		designer.WithLogger(a.logger),
		designer.WithGrid(designer.GridSettings{Size: d.GridSize, Snap: d.Snap}),
		designer.WithCanvas(domain.Size{Width: d.CanvasWidth, Height: d.CanvasHeight}, d.Zoom),
		designer.WithDuplicateOffset(d.DuplicateOffset),
	}
}

// newManager creates the session manager. extra options are appended last.
func (a *app) newManager(extra ...session.Option) *session.Manager {
	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithAutosave(a.cfg.Autosave),
		session.WithDesignerOptions(a.designerOptions()...),
	}
	if a.cfg.Redis.LockTTL > 0 {
		opts = append(opts, session.WithLockTTL(a.cfg.Redis.LockTTL))
	}
	if a.locker != nil {
		opts = append(opts, session.WithLocker(a.locker))
	}
	if m := a.metrics; m != nil {
		opts = append(opts,
			session.WithListener(m.Observe),
			session.WithLifecycle(func(formID string, def *domain.Definition) {
				m.FormOpened(formID, len(tree.IDs(def.Components)))
			}, m.FormClosed),
		)
	}
	return session.NewManager(a.store, append(opts, extra...)...)
}

// templates opens the template library, or returns nil when none is configured.
func (a *app) templates() (ports.TemplateLibrary, error) {
	if a.cfg.Templates.Dir == "" {
		return nil, nil
	}
	lib, err := loam.Open(a.cfg.Templates.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}
	return lib, nil
}

func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// setup loads the configuration and builds the app for a command.
func setup(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logOut)
}
