// Package cmdutil holds the state shared by the bencommon subcommands.
package cmdutil

import (
	"os"
	"sync"
	"time"

	"github.com/bigearthnet-go/bencommon/internal/buildinfo"
	"github.com/bigearthnet-go/bencommon/internal/catalog"
	"github.com/bigearthnet-go/bencommon/internal/conf"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/httpclient"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/observability"
	"github.com/bigearthnet-go/bencommon/internal/resource"
)

// telemetryFlushTimeout bounds the wait for pending Sentry events on exit.
const telemetryFlushTimeout = 2 * time.Second

// Env is created once in main and filled by the root command before a
// subcommand runs.
type Env struct {
	Settings *conf.Settings
	Build    *buildinfo.Context

	central *logger.CentralLogger

	metricsOnce sync.Once
	metrics     *observability.Metrics
	metricsErr  error

	catalogOnce sync.Once
	catalog     *catalog.Catalog
	catalogErr  error
}

// NewEnv creates an environment with empty settings.
func NewEnv(build *buildinfo.Context) *Env {
	return &Env{Settings: &conf.Settings{}, Build: build}
}

// Load reads the configuration. An empty configFile searches the default
// locations.
func (e *Env) Load(configFile string) error {
	s, err := conf.Load(configFile)
	if err != nil {
		return err
	}
	*e.Settings = *s
	return nil
}

// InitLogging installs the global logger. level overrides the configured
// default level when non-empty.
func (e *Env) InitLogging(level string) error {
	cfg := e.Settings.Logging
	if e.Settings.Debug && level == "" {
		level = "debug"
	}
	if level != "" {
		cfg.DefaultLevel = level
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = level
			cfg.Console = &console
		}
	}
	central, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return err
	}
	logger.SetGlobal(central)
	e.central = central
	return nil
}

// InitTelemetry enables Sentry reporting when configured.
func (e *Env) InitTelemetry() error {
	t := e.Settings.Telemetry
	if !t.Enabled {
		return nil
	}
	return errors.InitSentry(errors.SentryOptions{
		DSN:         t.DSN,
		Release:     e.Build.Release(),
		Environment: t.Environment,
		Debug:       e.Settings.Debug,
	})
}

// Close flushes telemetry and the log file.
func (e *Env) Close() {
	errors.FlushTelemetry(telemetryFlushTimeout)
	if e.central != nil {
		_ = e.central.Flush()
		_ = e.central.Close()
	}
}

// ResourceDir returns the directory holding the lookup tables.
func (e *Env) ResourceDir() (string, error) {
	return e.Settings.ResourceDir()
}

// Metrics returns the process wide metric registry.
func (e *Env) Metrics() (*observability.Metrics, error) {
	e.metricsOnce.Do(func() {
		e.metrics, e.metricsErr = observability.NewMetrics()
	})
	return e.metrics, e.metricsErr
}

// Catalog returns a catalog over the tables in the resource directory. The
// directory must exist; run "bencommon fetch" first.
func (e *Env) Catalog() (*catalog.Catalog, error) {
	e.catalogOnce.Do(func() {
		dir, err := e.ResourceDir()
		if err != nil {
			e.catalogErr = err
			return
		}
		if _, err := os.Stat(dir); err != nil {
			e.catalogErr = errors.Newf("resource directory %s is not readable, run \"bencommon fetch\" first", dir).
				Component("resource").
				Category(errors.CategoryResource).
				FileContext(dir).
				Build()
			return
		}
		var opts []resource.Option
		if m, err := e.Metrics(); err == nil {
			opts = append(opts, resource.WithMetrics(m.Resource))
		}
		e.catalog = catalog.New(resource.NewDirLoader(dir, opts...))
	})
	return e.catalog, e.catalogErr
}

// Fetcher returns a fetcher writing into the resource directory.
func (e *Env) Fetcher() (*resource.Fetcher, error) {
	dir, err := e.ResourceDir()
	if err != nil {
		return nil, err
	}
	cfg := httpclient.DefaultConfig()
	if e.Settings.Fetch.Timeout > 0 {
		cfg.DefaultTimeout = e.Settings.Fetch.Timeout
	}
	cfg.UserAgent = "bencommon/" + e.Build.GetVersion()

	opts := []resource.FetcherOption{resource.WithHTTPClient(httpclient.New(&cfg))}
	if m, err := e.Metrics(); err == nil {
		opts = append(opts, resource.WithFetchMetrics(m.Resource))
	}
	return resource.NewFetcher(dir, opts...), nil
}
