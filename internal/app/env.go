package app

import (
	"fmt"
	"log/slog"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/config"
	"github.com/five82/mycoach/internal/logging"
	"github.com/five82/mycoach/internal/prefs"
	"github.com/five82/mycoach/internal/transport"
)

// Options configure the mycoach application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/mycoach/prefs.toml
	ServerURL   string // overrides prefs and config
	LogLevel    string // overrides config
	MetricsAddr string // empty disables the metrics endpoint
	LogToFile   bool   // log to the configured file instead of stderr
}

// Env is everything built from configuration that the views share.
type Env struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *slog.Logger
	Metrics   *transport.Metrics
	Transport *transport.Transport
	API       *api.Service

	closeLog func() error
}

// Bootstrap loads configuration, sets up logging and binds the transport to
// the resolved server URL.
func Bootstrap(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	userPrefs := prefs.Load(opts.PrefsPath)

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logOpts := logging.Options{Level: level}
	if opts.LogToFile {
		logOpts.File = cfg.LogFile
	}
	logger, closeLog, err := logging.Setup(logOpts)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	metrics := transport.NewMetrics()
	tr := transport.New(transport.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		Logger:         logger,
		Metrics:        metrics,
	})
	serverURL := prefs.ResolveServerURL(opts.ServerURL, userPrefs, cfg)
	if err := tr.Configure(serverURL); err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("configure server url: %w", err)
	}

	return &Env{
		Config:    cfg,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
		Metrics:   metrics,
		Transport: tr,
		API:       api.NewService(tr),
		closeLog:  closeLog,
	}, nil
}

// BaseURL returns the server the transport currently targets.
func (e *Env) BaseURL() string {
	return e.Transport.BaseURL()
}

// SetServerURL points the transport at a new base URL and saves it as the
// user's preference. The transport is left untouched when the URL is invalid.
func (e *Env) SetServerURL(raw string) error {
	if err := e.Transport.Configure(raw); err != nil {
		return err
	}
	e.Prefs.ServerURL = e.Transport.BaseURL()
	if err := prefs.Save(e.PrefsPath, e.Prefs); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

// SetTheme saves the theme preference.
func (e *Env) SetTheme(name string) error {
	e.Prefs.Theme = name
	return prefs.Save(e.PrefsPath, e.Prefs)
}

// Close releases the transport and the log file.
func (e *Env) Close() error {
	e.Transport.Close()
	if e.closeLog != nil {
		return e.closeLog()
	}
	return nil
}
