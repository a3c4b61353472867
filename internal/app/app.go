package app

import (
	"context"
	"fmt"

	"github.com/five82/mycoach/internal/screens"
	"github.com/five82/mycoach/internal/ui"
)

// Run boots the mycoach TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	opts.LogToFile = true
	env, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	set := screens.NewSet(env.API, env.Logger)
	defer set.Close()

	if opts.MetricsAddr != "" {
		serveMetrics(ctx, opts.MetricsAddr, env.Metrics.Handler(), env.Logger)
	}

	// Start background poller
	StartPoller(ctx, set, env.Config.PollInterval, env.Logger)

	env.Logger.Info("mycoach started", "server", env.Transport.BaseURL(), "poll", env.Config.PollInterval)
	uiOpts := ui.Options{
		Context:   ctx,
		Screens:   set,
		Settings:  env,
		LogFile:   env.Config.LogFile,
		ThemeName: env.Prefs.Theme,
		Logger:    env.Logger,
	}
	if err := ui.Run(uiOpts); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
