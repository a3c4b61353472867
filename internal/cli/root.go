// Package cli implements the mycoach command line: the TUI as the root
// command plus one-shot subcommands for scripting against the backend.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/mycoach/internal/app"
)

// cliLogLevel keeps subcommand output clean unless --log-level asks otherwise.
const cliLogLevel = "warn"

// RunFunc starts the interactive UI.
type RunFunc func(ctx context.Context, opts app.Options) error

type root struct {
	cmd  *cobra.Command
	opts app.Options
	run  RunFunc
}

// NewRootCommand builds the command tree. run starts the TUI when no
// subcommand is given; pass app.Run.
func NewRootCommand(run RunFunc) *cobra.Command {
	r := &root{run: run}
	r.cmd = &cobra.Command{
		Use:   "mycoach",
		Short: "Terminal client for the coaching backend",
		Long: `mycoach manages coaching clients, sessions, payments and calendar events
on a coaching backend over its REST API.

Run without a command to open the interactive UI. Subcommands perform a
single request and print the result.

EXAMPLES:
  mycoach                                   # Open the UI
  mycoach --server http://coach.local:8000  # Open the UI against another server
  mycoach clients list                      # List clients with balances
  mycoach sessions add --client 3 --minutes 90
  mycoach payments add --client 3 --amount 120
  mycoach calendar events --days 7
  mycoach config set-url http://coach.local:8000

CONFIGURATION:
  Server URL priority: --server > saved preference > MYCOACH_SERVER_URL > config.toml
  Config file:  ~/.config/mycoach/config.toml
  Preferences:  ~/.config/mycoach/prefs.toml
  Log level:    --log-level or MYCOACH_LOG_LEVEL`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd.Context(), r.opts)
		},
	}

	flags := r.cmd.PersistentFlags()
	flags.StringVar(&r.opts.ConfigPath, "config", "", "config file (default ~/.config/mycoach/config.toml)")
	flags.StringVar(&r.opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/mycoach/prefs.toml)")
	flags.StringVar(&r.opts.ServerURL, "server", "", "backend base URL (overrides preferences and config)")
	flags.StringVar(&r.opts.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	r.cmd.Flags().StringVar(&r.opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	r.cmd.AddCommand(
		r.dashboardCommand(),
		r.clientsCommand(),
		r.sessionsCommand(),
		r.paymentsCommand(),
		r.calendarCommand(),
		r.configCommand(),
	)
	return r.cmd
}

// withEnv bootstraps configuration and the API client for a subcommand.
func (r *root) withEnv(fn func(cmd *cobra.Command, env *app.Env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		opts := r.opts
		if opts.LogLevel == "" {
			opts.LogLevel = cliLogLevel
		}
		env, err := app.Bootstrap(opts)
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()
		return fn(cmd, env, args)
	}
}

func parseID(kind, arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, arg)
	}
	return id, nil
}
