package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/mycoach/internal/app"
	"github.com/five82/mycoach/internal/config"
	"github.com/five82/mycoach/internal/prefs"
)

func (r *root) dashboardCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals across all clients",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			stats, err := env.API.GetDashboard(cmd.Context())
			if err != nil {
				return fail("load dashboard", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			return printTable(cmd.OutOrStdout(), []string{"Metric", "Value"}, [][]string{
				{"Clients", itoa(stats.TotalClients)},
				{"Sessions", itoa(stats.TotalSessions)},
				{"Hours", formatHours(stats.TotalHours)},
				{"Revenue", stats.TotalRevenue.Format()},
				{"Paid", stats.TotalPaid.Format()},
				{"Outstanding", stats.TotalOutstanding.Format()},
			})
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (r *root) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration or change the server",
	}
	cmd.AddCommand(r.configShowCommand(), r.configSetURLCommand())
	return cmd
}

func (r *root) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			configPath := r.opts.ConfigPath
			if configPath == "" {
				configPath = config.DefaultPath()
			}
			prefsPath := r.opts.PrefsPath
			if prefsPath == "" {
				prefsPath = prefs.DefaultPath()
			}
			cfg := env.Config
			return printTable(cmd.OutOrStdout(), []string{"Setting", "Value"}, [][]string{
				{"server", env.BaseURL()},
				{"config file", configPath},
				{"prefs file", prefsPath},
				{"connect_timeout", cfg.ConnectTimeout.String()},
				{"read_timeout", cfg.ReadTimeout.String()},
				{"poll_interval", cfg.PollInterval.String()},
				{"log_file", cfg.LogFile},
				{"log_level", cfg.LogLevel},
				{"theme", env.Prefs.Theme},
			})
		}),
	}
}

func (r *root) configSetURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-url <url>",
		Short: "Save the server URL used by later runs",
		Args:  cobra.ExactArgs(1),
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			if err := env.SetServerURL(args[0]); err != nil {
				return fmt.Errorf("failed to set server: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Server set to", env.BaseURL())
			return err
		}),
	}
}
