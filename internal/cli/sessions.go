package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/app"
	"github.com/five82/mycoach/internal/screens"
	"github.com/five82/mycoach/internal/validation"
)

func (r *root) sessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and record coaching sessions",
	}
	cmd.AddCommand(r.sessionsListCommand(), r.sessionsAddCommand(), r.sessionsRemoveCommand())
	return cmd
}

func (r *root) sessionsListCommand() *cobra.Command {
	var (
		clientID int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, optionally for one client",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			sessions, err := env.API.ListSessions(cmd.Context(), clientID)
			if err != nil {
				return fail("list sessions", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), sessions)
			}
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				billed := "no"
				if s.Billed {
					billed = "yes"
				}
				rows = append(rows, []string{
					itoa(s.ID), s.Date, s.ClientName, strconv.Itoa(s.DurationMinutes),
					billed, s.Amount.Format(), api.Deref(s.Notes),
				})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "Date", "Client", "Minutes", "Billed", "Amount", "Notes"}, rows)
		}),
	}
	cmd.Flags().IntVar(&clientID, "client", 0, "only sessions of this client id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (r *root) sessionsAddCommand() *cobra.Command {
	var (
		form     validation.SessionForm
		unbilled bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a session; billed unless --unbilled",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			form.Billed = !unbilled
			req, err := validation.Session(form)
			if err != nil {
				return fail("record session", err)
			}
			ack, err := screens.NewSessions(env.API, env.Logger).Create(cmd.Context(), req)
			if err != nil {
				return fail("record session", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
	flags := cmd.Flags()
	flags.IntVar(&form.ClientID, "client", 0, "client id")
	flags.StringVar(&form.Date, "date", time.Now().Format(api.DateLayout), "session date (YYYY-MM-DD)")
	flags.StringVar(&form.Duration, "minutes", "60", "duration in minutes")
	flags.StringVar(&form.Notes, "notes", "", "free-form notes")
	flags.BoolVar(&unbilled, "unbilled", false, "do not bill this session")
	return cmd
}

func (r *root) sessionsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a session",
		Args:    cobra.ExactArgs(1),
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			id, err := parseID("session", args[0])
			if err != nil {
				return err
			}
			ack, err := screens.NewSessions(env.API, env.Logger).Delete(cmd.Context(), id)
			if err != nil {
				return fail("delete session", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
}
