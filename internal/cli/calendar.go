package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/app"
	"github.com/five82/mycoach/internal/screens"
	"github.com/five82/mycoach/internal/validation"
)

var errNotConnected = errors.New("no calendar connected")

func (r *root) calendarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect and edit the connected calendar",
	}
	cmd.AddCommand(
		r.calendarStatusCommand(),
		r.calendarEventsCommand(),
		r.calendarAddCommand(),
		r.calendarRemoveCommand(),
	)
	return cmd
}

func (r *root) calendarStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a calendar is connected",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			status, err := env.API.CalendarStatus(cmd.Context())
			if err != nil {
				return fail("check calendar", err)
			}
			text := "disconnected"
			if status.Connected {
				text = "connected"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Calendar:", text)
			return err
		}),
	}
}

func (r *root) calendarEventsCommand() *cobra.Command {
	var (
		days   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List upcoming events",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			holder := screens.NewCalendar(env.API, env.Logger)
			if err := holder.Load(cmd.Context(), days); err != nil {
				return fail("list events", err)
			}
			calendar := holder.Snapshot().Data
			if !calendar.Connected {
				return fail("list events", errNotConnected)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), calendar.Events)
			}
			rows := make([][]string, 0, len(calendar.Events))
			for _, e := range calendar.Events {
				rows = append(rows, []string{e.ID, e.Start, e.End, e.Title, e.Description})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "Start", "End", "Title", "Description"}, rows)
		}),
	}
	cmd.Flags().IntVar(&days, "days", api.DefaultEventDays, "look-ahead in days")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (r *root) calendarAddCommand() *cobra.Command {
	var form validation.EventForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a calendar event",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			req, err := validation.CalendarEvent(form)
			if err != nil {
				return fail("create event", err)
			}
			ack, err := screens.NewCalendar(env.API, env.Logger).Create(cmd.Context(), req)
			if err != nil {
				return fail("create event", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
	flags := cmd.Flags()
	flags.StringVar(&form.Title, "title", "", "event title")
	flags.StringVar(&form.Start, "start", "", "start time, "+validation.EventStartLayout+" (local) or RFC 3339")
	flags.StringVar(&form.Duration, "minutes", "60", "duration in minutes")
	flags.StringVar(&form.Description, "description", "", "event description")
	return cmd
}

func (r *root) calendarRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <event-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a calendar event",
		Args:    cobra.ExactArgs(1),
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			ack, err := screens.NewCalendar(env.API, env.Logger).Delete(cmd.Context(), args[0])
			if err != nil {
				return fail("delete event", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
}
