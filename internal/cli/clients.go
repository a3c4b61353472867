package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/app"
	"github.com/five82/mycoach/internal/screens"
	"github.com/five82/mycoach/internal/validation"
)

func (r *root) clientsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List and manage clients",
	}
	cmd.AddCommand(
		r.clientsListCommand(),
		r.clientsShowCommand(),
		r.clientsAddCommand(),
		r.clientsEditCommand(),
		r.clientsRemoveCommand(),
	)
	return cmd
}

func (r *root) clientsListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients with hours, revenue and balance",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			clients, err := env.API.ListClients(cmd.Context())
			if err != nil {
				return fail("list clients", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), clients)
			}
			rows := make([][]string, 0, len(clients))
			for _, c := range clients {
				rows = append(rows, clientRow(c))
			}
			return printTable(cmd.OutOrStdout(), clientHeaders, rows)
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (r *root) clientsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			id, err := parseID("client", args[0])
			if err != nil {
				return err
			}
			client, err := env.API.GetClient(cmd.Context(), id)
			if err != nil {
				return fail("show client", err)
			}
			return printTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]string{
				{"ID", itoa(client.ID)},
				{"Name", client.Name},
				{"Email", api.Deref(client.Email)},
				{"Phone", api.Deref(client.Phone)},
				{"Hourly rate", client.HourlyRate.Format()},
				{"Hours", formatHours(client.TotalHours)},
				{"Revenue", client.TotalRevenue.Format()},
				{"Paid", client.TotalPaid.Format()},
				{"Balance", client.Balance.Format()},
				{"Notes", api.Deref(client.Notes)},
			})
		}),
	}
}

func addClientFlags(cmd *cobra.Command, form *validation.ClientForm) {
	flags := cmd.Flags()
	flags.StringVar(&form.Name, "name", "", "client name")
	flags.StringVar(&form.Email, "email", "", "email address")
	flags.StringVar(&form.Phone, "phone", "", "phone number")
	flags.StringVar(&form.HourlyRate, "rate", "", "hourly rate, e.g. 80 or 72.50")
	flags.StringVar(&form.Notes, "notes", "", "free-form notes")
}

func (r *root) clientsAddCommand() *cobra.Command {
	var form validation.ClientForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a client",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			req, err := validation.Client(form)
			if err != nil {
				return fail("create client", err)
			}
			ack, err := screens.NewClients(env.API, env.Logger).Create(cmd.Context(), req)
			if err != nil {
				return fail("create client", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
	addClientFlags(cmd, &form)
	return cmd
}

func (r *root) clientsEditCommand() *cobra.Command {
	var changes validation.ClientForm
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a client; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			id, err := parseID("client", args[0])
			if err != nil {
				return err
			}
			holder := screens.NewClient(env.API, env.Logger)
			if err := holder.Load(cmd.Context(), id); err != nil {
				return fail("load client", err)
			}
			current := holder.Snapshot().Data

			form := validation.ClientForm{
				Name:       current.Name,
				Email:      api.Deref(current.Email),
				Phone:      api.Deref(current.Phone),
				Notes:      api.Deref(current.Notes),
				HourlyRate: current.HourlyRate.Format(),
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				form.Name = changes.Name
			}
			if flags.Changed("email") {
				form.Email = changes.Email
			}
			if flags.Changed("phone") {
				form.Phone = changes.Phone
			}
			if flags.Changed("rate") {
				form.HourlyRate = changes.HourlyRate
			}
			if flags.Changed("notes") {
				form.Notes = changes.Notes
			}

			req, err := validation.Client(form)
			if err != nil {
				return fail("update client", err)
			}
			ack, err := holder.Save(cmd.Context(), id, req)
			if err != nil {
				return fail("update client", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
	addClientFlags(cmd, &changes)
	return cmd
}

func (r *root) clientsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a client with their sessions and payments",
		Args:    cobra.ExactArgs(1),
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			id, err := parseID("client", args[0])
			if err != nil {
				return err
			}
			ack, err := screens.NewClients(env.API, env.Logger).Delete(cmd.Context(), id)
			if err != nil {
				return fail("delete client", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
}

var clientHeaders = []string{"ID", "Name", "Email", "Phone", "Rate", "Hours", "Revenue", "Paid", "Balance"}

func clientRow(c api.Client) []string {
	return []string{
		itoa(c.ID),
		c.Name,
		api.Deref(c.Email),
		api.Deref(c.Phone),
		c.HourlyRate.Format(),
		formatHours(c.TotalHours),
		c.TotalRevenue.Format(),
		c.TotalPaid.Format(),
		c.Balance.Format(),
	}
}
