package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/app"
	"github.com/five82/mycoach/internal/screens"
	"github.com/five82/mycoach/internal/validation"
)

func (r *root) paymentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "List and record payments",
	}
	cmd.AddCommand(r.paymentsListCommand(), r.paymentsAddCommand(), r.paymentsRemoveCommand())
	return cmd
}

func (r *root) paymentsListCommand() *cobra.Command {
	var (
		clientID int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payments, optionally for one client",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			payments, err := env.API.ListPayments(cmd.Context(), clientID)
			if err != nil {
				return fail("list payments", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), payments)
			}
			rows := make([][]string, 0, len(payments))
			for _, p := range payments {
				rows = append(rows, []string{
					itoa(p.ID), p.Date, p.ClientName, p.Amount.Format(),
					api.Deref(p.Method), api.Deref(p.Notes),
				})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "Date", "Client", "Amount", "Method", "Notes"}, rows)
		}),
	}
	cmd.Flags().IntVar(&clientID, "client", 0, "only payments of this client id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (r *root) paymentsAddCommand() *cobra.Command {
	var form validation.PaymentForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a payment",
		Args:  cobra.NoArgs,
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			req, err := validation.Payment(form)
			if err != nil {
				return fail("record payment", err)
			}
			ack, err := screens.NewPayments(env.API, env.Logger).Create(cmd.Context(), req)
			if err != nil {
				return fail("record payment", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
	flags := cmd.Flags()
	flags.IntVar(&form.ClientID, "client", 0, "client id")
	flags.StringVar(&form.Date, "date", time.Now().Format(api.DateLayout), "payment date (YYYY-MM-DD)")
	flags.StringVar(&form.Amount, "amount", "", "amount received")
	flags.StringVar(&form.Method, "method", "", "payment method, e.g. cash or transfer")
	flags.StringVar(&form.Notes, "notes", "", "free-form notes")
	return cmd
}

func (r *root) paymentsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a payment",
		Args:    cobra.ExactArgs(1),
		RunE: r.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			id, err := parseID("payment", args[0])
			if err != nil {
				return err
			}
			ack, err := screens.NewPayments(env.API, env.Logger).Delete(cmd.Context(), id)
			if err != nil {
				return fail("delete payment", err)
			}
			return printAck(cmd.OutOrStdout(), ack)
		}),
	}
}
