package cli

import (
	"fmt"

	"github.com/alexanderramin/echeance/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create and inspect materialized obligation runs",
	}

	cmd.AddCommand(
		newRunCreateCmd(app),
		newRunShowCmd(app),
		newRunListCmd(app),
	)

	return cmd
}

func newRunCreateCmd(app *App) *cobra.Command {
	var exercice int

	cmd := &cobra.Command{
		Use:   "create CLIENT_ID",
		Short: "Generate and save a client's obligations for an exercice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Obligations.CreateRun(cmd.Context(), args[0], exercice)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatRun(res.Run, res.Tasks, app.now()))
			if len(res.Diagnostics) > 0 {
				fmt.Fprint(out, formatter.FormatDiagnostics(res.Diagnostics))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&exercice, "exercice", "e", 0, "Fiscal year (required)")
	_ = cmd.MarkFlagRequired("exercice")

	return cmd
}

func newRunShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a run and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			run, err := app.Obligations.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			tasks, err := app.Obligations.ListRunTasks(ctx, run.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRun(run, tasks, app.now()))
			return nil
		},
	}
}

func newRunListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list CLIENT_ID",
		Short: "List a client's runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := app.Obligations.ListRuns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRunList(runs))
			return nil
		},
	}
}
