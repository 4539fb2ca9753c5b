package cli

import (
	"fmt"

	"github.com/alexanderramin/echeance/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newClientCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage client fiscal profiles",
	}

	cmd.AddCommand(
		newClientImportCmd(app),
		newClientShowCmd(app),
		newClientListCmd(app),
	)

	return cmd
}

func newClientImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import client profiles (JSON or YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := app.Clients.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render(fmt.Sprintf("✔ Imported %d client(s)", len(ids))))
			return nil
		},
	}
}

func newClientShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show CLIENT_ID",
		Short: "Show a client's fiscal profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Clients.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatClient(p))
			return nil
		},
	}
}

func newClientListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List client profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := app.Clients.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clients found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatClientList(clients))
			return nil
		},
	}
}
