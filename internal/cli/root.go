package cli

import (
	"time"

	"github.com/alexanderramin/echeance/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Obligations service.ObligationService
	Rules       service.RuleService
	Clients     service.ClientService

	// RulesDir is imported by "rule import" when no file is given.
	RulesDir string
	// Now is the reference time for relative due dates. Defaults to time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// NewRootCmd creates the top-level "echeance" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "echeance",
		Short:         "Fiscal obligation calendar for accounting clients",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPreviewCmd(app),
		newRunCmd(app),
		newRuleCmd(app),
		newClientCmd(app),
	)

	return root
}
