package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/echeance/internal/cli/formatter"
	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/ruledoc"
	"github.com/alexanderramin/echeance/internal/service"
	"github.com/spf13/cobra"
)

// taskView is the JSON shape of an obligation.
type taskView struct {
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	FormCode       string `json:"formCode,omitempty"`
	DueDate        string `json:"dueDate"`
	DueEpoch       int64  `json:"dueEpoch"`
	ClientID       string `json:"clientId"`
	Exercice       int    `json:"exercice"`
	SourceRuleID   string `json:"sourceRuleId"`
	SourceBranchID string `json:"sourceBranchId"`
}

type obligationsView struct {
	ClientID    string     `json:"clientId"`
	Exercice    int        `json:"exercice"`
	Tasks       []taskView `json:"tasks"`
	Diagnostics []string   `json:"diagnostics,omitempty"`
}

func newTaskView(t domain.TaskInstance) taskView {
	return taskView{
		Name:           t.Name,
		Category:       t.Category,
		FormCode:       t.FormCode,
		DueDate:        t.DueDate.Format("2006-01-02"),
		DueEpoch:       t.DueEpoch(),
		ClientID:       t.ClientID,
		Exercice:       t.Exercice,
		SourceRuleID:   t.SourceRuleID,
		SourceBranchID: t.SourceBranchID,
	}
}

func newPreviewCmd(app *App) *cobra.Command {
	var (
		exercice    int
		profileFile string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "preview CLIENT_ID",
		Short: "Compute a client's obligations for an exercice without saving them",
		Long: `Compute a client's obligations for an exercice without saving them.

With --profile, the client is read from a profile file instead of the
database, so an unsaved or edited profile can be tried against the rules.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				out *service.Obligations
				err error
			)
			if profileFile != "" {
				var profile *domain.ClientFiscalProfile
				profile, err = profileFromFile(profileFile, args[0])
				if err != nil {
					return err
				}
				out, err = app.Obligations.PreviewProfile(ctx, profile, exercice)
			} else {
				out, err = app.Obligations.Preview(ctx, args[0], exercice)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeObligationsJSON(cmd, out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatObligations(out.ClientID, out.Exercice, out.Tasks, out.Diagnostics, app.now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&exercice, "exercice", "e", 0, "Fiscal year (required)")
	cmd.Flags().StringVar(&profileFile, "profile", "", "Read the client from this profile file (JSON or YAML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	_ = cmd.MarkFlagRequired("exercice")

	return cmd
}

func profileFromFile(path, clientID string) (*domain.ClientFiscalProfile, error) {
	set, err := ruledoc.LoadProfiles(path)
	if err != nil {
		return nil, err
	}
	for _, doc := range set.Clients {
		if string(doc.ClientID) != clientID {
			continue
		}
		if errs := ruledoc.ValidateProfile(doc); len(errs) > 0 {
			return nil, fmt.Errorf("client %s: %w", clientID, errs[0])
		}
		return ruledoc.ToProfile(doc), nil
	}
	return nil, fmt.Errorf("client %s not found in %s", clientID, path)
}

func writeObligationsJSON(cmd *cobra.Command, out *service.Obligations) error {
	view := obligationsView{
		ClientID: out.ClientID,
		Exercice: out.Exercice,
		Tasks:    make([]taskView, 0, len(out.Tasks)),
	}
	for _, t := range out.Tasks {
		view.Tasks = append(view.Tasks, newTaskView(t))
	}
	for _, d := range out.Diagnostics {
		view.Diagnostics = append(view.Diagnostics, d.String())
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
