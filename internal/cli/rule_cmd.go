package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alexanderramin/echeance/internal/cli/formatter"
	"github.com/alexanderramin/echeance/internal/ruledoc"
	"github.com/spf13/cobra"
)

func newRuleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage fiscal rule documents",
	}

	cmd.AddCommand(
		newRuleImportCmd(app),
		newRuleValidateCmd(),
		newRuleListCmd(app),
		newRuleExportCmd(app),
		newRuleActivationCmd(app, "activate", true),
		newRuleActivationCmd(app, "deactivate", false),
	)

	return cmd
}

func newRuleImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import [FILE...]",
		Short: "Import rule documents (JSON or YAML)",
		Long: `Import rule documents (JSON or YAML).

All files are validated together and imported in one transaction. Without
arguments, every document in the configured rules_dir is imported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				var err error
				if paths, err = documentsIn(app.RulesDir); err != nil {
					return err
				}
			}

			merged := &ruledoc.Document{}
			for _, p := range paths {
				doc, err := ruledoc.LoadFile(p)
				if err != nil {
					return err
				}
				merged.Rules = append(merged.Rules, doc.Rules...)
			}

			ids, err := app.Rules.Import(cmd.Context(), merged)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render(
				fmt.Sprintf("✔ Imported %d rule(s) from %d file(s)", len(ids), len(paths))))
			return nil
		},
	}
}

// documentsIn lists the rule documents of dir in name order.
func documentsIn(dir string) ([]string, error) {
	if dir == "" {
		return nil, errors.New("no file given and rules_dir is not configured")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rules_dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := ruledoc.FormatFromPath(e.Name()); err == nil {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no rule documents in %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

func newRuleValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check rule documents without importing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, p := range args {
				doc, err := ruledoc.LoadFile(p)
				if err != nil {
					fmt.Fprint(out, formatter.FormatValidationErrors(p, []error{err}))
					failed++
					continue
				}
				if errs := ruledoc.Validate(doc); len(errs) > 0 {
					fmt.Fprint(out, formatter.FormatValidationErrors(p, errs))
					failed++
					continue
				}
				fmt.Fprintln(out, formatter.FormatValid(p, len(doc.Rules)))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) invalid", failed, len(args))
			}
			return nil
		},
	}
}

func newRuleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := app.Rules.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(stored) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRuleList(stored))
			return nil
		},
	}
}

func newRuleExportCmd(app *App) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored rule as one document",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := ruledoc.Format(format)
			if output != "" && !cmd.Flags().Changed("format") {
				var err error
				if f, err = ruledoc.FormatFromPath(output); err != nil {
					return err
				}
			}
			if f != ruledoc.FormatJSON && f != ruledoc.FormatYAML {
				return fmt.Errorf("unknown format %q (expected json or yaml)", format)
			}

			doc, err := app.Rules.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := ruledoc.Marshal(doc, f)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rule(s) to %s\n", len(doc.Rules), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(ruledoc.FormatYAML), "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func newRuleActivationCmd(app *App, use string, active bool) *cobra.Command {
	state := "inactive"
	if active {
		state = "active"
	}
	return &cobra.Command{
		Use:   use + " RULE_ID",
		Short: "Mark a rule as " + state + " for future generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Rules.SetActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %s: %s\n", args[0], formatter.ActivePill(active))
			return nil
		},
	}
}
