package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/echeance/internal/repository"
)

// FormatRuleList renders stored rules with their branch and template counts.
func FormatRuleList(stored []*repository.StoredRule) string {
	headers := []string{"ID", "NAME", "STATE", "BRANCHES", "TEMPLATES"}
	rows := make([][]string, 0, len(stored))
	for _, r := range stored {
		templates := 0
		for _, b := range r.Document.Branches {
			templates += len(b.TaskTemplates)
		}
		rows = append(rows, []string{
			Bold(r.ID),
			r.Name,
			ActivePill(r.IsActive),
			fmt.Sprintf("%d", len(r.Document.Branches)),
			fmt.Sprintf("%d", templates),
		})
	}
	return RenderBox("Rules", RenderTable(headers, rows))
}

// FormatValidationErrors renders document validation failures, one per line.
func FormatValidationErrors(path string, errs []error) string {
	var b strings.Builder
	b.WriteString(StyleRed.Render(fmt.Sprintf("✖ %s: %d problem(s)", path, len(errs))))
	b.WriteString("\n")
	for _, e := range errs {
		b.WriteString("  - ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// FormatValid renders a successful validation line.
func FormatValid(path string, rules int) string {
	return StyleGreen.Render(fmt.Sprintf("✔ %s: %d rule(s) valid", path, rules))
}
