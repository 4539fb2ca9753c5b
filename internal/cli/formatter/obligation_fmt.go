package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/generation"
)

// FormatObligations renders a generated obligation list with its diagnostics.
func FormatObligations(clientID string, exercice int, tasks []domain.TaskInstance, diags []generation.Diagnostic, now time.Time) string {
	var b strings.Builder
	title := fmt.Sprintf("Obligations %s · exercice %d", clientID, exercice)

	if len(tasks) == 0 {
		b.WriteString(Dim("No obligations for this client and exercice."))
		b.WriteString("\n")
	} else {
		headers := []string{"DUE", "TASK", "CATEGORY", "FORM", "RULE"}
		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, []string{
				DueDateStyled(t.DueDate, now),
				Bold(t.Name),
				CategoryBadge(t.Category),
				Dim(t.FormCode),
				Dim(t.SourceRuleID),
			})
		}
		b.WriteString(RenderTable(headers, rows))
		b.WriteString(Dim(fmt.Sprintf("%d obligations", len(tasks))))
		b.WriteString("\n")
	}

	if len(diags) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatDiagnostics(diags))
	}
	return RenderBox(title, b.String())
}

// FormatDiagnostics lists templates skipped during generation.
func FormatDiagnostics(diags []generation.Diagnostic) string {
	var b strings.Builder
	b.WriteString(StyleYellow.Render(fmt.Sprintf("⚠ %d template(s) skipped", len(diags))))
	b.WriteString("\n")
	for _, d := range diags {
		b.WriteString("  ")
		b.WriteString(Dim(d.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRun renders a materialized run and its stored tasks.
func FormatRun(run *domain.Run, tasks []*domain.StoredTask, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s\n", StyleDim.Render("RUN     "), run.ID)
	fmt.Fprintf(&b, "  %s  %s\n", StyleDim.Render("CLIENT  "), Bold(run.ClientID))
	fmt.Fprintf(&b, "  %s  %d\n", StyleDim.Render("EXERCICE"), run.Exercice)
	fmt.Fprintf(&b, "  %s  %s\n", StyleDim.Render("CREATED "), run.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "  %s  %d\n\n", StyleDim.Render("TASKS   "), run.TaskCount)

	if len(tasks) > 0 {
		headers := []string{"DUE", "TASK", "STATUS", "FORM"}
		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, []string{
				DueDateStyled(t.DueDate, now),
				t.Name,
				TaskStatusPill(t.Status),
				Dim(t.FormCode),
			})
		}
		b.WriteString(RenderTable(headers, rows))
	}
	return RenderBox("Run", b.String())
}

// FormatRunList renders the runs of a client.
func FormatRunList(runs []*domain.Run) string {
	headers := []string{"ID", "EXERCICE", "TASKS", "CREATED"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			TruncID(r.ID),
			fmt.Sprintf("%d", r.Exercice),
			fmt.Sprintf("%d", r.TaskCount),
			Dim(r.CreatedAt.Format("2006-01-02")),
		})
	}
	return RenderBox("Runs", RenderTable(headers, rows, AlignRight(1, 2)))
}
