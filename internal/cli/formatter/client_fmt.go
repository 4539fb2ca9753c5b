package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/echeance/internal/domain"
)

// FormatClientList renders client profiles as a table.
func FormatClientList(clients []*domain.ClientFiscalProfile) string {
	headers := []string{"ID", "NAME", "VAT", "TAX", "FORM", "CLOSING"}
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			Bold(c.ClientID),
			c.Name,
			orDash(c.VATFrequency),
			orDash(c.TaxCategory),
			orDash(c.LegalForm),
			c.EffectiveClosingDate(),
		})
	}
	return RenderBox("Clients", RenderTable(headers, rows))
}

// FormatClient renders every set attribute of a profile, in field order.
func FormatClient(p *domain.ClientFiscalProfile) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(p.ClientID))
	if p.Name != "" {
		b.WriteString("  " + Dim(p.Name))
	}
	b.WriteString("\n\n")

	width := 0
	for _, f := range domain.Fields {
		if len(f) > width {
			width = len(f)
		}
	}
	for _, f := range domain.Fields {
		value := Dim("--")
		if f == domain.FieldClosingDate {
			value = p.EffectiveClosingDate()
		} else if a, ok := p.Attribute(f); ok {
			value = a.String()
		}
		fmt.Fprintf(&b, "  %s  %s\n", StyleDim.Render(fmt.Sprintf("%-*s", width, f)), value)
	}
	return RenderBox("Client", b.String())
}

func orDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return s
}
