// Package report renders operator-facing tables.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

var leadHeader = table.Row{
	"#",
	"ID",
	"Name",
	"Phone",
	"Payment",
	"Source",
	"Created At",
}

func leadRow(i int, l model.Lead) table.Row {
	return table.Row{
		i + 1,
		l.ID,
		l.Name,
		l.Phone,
		l.PaymentLabel(),
		l.Source,
		formatTime(l.CreatedAt),
	}
}

// Plan renders a reconciliation preview: a summary, then the REMOVE leads.
func Plan(p model.Plan) string {
	var b strings.Builder

	summary := table.NewWriter()
	summary.AppendHeader(table.Row{"Plan", "Keep-set Version", "Created At", "Keep", "Remove"})
	summary.AppendRow(table.Row{p.ID, p.KeepSetVersion, formatTime(p.CreatedAt), len(p.Keep), len(p.Remove)})
	b.WriteString(summary.Render())
	b.WriteString("\n")

	if len(p.Remove) == 0 {
		b.WriteString("Nothing to delete.\n")
		return b.String()
	}

	b.WriteString("\nWill delete ->\n")
	b.WriteString(Leads(p.Remove))
	b.WriteString("\n")
	return b.String()
}

func Leads(leads []model.Lead) string {
	t := table.NewWriter()
	t.AppendHeader(leadHeader)
	for i, l := range leads {
		t.AppendRow(leadRow(i, l))
	}
	t.AppendFooter(table.Row{"", "Total", len(leads)})
	return t.Render()
}

func Stats(s model.LeadStats) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Total", "Paid", "Unpaid", "Pending", "Failed", "Revenue"})
	t.AppendRow(table.Row{s.Total, s.Paid, s.Unpaid, s.Pending, s.Failed, fmt.Sprintf("%.2f", s.Revenue)})
	return t.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
