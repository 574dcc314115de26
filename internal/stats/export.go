package stats

import (
	"embed"
	"encoding/csv"
	"html/template"
	"io"
	"strconv"
)

//go:embed templates/report.html
var templateFS embed.FS

// ReportTemplateName is the name the printable report is registered under.
const ReportTemplateName = "report.html"

// ReportTemplate is the printable report, rendered from a Report as is.
var ReportTemplate = template.Must(
	template.New(ReportTemplateName).
		Funcs(template.FuncMap{"money": formatMoney}).
		ParseFS(templateFS, "templates/"+ReportTemplateName),
)

// WriteCSV writes the report as four sections separated by blank lines:
// summary, revenue by day, top products and categories.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"from", "to", "total_orders", "total_revenue", "average_order_value"},
		{r.From, r.To, strconv.Itoa(r.TotalOrders), formatMoney(r.TotalRevenue), formatMoney(r.AverageOrderValue)},
		{},
		{"date", "revenue", "orders"},
	}
	for _, d := range r.RevenueByDay {
		rows = append(rows, []string{d.Date, formatMoney(d.Revenue), strconv.Itoa(d.Orders)})
	}

	rows = append(rows, []string{}, []string{"product", "quantity", "revenue", "share_percent"})
	for _, p := range r.TopProducts {
		rows = append(rows, []string{p.Name, strconv.Itoa(p.Quantity), formatMoney(p.Revenue), formatMoney(p.Share)})
	}

	rows = append(rows, []string{}, []string{"category", "quantity", "revenue", "share_percent"})
	for _, c := range r.CategoryStats {
		rows = append(rows, []string{c.Category, strconv.Itoa(c.Quantity), formatMoney(c.Revenue), formatMoney(c.Share)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// RenderHTML writes the printable report.
func RenderHTML(w io.Writer, r Report) error {
	return ReportTemplate.ExecuteTemplate(w, ReportTemplateName, r)
}

// CSVFilename is the attachment name used for a report export.
func CSVFilename(r Report) string {
	return "statistics_" + r.From + "_" + r.To + ".csv"
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
