package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ReportData is the renderer-facing view of an aggregated report.
type ReportData struct {
	Title            string
	PeriodLabel      string
	TotalSpent       float64
	Budget           float64
	Remaining        float64
	BudgetLabel      string
	CategoryExpenses map[string]float64
	MonthlyExpenses  map[string]float64
}

// pdfText rewrites characters the built-in PDF fonts cannot encode. The
// rupee sign and emoji are outside cp1252.
var pdfText = strings.NewReplacer(
	"₹", "Rs. ",
	"⚠️", "[!] ",
	"🤖", "",
)

// ReportPDF renders a report as a PDF document with a category pie chart
// and, for annual reports, a monthly bar chart.
func ReportPDF(data ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(data.Title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, data.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, data.PeriodLabel, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	summaryRow(pdf, "Total Spent", data.TotalSpent)
	summaryRow(pdf, data.BudgetLabel, data.Budget)
	summaryRow(pdf, "Remaining", data.Remaining)
	pdf.Ln(4)

	if len(data.CategoryExpenses) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Expenses by Category", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, label := range sortedLabels(data.CategoryExpenses) {
			summaryRow(pdf, label, data.CategoryExpenses[label])
		}
		pdf.Ln(4)

		if png, err := pieChartPNG(data.CategoryExpenses); err == nil && png != nil {
			embedPNG(pdf, "category_pie", png, 110)
		}
	}

	if len(data.MonthlyExpenses) > 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Expenses by Month", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, label := range sortedLabels(data.MonthlyExpenses) {
			summaryRow(pdf, label, data.MonthlyExpenses[label])
		}
		pdf.Ln(4)

		if png, err := barChartPNG(data.MonthlyExpenses); err == nil && png != nil {
			embedPNG(pdf, "monthly_bar", png, 170)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InsightsPDF renders the insight narrative and headline metrics as a PDF.
func InsightsPDF(message string, monthlyTotal, dailyAverage float64, topCategory string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Spending Insights", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Spending Insights", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	summaryRow(pdf, "Total Spent", monthlyTotal)
	summaryRow(pdf, "Daily Average", dailyAverage)
	pdf.CellFormat(60, 7, "Top Category", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, topCategory, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, pdfText.Replace(message), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryRow(pdf *gofpdf.Fpdf, label string, amount float64) {
	pdf.CellFormat(60, 7, pdfText.Replace(label), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Rs. %.2f", amount), "", 1, "R", false, 0, "")
}

func embedPNG(pdf *gofpdf.Fpdf, name string, png []byte, width float64) {
	options := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(png))
	pdf.ImageOptions(name, (210-width)/2, pdf.GetY(), width, 0, true, options, 0, "")
}

func sortedLabels(data map[string]float64) []string {
	labels := make([]string, 0, len(data))
	for label := range data {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if data[labels[i]] != data[labels[j]] {
			return data[labels[i]] > data[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}
