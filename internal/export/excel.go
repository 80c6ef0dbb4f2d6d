package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReportExcel renders a report as an XLSX workbook with a summary sheet and
// per-category rows; annual reports get a per-month sheet as well.
func ReportExcel(data ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	f.SetSheetName("Sheet1", sheet)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", data.Title)
	f.SetCellValue(sheet, "A2", data.PeriodLabel)
	f.SetCellStyle(sheet, "A1", "A1", bold)

	f.SetCellValue(sheet, "A4", "Total Spent")
	f.SetCellValue(sheet, "B4", data.TotalSpent)
	f.SetCellValue(sheet, "A5", data.BudgetLabel)
	f.SetCellValue(sheet, "B5", data.Budget)
	f.SetCellValue(sheet, "A6", "Remaining")
	f.SetCellValue(sheet, "B6", data.Remaining)
	f.SetCellStyle(sheet, "A4", "A6", bold)

	row := 8
	if len(data.CategoryExpenses) > 0 {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Category")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Amount")
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), bold)
		row++
		for _, label := range sortedLabels(data.CategoryExpenses) {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), label)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), data.CategoryExpenses[label])
			row++
		}
	}

	if len(data.MonthlyExpenses) > 0 {
		const monthly = "Monthly"
		if _, err := f.NewSheet(monthly); err != nil {
			return nil, err
		}
		f.SetCellValue(monthly, "A1", "Month")
		f.SetCellValue(monthly, "B1", "Amount")
		f.SetCellStyle(monthly, "A1", "B1", bold)
		monthRow := 2
		for _, label := range sortedLabels(data.MonthlyExpenses) {
			f.SetCellValue(monthly, fmt.Sprintf("A%d", monthRow), label)
			f.SetCellValue(monthly, fmt.Sprintf("B%d", monthRow), data.MonthlyExpenses[label])
			monthRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
