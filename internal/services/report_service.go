package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/export"
	"github.com/tejgit8102/expensemate-backend/internal/models"
)

// reportService aggregates expenses and budgets into monthly and annual
// reports and renders them as PDF or Excel documents.
type reportService struct {
	db            *gorm.DB
	expenses      ExpenseServicer
	notifications NotificationServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, expenses ExpenseServicer, notifications NotificationServicer) ReportServicer {
	return &reportService{db: db, expenses: expenses, notifications: notifications}
}

// MonthlyReport aggregates one calendar month: total spent, per-category
// sums, the month's budget (zero when unset) and the remaining amount.
func (s *reportService) MonthlyReport(userID uint, month, year int) (*Report, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, apperrors.ErrInvalidMonth
	}

	totalSpent, err := s.expenses.SumForUserAndMonth(userID, month, year)
	if err != nil {
		return nil, err
	}
	categoryExpenses, err := s.expenses.SumByCategoryForUserAndMonth(userID, month, year)
	if err != nil {
		return nil, err
	}

	budgetAmount := s.budgetAmount(userID, month, year)

	return &Report{
		Month:            &month,
		Year:             year,
		TotalSpent:       totalSpent,
		Budget:           budgetAmount,
		Remaining:        budgetAmount - totalSpent,
		CategoryExpenses: categoryExpenses,
	}, nil
}

// AnnualReport aggregates a whole year. MonthlyExpenses is keyed by month
// name and omits months without spending. Budget and Remaining reflect the
// current calendar month's budget row within the report year; rendered
// output labels them "(current month)".
func (s *reportService) AnnualReport(userID uint, year int) (*Report, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	start, end := yearRange(year)

	var totalSpent float64
	err := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Scan(&totalSpent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type categoryRow struct {
		Category string
		Total    float64
	}
	var categoryRows []categoryRow
	err = s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Group("category").
		Scan(&categoryRows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	categoryExpenses := make(map[string]float64, len(categoryRows))
	for _, row := range categoryRows {
		categoryExpenses[row.Category] = row.Total
	}

	monthlyExpenses := make(map[string]float64)
	for month := 1; month <= 12; month++ {
		sum, err := s.expenses.SumForUserAndMonth(userID, month, year)
		if err != nil {
			return nil, err
		}
		if sum > 0 {
			monthlyExpenses[time.Month(month).String()] = sum
		}
	}

	currentMonth := int(time.Now().Month())
	budgetAmount := s.budgetAmount(userID, currentMonth, year)
	currentMonthSpent, err := s.expenses.SumForUserAndMonth(userID, currentMonth, year)
	if err != nil {
		return nil, err
	}

	return &Report{
		Year:             year,
		TotalSpent:       totalSpent,
		Budget:           budgetAmount,
		Remaining:        budgetAmount - currentMonthSpent,
		CategoryExpenses: categoryExpenses,
		MonthlyExpenses:  monthlyExpenses,
	}, nil
}

// ExportPDF renders a monthly or annual report (month nil) as a PDF and
// returns the document with its suggested filename.
func (s *reportService) ExportPDF(userID uint, month *int, year int) ([]byte, string, error) {
	report, err := s.reportFor(userID, month, year)
	if err != nil {
		return nil, "", err
	}

	data, err := export.ReportPDF(reportData(report))
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrExportFailed, err)
	}

	s.notifications.NotifyReportExported(userID, "PDF")
	return data, reportFilename(month, year, "pdf"), nil
}

// ExportExcel renders a monthly or annual report (month nil) as an XLSX
// workbook and returns the document with its suggested filename.
func (s *reportService) ExportExcel(userID uint, month *int, year int) ([]byte, string, error) {
	report, err := s.reportFor(userID, month, year)
	if err != nil {
		return nil, "", err
	}

	data, err := export.ReportExcel(reportData(report))
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrExportFailed, err)
	}

	s.notifications.NotifyReportExported(userID, "Excel file")
	return data, reportFilename(month, year, "xlsx"), nil
}

func (s *reportService) reportFor(userID uint, month *int, year int) (*Report, error) {
	if month != nil {
		return s.MonthlyReport(userID, *month, year)
	}
	return s.AnnualReport(userID, year)
}

func (s *reportService) requireUser(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// budgetAmount returns the budgeted amount for a period, zero when unset.
func (s *reportService) budgetAmount(userID uint, month, year int) float64 {
	var budget models.Budget
	err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&budget).Error
	if err != nil {
		return 0
	}
	return budget.Amount
}

// reportData maps a report onto the renderer's input.
func reportData(report *Report) export.ReportData {
	data := export.ReportData{
		TotalSpent:       report.TotalSpent,
		Budget:           report.Budget,
		Remaining:        report.Remaining,
		CategoryExpenses: report.CategoryExpenses,
		MonthlyExpenses:  report.MonthlyExpenses,
	}
	if report.Month != nil {
		data.Title = "Monthly Expense Report"
		data.PeriodLabel = fmt.Sprintf("%s %d", time.Month(*report.Month).String(), report.Year)
		data.BudgetLabel = "Budget"
	} else {
		data.Title = "Annual Expense Report"
		data.PeriodLabel = fmt.Sprintf("%d", report.Year)
		data.BudgetLabel = "Budget (current month)"
	}
	return data
}

func reportFilename(month *int, year int, extension string) string {
	if month != nil {
		return fmt.Sprintf("report_%s_%d.%s",
			strings.ToLower(time.Month(*month).String()), year, extension)
	}
	return fmt.Sprintf("report_annual_%d.%s", year, extension)
}
