package services_test

import (
	"testing"
	"time"

	"github.com/tejgit8102/expensemate-backend/internal/services"
	"github.com/tejgit8102/expensemate-backend/internal/testutil"
)

func newReportService(t *testing.T) (services.ReportServicer, *testDeps) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	notifications := services.NewNotificationService(db)
	expenses := services.NewExpenseService(db, notifications)
	return services.NewReportService(db, expenses, notifications), &testDeps{db: db}
}

func TestMonthlyReport(t *testing.T) {
	reports, deps := newReportService(t)
	user := testutil.CreateTestUser(t, deps.db)

	testutil.CreateTestBudget(t, deps.db, user.ID, 3, 2025, 1000)
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 500, date(2025, 3, 3))
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Travel", 200, date(2025, 3, 20))
	// Outside the report month.
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 999, date(2025, 4, 1))

	report, err := reports.MonthlyReport(user.ID, 3, 2025)
	testutil.AssertNoError(t, err)

	if report.Month == nil || *report.Month != 3 {
		t.Fatalf("expected month 3 in report, got %+v", report.Month)
	}
	if report.TotalSpent != 700 {
		t.Errorf("expected total 700, got %f", report.TotalSpent)
	}
	if report.Budget != 1000 || report.Remaining != 300 {
		t.Errorf("expected budget 1000 remaining 300, got %f / %f", report.Budget, report.Remaining)
	}
	if report.CategoryExpenses["Food"] != 500 || report.CategoryExpenses["Travel"] != 200 {
		t.Errorf("unexpected category sums: %+v", report.CategoryExpenses)
	}
	if report.MonthlyExpenses != nil {
		t.Errorf("monthly report should not carry a per-month map, got %+v", report.MonthlyExpenses)
	}

	t.Run("invalid month", func(t *testing.T) {
		_, err := reports.MonthlyReport(user.ID, 0, 2025)
		testutil.AssertAppError(t, err, "INVALID_MONTH")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := reports.MonthlyReport(99999, 3, 2025)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestAnnualReport(t *testing.T) {
	reports, deps := newReportService(t)
	user := testutil.CreateTestUser(t, deps.db)

	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 300, date(2025, 3, 10))
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Travel", 200, date(2025, 7, 4))

	report, err := reports.AnnualReport(user.ID, 2025)
	testutil.AssertNoError(t, err)

	if report.Month != nil {
		t.Errorf("annual report should not carry a month, got %+v", report.Month)
	}
	if report.TotalSpent != 500 {
		t.Errorf("expected total 500, got %f", report.TotalSpent)
	}

	// Only months with spending appear, keyed by month name.
	if len(report.MonthlyExpenses) != 2 {
		t.Errorf("expected 2 monthly entries, got %+v", report.MonthlyExpenses)
	}
	if report.MonthlyExpenses["March"] != 300 {
		t.Errorf("expected March 300, got %f", report.MonthlyExpenses["March"])
	}
	if report.MonthlyExpenses["July"] != 200 {
		t.Errorf("expected July 200, got %f", report.MonthlyExpenses["July"])
	}
	if _, ok := report.MonthlyExpenses["January"]; ok {
		t.Error("zero months must be omitted from the monthly map")
	}

	if report.CategoryExpenses["Food"] != 300 || report.CategoryExpenses["Travel"] != 200 {
		t.Errorf("unexpected category sums: %+v", report.CategoryExpenses)
	}
}

// The annual report's budget figures come from the current calendar month's
// budget row within the report year.
func TestAnnualReportBudgetUsesCurrentMonth(t *testing.T) {
	reports, deps := newReportService(t)
	user := testutil.CreateTestUser(t, deps.db)

	now := time.Now()
	currentMonth := int(now.Month())
	year := 2023

	testutil.CreateTestBudget(t, deps.db, user.ID, currentMonth, year, 900)
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 400, date(year, currentMonth, 10))

	report, err := reports.AnnualReport(user.ID, year)
	testutil.AssertNoError(t, err)

	if report.Budget != 900 {
		t.Errorf("expected budget 900 from the current-month row, got %f", report.Budget)
	}
	if report.Remaining != 500 {
		t.Errorf("expected remaining 500 against current-month spend, got %f", report.Remaining)
	}
}

func TestReportExports(t *testing.T) {
	reports, deps := newReportService(t)
	user := testutil.CreateTestUser(t, deps.db)

	testutil.CreateTestBudget(t, deps.db, user.ID, 3, 2025, 1000)
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 500, date(2025, 3, 3))

	month := 3

	t.Run("PDF", func(t *testing.T) {
		data, filename, err := reports.ExportPDF(user.ID, &month, 2025)
		testutil.AssertNoError(t, err)
		if len(data) == 0 {
			t.Fatal("expected non-empty PDF output")
		}
		if filename != "report_march_2025.pdf" {
			t.Errorf("unexpected filename %q", filename)
		}
	})

	t.Run("annual PDF filename", func(t *testing.T) {
		_, filename, err := reports.ExportPDF(user.ID, nil, 2025)
		testutil.AssertNoError(t, err)
		if filename != "report_annual_2025.pdf" {
			t.Errorf("unexpected filename %q", filename)
		}
	})

	t.Run("Excel", func(t *testing.T) {
		data, filename, err := reports.ExportExcel(user.ID, &month, 2025)
		testutil.AssertNoError(t, err)
		if len(data) == 0 {
			t.Fatal("expected non-empty XLSX output")
		}
		if filename != "report_march_2025.xlsx" {
			t.Errorf("unexpected filename %q", filename)
		}
	})
}
