package services_test

import (
	"strings"
	"testing"

	"github.com/tejgit8102/expensemate-backend/internal/models"
	"github.com/tejgit8102/expensemate-backend/internal/pagination"
	"github.com/tejgit8102/expensemate-backend/internal/services"
	"github.com/tejgit8102/expensemate-backend/internal/testutil"
)

func newExpenseService(t *testing.T) (services.ExpenseServicer, *testDeps) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	notifications := services.NewNotificationService(db)
	return services.NewExpenseService(db, notifications), &testDeps{db: db}
}

func TestAddExpense(t *testing.T) {
	expenses, deps := newExpenseService(t)
	user := testutil.CreateTestUser(t, deps.db)

	t.Run("creates expense and notifies", func(t *testing.T) {
		expense, err := expenses.AddExpense(user.ID, services.ExpenseInput{
			Amount:   250,
			Category: "Food",
			Date:     date(2025, 3, 10),
		})
		testutil.AssertNoError(t, err)
		if expense.ID == 0 {
			t.Fatal("expected persisted expense with an ID")
		}

		var notifications []models.Notification
		deps.db.Where("user_id = ?", user.ID).Find(&notifications)
		found := false
		for _, n := range notifications {
			if strings.Contains(n.Message, "added to category Food") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected an expense-added notification, got %+v", notifications)
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := expenses.AddExpense(user.ID, services.ExpenseInput{Amount: 0, Category: "Food"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		_, err := expenses.AddExpense(99999, services.ExpenseInput{Amount: 10, Category: "Food"})
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

// The per-category threshold check compares a category's month-to-date sum
// against the single monthly budget amount.
func TestAddExpenseBudgetThresholds(t *testing.T) {
	expenses, deps := newExpenseService(t)
	user := testutil.CreateTestUser(t, deps.db)
	testutil.CreateTestBudget(t, deps.db, user.ID, 3, 2025, 1000)

	add := func(category string, amount float64) {
		t.Helper()
		_, err := expenses.AddExpense(user.ID, services.ExpenseInput{
			Amount:   amount,
			Category: category,
			Date:     date(2025, 3, 15),
		})
		testutil.AssertNoError(t, err)
	}

	add("Food", 500)
	add("Food", 700)
	add("Travel", 200)

	var notifications []models.Notification
	deps.db.Where("user_id = ?", user.ID).Find(&notifications)

	var foodExceeded, travelWarned bool
	for _, n := range notifications {
		if strings.Contains(n.Message, "exceeded your budget for Food") {
			foodExceeded = true
		}
		if strings.Contains(n.Message, "Travel") && strings.Contains(n.Message, "budget") {
			travelWarned = true
		}
	}

	if !foodExceeded {
		t.Error("expected Food to trigger a budget-exceeded notification at 1200/1000")
	}
	if travelWarned {
		t.Error("Travel at 200/1000 should not trigger a budget notification")
	}
}

func TestGetExpenses(t *testing.T) {
	expenses, deps := newExpenseService(t)
	user := testutil.CreateTestUser(t, deps.db)

	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 100, date(2025, 3, 1))
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 200, date(2025, 4, 1))
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Travel", 300, date(2025, 3, 15))

	t.Run("unfiltered returns everything", func(t *testing.T) {
		page, err := expenses.GetExpenses(user.ID, "", "", pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 3 {
			t.Errorf("expected 3 expenses, got %d", page.TotalItems)
		}
	})

	t.Run("category filter wins over month", func(t *testing.T) {
		page, err := expenses.GetExpenses(user.ID, "Food", "2025-03", pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected both Food expenses regardless of month, got %d", page.TotalItems)
		}
	})

	t.Run("month filter", func(t *testing.T) {
		page, err := expenses.GetExpenses(user.ID, "", "2025-03", pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 March expenses, got %d", page.TotalItems)
		}
	})

	t.Run("invalid month filter", func(t *testing.T) {
		_, err := expenses.GetExpenses(user.ID, "", "march-2025", pagination.PageRequest{})
		testutil.AssertAppError(t, err, "INVALID_MONTH_FILTER")
	})
}

func TestExpenseOwnership(t *testing.T) {
	expenses, deps := newExpenseService(t)
	owner := testutil.CreateTestUser(t, deps.db)
	other := testutil.CreateTestUser(t, deps.db)
	expense := testutil.CreateTestExpense(t, deps.db, owner.ID, "Food", 100)

	input := services.ExpenseInput{Amount: 50, Category: "Food", Date: date(2025, 3, 1)}

	t.Run("update by another user is forbidden", func(t *testing.T) {
		_, err := expenses.UpdateExpense(expense.ID, other.ID, input)
		testutil.AssertAppError(t, err, "OWNERSHIP_VIOLATION")
	})

	t.Run("delete by another user is forbidden", func(t *testing.T) {
		err := expenses.DeleteExpense(expense.ID, other.ID)
		testutil.AssertAppError(t, err, "OWNERSHIP_VIOLATION")
	})

	t.Run("missing expense reports not found", func(t *testing.T) {
		_, err := expenses.UpdateExpense(99999, owner.ID, input)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})

	t.Run("owner can update and delete", func(t *testing.T) {
		updated, err := expenses.UpdateExpense(expense.ID, owner.ID, input)
		testutil.AssertNoError(t, err)
		if updated.Amount != 50 {
			t.Errorf("expected amount 50 after update, got %f", updated.Amount)
		}
		testutil.AssertNoError(t, expenses.DeleteExpense(expense.ID, owner.ID))
	})
}

func TestExpenseSums(t *testing.T) {
	expenses, deps := newExpenseService(t)
	user := testutil.CreateTestUser(t, deps.db)

	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 120.50, date(2025, 3, 3))
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 79.50, date(2025, 3, 28))
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Travel", 300, date(2025, 3, 12))
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 999, date(2025, 4, 1))

	t.Run("monthly total", func(t *testing.T) {
		total, err := expenses.SumForUserAndMonth(user.ID, 3, 2025)
		testutil.AssertNoError(t, err)
		if total != 500 {
			t.Errorf("expected total 500, got %f", total)
		}
	})

	t.Run("category sums add up to the monthly total", func(t *testing.T) {
		sums, err := expenses.SumByCategoryForUserAndMonth(user.ID, 3, 2025)
		testutil.AssertNoError(t, err)

		var breakdownTotal float64
		for _, amount := range sums {
			breakdownTotal += amount
		}

		total, err := expenses.SumForUserAndMonth(user.ID, 3, 2025)
		testutil.AssertNoError(t, err)
		if breakdownTotal != total {
			t.Errorf("category breakdown sums to %f, monthly total is %f", breakdownTotal, total)
		}
	})

	t.Run("zero without expenses", func(t *testing.T) {
		total, err := expenses.SumForUserAndMonth(user.ID, 12, 2025)
		testutil.AssertNoError(t, err)
		if total != 0 {
			t.Errorf("expected 0 for an empty month, got %f", total)
		}

		sums, err := expenses.SumByCategoryForUserAndMonth(user.ID, 12, 2025)
		testutil.AssertNoError(t, err)
		if len(sums) != 0 {
			t.Errorf("expected empty breakdown, got %+v", sums)
		}
	})
}
