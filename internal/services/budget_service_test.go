package services_test

import (
	"strings"
	"testing"

	"github.com/tejgit8102/expensemate-backend/internal/models"
	"github.com/tejgit8102/expensemate-backend/internal/services"
	"github.com/tejgit8102/expensemate-backend/internal/testutil"
)

func newBudgetService(t *testing.T) (services.BudgetServicer, services.NotificationServicer, *testDeps) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	notifications := services.NewNotificationService(db)
	expenses := services.NewExpenseService(db, notifications)
	budgets := services.NewBudgetService(db, expenses, notifications)
	return budgets, notifications, &testDeps{db: db}
}

func intPtr(v int) *int { return &v }

func TestSetBudget(t *testing.T) {
	budgets, _, deps := newBudgetService(t)
	user := testutil.CreateTestUser(t, deps.db)

	t.Run("creates budget for explicit period", func(t *testing.T) {
		status, err := budgets.SetBudget(user.ID, intPtr(3), intPtr(2025), 1000)
		testutil.AssertNoError(t, err)

		if status.Month != 3 || status.Year != 2025 {
			t.Errorf("expected period 3/2025, got %d/%d", status.Month, status.Year)
		}
		if status.Amount != 1000 {
			t.Errorf("expected amount 1000, got %f", status.Amount)
		}
	})

	t.Run("overwrites instead of duplicating", func(t *testing.T) {
		_, err := budgets.SetBudget(user.ID, intPtr(4), intPtr(2025), 500)
		testutil.AssertNoError(t, err)
		status, err := budgets.SetBudget(user.ID, intPtr(4), intPtr(2025), 800)
		testutil.AssertNoError(t, err)

		if status.Amount != 800 {
			t.Errorf("expected overwritten amount 800, got %f", status.Amount)
		}

		var count int64
		deps.db.Model(&models.Budget{}).
			Where("user_id = ? AND month = ? AND year = ?", user.ID, 4, 2025).
			Count(&count)
		if count != 1 {
			t.Errorf("expected a single budget row, got %d", count)
		}
	})

	t.Run("rejects invalid month", func(t *testing.T) {
		_, err := budgets.SetBudget(user.ID, intPtr(13), intPtr(2025), 100)
		testutil.AssertAppError(t, err, "INVALID_MONTH")
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := budgets.SetBudget(user.ID, intPtr(5), intPtr(2025), -1)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		_, err := budgets.SetBudget(99999, intPtr(3), intPtr(2025), 100)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestUpdateBudget(t *testing.T) {
	budgets, _, deps := newBudgetService(t)
	user := testutil.CreateTestUser(t, deps.db)

	t.Run("fails when no budget exists", func(t *testing.T) {
		_, err := budgets.UpdateBudget(user.ID, intPtr(6), intPtr(2025), 400)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("overwrites an existing budget", func(t *testing.T) {
		testutil.CreateTestBudget(t, deps.db, user.ID, 7, 2025, 300)

		status, err := budgets.UpdateBudget(user.ID, intPtr(7), intPtr(2025), 450)
		testutil.AssertNoError(t, err)
		if status.Amount != 450 {
			t.Errorf("expected amount 450, got %f", status.Amount)
		}
	})
}

func TestGetBudgetStatus(t *testing.T) {
	budgets, _, deps := newBudgetService(t)
	user := testutil.CreateTestUser(t, deps.db)

	testutil.CreateTestBudget(t, deps.db, user.ID, 3, 2025, 1000)
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 500, date(2025, 3, 5))
	testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Travel", 200, date(2025, 3, 20))

	t.Run("derives spent and remaining", func(t *testing.T) {
		status, err := budgets.GetBudgetStatus(user.ID, 3, 2025)
		testutil.AssertNoError(t, err)

		if status.TotalSpent != 700 {
			t.Errorf("expected total spent 700, got %f", status.TotalSpent)
		}
		if status.Remaining != 300 {
			t.Errorf("expected remaining 300, got %f", status.Remaining)
		}
		if status.PercentageUsed != 70 {
			t.Errorf("expected 70%% used, got %f", status.PercentageUsed)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		first, err := budgets.GetBudgetStatus(user.ID, 3, 2025)
		testutil.AssertNoError(t, err)
		second, err := budgets.GetBudgetStatus(user.ID, 3, 2025)
		testutil.AssertNoError(t, err)

		if *first != *second {
			t.Errorf("expected identical status on repeated reads: %+v vs %+v", first, second)
		}
	})

	t.Run("remaining goes negative on overspend", func(t *testing.T) {
		testutil.CreateTestBudget(t, deps.db, user.ID, 4, 2025, 100)
		testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 250, date(2025, 4, 2))

		status, err := budgets.GetBudgetStatus(user.ID, 4, 2025)
		testutil.AssertNoError(t, err)
		if status.Remaining != -150 {
			t.Errorf("expected remaining -150, got %f", status.Remaining)
		}
	})

	t.Run("percentage is zero for a zero-amount budget", func(t *testing.T) {
		testutil.CreateTestBudget(t, deps.db, user.ID, 5, 2025, 0)
		testutil.CreateTestExpenseOn(t, deps.db, user.ID, "Food", 50, date(2025, 5, 2))

		status, err := budgets.GetBudgetStatus(user.ID, 5, 2025)
		testutil.AssertNoError(t, err)
		if status.PercentageUsed != 0 {
			t.Errorf("expected 0%% used for zero budget, got %f", status.PercentageUsed)
		}
	})

	t.Run("zeroed status without a budget row", func(t *testing.T) {
		status, err := budgets.GetBudgetStatus(user.ID, 11, 2025)
		testutil.AssertNoError(t, err)
		if status.Amount != 0 || status.Remaining != 0 || status.PercentageUsed != 0 {
			t.Errorf("expected zeroed status, got %+v", status)
		}
	})

	t.Run("notifies on overspend", func(t *testing.T) {
		overspender := testutil.CreateTestUser(t, deps.db)
		testutil.CreateTestBudget(t, deps.db, overspender.ID, 6, 2025, 100)
		testutil.CreateTestExpenseOn(t, deps.db, overspender.ID, "Food", 300, date(2025, 6, 10))

		_, err := budgets.GetBudgetStatus(overspender.ID, 6, 2025)
		testutil.AssertNoError(t, err)

		var notifications []models.Notification
		deps.db.Where("user_id = ?", overspender.ID).Find(&notifications)

		found := false
		for _, n := range notifications {
			if strings.Contains(n.Message, "exceeded your budget for June") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected an overspend notification, got %+v", notifications)
		}
	})
}
