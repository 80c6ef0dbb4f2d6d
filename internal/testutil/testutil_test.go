package testutil_test

import (
	"testing"

	"github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/models"
	"github.com/tejgit8102/expensemate-backend/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "expenses", "budgets", "notifications", "password_reset_tokens"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}
	if !user.Active || user.Role != models.RoleUser {
		t.Errorf("expected active USER, got %+v", user)
	}

	admin := testutil.CreateTestAdmin(t, db)
	if admin.Role != models.RoleAdmin {
		t.Errorf("expected ADMIN role, got %s", admin.Role)
	}

	expense := testutil.CreateTestExpense(t, db, user.ID, "Food", 250)
	if expense.Amount != 250 {
		t.Errorf("expected amount 250, got %f", expense.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, 3, 2025, 1000)
	if budget.Month != 3 || budget.Amount != 1000 {
		t.Errorf("unexpected budget: %+v", budget)
	}

	notification := testutil.CreateTestNotification(t, db, user.ID, "hello")
	if notification.Read {
		t.Error("fixture notification should be unread")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrExpenseNotFound, "custom message")
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
