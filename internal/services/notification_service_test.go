package services_test

import (
	"strings"
	"testing"

	"github.com/tejgit8102/expensemate-backend/internal/models"
	"github.com/tejgit8102/expensemate-backend/internal/services"
	"github.com/tejgit8102/expensemate-backend/internal/testutil"
)

func newNotificationService(t *testing.T) (services.NotificationServicer, *testDeps) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	return services.NewNotificationService(db), &testDeps{db: db}
}

func TestCreateNotification(t *testing.T) {
	notifications, deps := newNotificationService(t)
	user := testutil.CreateTestUser(t, deps.db)

	t.Run("creates unread notification", func(t *testing.T) {
		n, err := notifications.Create(user.ID, "hello")
		testutil.AssertNoError(t, err)
		if n.Read {
			t.Error("new notification should be unread")
		}
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		_, err := notifications.Create(99999, "hello")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestListForUser(t *testing.T) {
	notifications, deps := newNotificationService(t)
	user := testutil.CreateTestUser(t, deps.db)

	first, err := notifications.Create(user.ID, "first")
	testutil.AssertNoError(t, err)
	second, err := notifications.Create(user.ID, "second")
	testutil.AssertNoError(t, err)

	list, err := notifications.ListForUser(user.ID)
	testutil.AssertNoError(t, err)

	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("expected newest first, got %d then %d", list[0].ID, list[1].ID)
	}
}

func TestMarkRead(t *testing.T) {
	notifications, deps := newNotificationService(t)
	user := testutil.CreateTestUser(t, deps.db)

	created, err := notifications.Create(user.ID, "mark me")
	testutil.AssertNoError(t, err)

	updated, err := notifications.MarkRead(created.ID)
	testutil.AssertNoError(t, err)
	if !updated.Read {
		t.Error("notification should be read after MarkRead")
	}

	_, err = notifications.MarkRead(99999)
	testutil.AssertAppError(t, err, "NOTIFICATION_NOT_FOUND")
}

func TestMarkAllRead(t *testing.T) {
	notifications, deps := newNotificationService(t)
	user := testutil.CreateTestUser(t, deps.db)

	// Three unread, two already read.
	for i := 0; i < 3; i++ {
		_, err := notifications.Create(user.ID, "unread")
		testutil.AssertNoError(t, err)
	}
	for i := 0; i < 2; i++ {
		n, err := notifications.Create(user.ID, "read")
		testutil.AssertNoError(t, err)
		_, err = notifications.MarkRead(n.ID)
		testutil.AssertNoError(t, err)
	}

	testutil.AssertNoError(t, notifications.MarkAllRead(user.ID))

	var unread int64
	deps.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unread)
	if unread != 0 {
		t.Errorf("expected no unread notifications, got %d", unread)
	}

	var total int64
	deps.db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&total)
	if total != 5 {
		t.Errorf("expected 5 notifications in total, got %d", total)
	}
}

func TestBroadcast(t *testing.T) {
	notifications, deps := newNotificationService(t)
	alice := testutil.CreateTestUser(t, deps.db)
	bob := testutil.CreateTestUser(t, deps.db)

	testutil.AssertNoError(t, notifications.Broadcast("System maintenance tonight"))

	for _, user := range []uint{alice.ID, bob.ID} {
		var list []models.Notification
		deps.db.Where("user_id = ?", user).Find(&list)
		found := false
		for _, n := range list {
			if n.Message == "System maintenance tonight by admin" {
				found = true
			}
		}
		if !found {
			t.Errorf("user %d missing broadcast notification", user)
		}
	}
}

func TestNotifyReportReadyDeduplicates(t *testing.T) {
	notifications, deps := newNotificationService(t)
	user := testutil.CreateTestUser(t, deps.db)

	notifications.NotifyReportReady(user.ID)
	notifications.NotifyReportReady(user.ID)

	var count int64
	deps.db.Model(&models.Notification{}).
		Where("user_id = ? AND message = ?", user.ID, "Your budget report is ready.").
		Count(&count)
	if count != 1 {
		t.Errorf("expected report-ready deduplicated to 1 row, got %d", count)
	}

	// Push the report-ready message out of the dedup window, then re-notify.
	for i := 0; i < 5; i++ {
		_, err := notifications.Create(user.ID, "filler")
		testutil.AssertNoError(t, err)
	}
	notifications.NotifyReportReady(user.ID)

	deps.db.Model(&models.Notification{}).
		Where("user_id = ? AND message = ?", user.ID, "Your budget report is ready.").
		Count(&count)
	if count != 2 {
		t.Errorf("expected a second report-ready row after the window rolled, got %d", count)
	}
}

func TestNotifyHelpersMessageFormats(t *testing.T) {
	notifications, deps := newNotificationService(t)
	user := testutil.CreateTestUser(t, deps.db)

	notifications.NotifyExpenseAdded(user.ID, 123.45, "Food")
	notifications.NotifyBudgetExceeded(user.ID, "Food")
	notifications.NotifyBudgetNearingLimit(user.ID, "Travel", 85)
	notifications.NotifyAdminReminder(user.ID, "submit your receipts")
	notifications.NotifyReportExported(user.ID, "PDF")

	var list []models.Notification
	deps.db.Where("user_id = ?", user.ID).Find(&list)

	expected := []string{
		"Expense of ₹123.45 added to category Food.",
		"Warning: You have exceeded your budget for Food.",
		"Alert: You have spent 85% of your budget for Travel.",
		"Reminder from admin: submit your receipts",
		"Your budget report PDF has been exported successfully.",
	}
	for _, want := range expected {
		found := false
		for _, n := range list {
			if strings.Contains(n.Message, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing notification %q in %+v", want, list)
		}
	}
}
