package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/logger"
	"github.com/tejgit8102/expensemate-backend/internal/models"
)

// reportReadyMessage is deduplicated against the newest notifications so
// repeated idempotent budget calls do not re-notify.
const reportReadyMessage = "Your budget report is ready."

// reportReadyDedupWindow is how many of the newest notifications are scanned
// for a duplicate report-ready message.
const reportReadyDedupWindow = 5

// notificationService handles the per-user notification log.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// Create appends a notification for a user. The user must exist.
func (s *notificationService) Create(userID uint, message string) (*models.Notification, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Message: message,
		Read:    false,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notification, nil
}

// ListForUser returns all notifications for a user, newest first.
func (s *notificationService) ListForUser(userID uint) ([]models.Notification, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notifications, nil
}

// MarkRead marks a single notification as read.
func (s *notificationService) MarkRead(notificationID uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !notification.Read {
		if err := s.db.Model(&notification).Update("is_read", true).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		notification.Read = true
	}
	return &notification, nil
}

// MarkAllRead bulk-marks every unread notification of a user as read.
func (s *notificationService) MarkAllRead(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Broadcast creates one notification per existing user with the admin suffix
// appended. Delivery is not transactional across recipients: a failure
// partway leaves already-notified users as-is and returns the error.
func (s *notificationService) Broadcast(message string) error {
	adminMessage := message + " by admin"

	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("broadcasting notification", "recipients", len(users))

	for i := range users {
		if _, err := s.Create(users[i].ID, adminMessage); err != nil {
			return err
		}
	}
	return nil
}

// bestEffort creates a notification and only logs on failure. Notifications
// are side effects and must never fail the operation that triggered them.
func (s *notificationService) bestEffort(userID uint, message string) {
	if _, err := s.Create(userID, message); err != nil {
		logger.Get().Warnw("failed to create notification",
			"user_id", userID,
			"error", err.Error(),
		)
	}
}

// NotifyExpenseAdded records that a new expense was saved.
func (s *notificationService) NotifyExpenseAdded(userID uint, amount float64, category string) {
	s.bestEffort(userID, fmt.Sprintf("Expense of ₹%.2f added to category %s.", amount, category))
}

// NotifyBudgetExceeded warns that category spending passed the monthly budget.
func (s *notificationService) NotifyBudgetExceeded(userID uint, category string) {
	s.bestEffort(userID, fmt.Sprintf("Warning: You have exceeded your budget for %s.", category))
}

// NotifyMonthlyOverspend warns that the whole month's spending passed the
// monthly budget.
func (s *notificationService) NotifyMonthlyOverspend(userID uint, monthName string) {
	s.bestEffort(userID, fmt.Sprintf("⚠️ You've exceeded your budget for %s!", monthName))
}

// NotifyBudgetNearingLimit warns that category spending reached the given
// percentage of the monthly budget.
func (s *notificationService) NotifyBudgetNearingLimit(userID uint, category string, percent float64) {
	s.bestEffort(userID, fmt.Sprintf("Alert: You have spent %.0f%% of your budget for %s.", percent, category))
}

// NotifyReportReady records that a budget report is available, suppressing
// the message when it already appears among the newest notifications.
func (s *notificationService) NotifyReportReady(userID uint) {
	var recent []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(reportReadyDedupWindow).
		Find(&recent).Error
	if err != nil {
		logger.Get().Warnw("failed to check recent notifications", "user_id", userID, "error", err.Error())
		return
	}

	for i := range recent {
		if recent[i].Message == reportReadyMessage {
			return
		}
	}
	s.bestEffort(userID, reportReadyMessage)
}

// NotifyAdminReminder records a reminder sent by an admin.
func (s *notificationService) NotifyAdminReminder(userID uint, message string) {
	s.bestEffort(userID, "Reminder from admin: "+message)
}

// NotifyReportExported records a successful report export.
func (s *notificationService) NotifyReportExported(userID uint, format string) {
	s.bestEffort(userID, fmt.Sprintf("Your budget report %s has been exported successfully.", format))
}
