package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/logger"
	"github.com/tejgit8102/expensemate-backend/internal/models"
)

// defaultResetPassword is the password assigned by an admin reset. The user
// is expected to change it on next login.
const defaultResetPassword = "default123"

// adminService handles cross-user administrative operations.
type adminService struct {
	db            *gorm.DB
	notifications NotificationServicer
}

// NewAdminService creates a new AdminServicer.
func NewAdminService(db *gorm.DB, notifications NotificationServicer) AdminServicer {
	return &adminService{db: db, notifications: notifications}
}

// DashboardStats returns the headline counters plus the ten most recent
// expenses across all users.
func (s *adminService) DashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Expense{}).Count(&stats.TotalExpenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Budget{}).Count(&stats.TotalBudgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Order("created_at DESC, id DESC").Limit(10).
		Find(&stats.RecentExpenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stats, nil
}

// ListUsers returns every account, oldest first.
func (s *adminService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return users, nil
}

// ActivateUser re-enables a disabled account.
func (s *adminService) ActivateUser(userID uint) error {
	return s.setActive(userID, true)
}

// DeactivateUser disables an account; the user can no longer log in.
func (s *adminService) DeactivateUser(userID uint) error {
	return s.setActive(userID, false)
}

func (s *adminService) setActive(userID uint, active bool) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&user).Update("active", active).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("user active flag changed", "user_id", userID, "active", active)
	return nil
}

// ResetUserPassword overwrites a user's password with the default one.
func (s *adminService) ResetUserPassword(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultResetPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&user).Update("password", string(hash)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("user password reset by admin", "user_id", userID)
	return nil
}

// AllExpenses returns every expense across users, newest first.
func (s *adminService) AllExpenses() ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Order("date DESC, id DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// FlaggedExpenses returns every expense marked for review.
func (s *adminService) FlaggedExpenses() ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Where("flagged = ?", true).
		Order("date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// FlagExpense marks an expense for review.
func (s *adminService) FlagExpense(expenseID uint) error {
	return s.setFlagged(expenseID, true)
}

// UnflagExpense clears the review mark from an expense.
func (s *adminService) UnflagExpense(expenseID uint) error {
	return s.setFlagged(expenseID, false)
}

func (s *adminService) setFlagged(expenseID uint, flagged bool) error {
	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&expense).Update("flagged", flagged).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteExpense removes any user's expense without an ownership check.
func (s *adminService) DeleteExpense(expenseID uint) error {
	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(&expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("expense deleted by admin", "expense_id", expenseID, "user_id", expense.UserID)
	return nil
}

// BudgetSummary returns cross-user budget statistics: total count, average
// amount and how many budgets are currently over their limit.
func (s *adminService) BudgetSummary() (*BudgetSummary, error) {
	summary := &BudgetSummary{}

	if err := s.db.Model(&models.Budget{}).Count(&summary.TotalBudgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if summary.TotalBudgets == 0 {
		return summary, nil
	}

	if err := s.db.Model(&models.Budget{}).
		Select("COALESCE(AVG(amount), 0)").
		Scan(&summary.AverageBudget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := s.db.Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range budgets {
		b := &budgets[i]
		spent, err := s.sumForUserAndMonth(b.UserID, b.Month, b.Year)
		if err != nil {
			return nil, err
		}
		if spent > b.Amount {
			summary.OverLimitCount++
		}
	}
	return summary, nil
}

// SystemReport assembles the full cross-user overview for the admin panel.
func (s *adminService) SystemReport() (*SystemReport, error) {
	report := &SystemReport{}

	if err := s.db.Model(&models.User{}).Count(&report.UserCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Expense{}).Count(&report.ExpenseCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Budget{}).Count(&report.BudgetCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Expense{}).
		Where("flagged = ?", true).
		Count(&report.FlaggedExpenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Active users: anyone with an expense in the last 30 days.
	since := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.Expense{}).
		Where("date >= ?", since).
		Distinct("user_id").
		Count(&report.ActiveUsers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Order("created_at DESC, id DESC").Limit(5).
		Find(&report.LatestUsers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Order("created_at DESC, id DESC").Limit(10).
		Find(&report.RecentExpenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type categoryRow struct {
		Category string
		Total    float64
	}
	var categoryRows []categoryRow
	if err := s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Group("category").
		Scan(&categoryRows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	report.CategoryBreakdown = make(map[string]float64, len(categoryRows))
	for _, row := range categoryRows {
		report.CategoryBreakdown[row.Category] = row.Total
	}

	// Expense counts per day over the last seven days, zero-filled.
	report.DailyUsage = make(map[string]int64, 7)
	for offset := 6; offset >= 0; offset-- {
		day := time.Now().AddDate(0, 0, -offset)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 0, 1)

		var count int64
		if err := s.db.Model(&models.Expense{}).
			Where("date >= ? AND date < ?", start, end).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		report.DailyUsage[start.Format("2006-01-02")] = count
	}

	return report, nil
}

// Broadcast sends a notification to every user on behalf of an admin.
func (s *adminService) Broadcast(message string) error {
	return s.notifications.Broadcast(message)
}

func (s *adminService) sumForUserAndMonth(userID uint, month, year int) (float64, error) {
	start, end := monthRange(month, year)

	var total float64
	err := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}
