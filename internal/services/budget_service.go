package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db            *gorm.DB
	expenses      ExpenseServicer
	notifications NotificationServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, expenses ExpenseServicer, notifications NotificationServicer) BudgetServicer {
	return &budgetService{db: db, expenses: expenses, notifications: notifications}
}

// SetBudget creates or overwrites the budget for a period. Month and year
// default to the current calendar period when absent.
func (s *budgetService) SetBudget(userID uint, month, year *int, amount float64) (*BudgetStatus, error) {
	return s.saveOrUpdate(userID, month, year, amount, false)
}

// UpdateBudget overwrites an existing budget for a period; the budget row
// must already exist.
func (s *budgetService) UpdateBudget(userID uint, month, year *int, amount float64) (*BudgetStatus, error) {
	return s.saveOrUpdate(userID, month, year, amount, true)
}

func (s *budgetService) saveOrUpdate(userID uint, monthPtr, yearPtr *int, amount float64, mustExist bool) (*BudgetStatus, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	month := int(now.Month())
	year := now.Year()
	if monthPtr != nil {
		month = *monthPtr
	}
	if yearPtr != nil {
		year = *yearPtr
	}
	if month < 1 || month > 12 {
		return nil, apperrors.ErrInvalidMonth
	}
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	var budget models.Budget
	err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&budget).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if mustExist {
			return nil, apperrors.ErrBudgetNotFound
		}
		budget = models.Budget{UserID: userID, Month: month, Year: year, Amount: amount}
		if createErr := s.db.Create(&budget).Error; createErr != nil {
			// A concurrent first-time set can lose the race on the
			// (user, month, year) unique index; fall back to updating
			// the winning row instead of duplicating it.
			if isUniqueViolation(createErr) {
				if err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
					First(&budget).Error; err != nil {
					return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				if err := s.db.Model(&budget).Update("amount", amount).Error; err != nil {
					return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				budget.Amount = amount
			} else {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, createErr)
			}
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		if err := s.db.Model(&budget).Update("amount", amount).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		budget.Amount = amount
	}

	totalSpent, err := s.expenses.SumForUserAndMonth(userID, month, year)
	if err != nil {
		return nil, err
	}

	if amount > 0 && totalSpent > amount {
		s.sendOverspendNotification(userID, month)
	}

	// Notify only when the user sets or updates a budget, never on a
	// plain status read.
	s.notifications.NotifyReportReady(userID)

	return statusFor(&budget, totalSpent), nil
}

// GetBudgetStatus recomputes the derived budget state for a period. A missing
// budget row yields zeroed amounts, not an error.
func (s *budgetService) GetBudgetStatus(userID uint, month, year int) (*BudgetStatus, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if month < 1 || month > 12 {
		return nil, apperrors.ErrInvalidMonth
	}

	totalSpent, err := s.expenses.SumForUserAndMonth(userID, month, year)
	if err != nil {
		return nil, err
	}

	var budget models.Budget
	err = s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &BudgetStatus{Month: month, Year: year, TotalSpent: totalSpent}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if totalSpent > budget.Amount {
		s.sendOverspendNotification(userID, month)
	}

	return statusFor(&budget, totalSpent), nil
}

// statusFor derives the spent/remaining/percentage view of a budget row.
// PercentageUsed is zero when the budgeted amount is zero.
func statusFor(budget *models.Budget, totalSpent float64) *BudgetStatus {
	status := &BudgetStatus{
		Month:      budget.Month,
		Year:       budget.Year,
		Amount:     budget.Amount,
		TotalSpent: totalSpent,
		Remaining:  budget.Amount - totalSpent,
	}
	if budget.Amount > 0 {
		status.PercentageUsed = totalSpent / budget.Amount * 100
	}
	return status
}

func (s *budgetService) sendOverspendNotification(userID uint, month int) {
	s.notifications.NotifyMonthlyOverspend(userID, time.Month(month).String())
}

// isUniqueViolation reports whether err looks like a unique-constraint
// violation from either postgres or sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
