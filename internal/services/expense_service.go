package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/models"
	"github.com/tejgit8102/expensemate-backend/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db            *gorm.DB
	notifications NotificationServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, notifications NotificationServicer) ExpenseServicer {
	return &expenseService{db: db, notifications: notifications}
}

// AddExpense saves a new expense for a user, then notifies the user and runs
// the budget threshold check for the expense's category. The category check
// compares the category's month-to-date sum against the single monthly budget
// amount; the budget has no category dimension.
func (s *expenseService) AddExpense(userID uint, input ExpenseInput) (*models.Expense, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	expense := &models.Expense{
		UserID:      userID,
		Amount:      input.Amount,
		Category:    input.Category,
		Description: input.Description,
		Date:        input.Date,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifications.NotifyExpenseAdded(userID, expense.Amount, expense.Category)
	s.checkCategoryBudget(userID, expense)

	return expense, nil
}

// checkCategoryBudget emits threshold notifications after an insert. Exceeded
// wins over nearing-limit; nothing is emitted without a budget for the
// expense's month.
func (s *expenseService) checkCategoryBudget(userID uint, expense *models.Expense) {
	month := int(expense.Date.Month())
	year := expense.Date.Year()

	var budget models.Budget
	err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&budget).Error
	if err != nil {
		return
	}

	totalSpent, err := s.sumForCategoryAndMonth(userID, expense.Category, month, year)
	if err != nil {
		return
	}

	percentSpent := totalSpent / budget.Amount * 100

	if totalSpent > budget.Amount {
		s.notifications.NotifyBudgetExceeded(userID, expense.Category)
	} else if percentSpent >= 80 {
		s.notifications.NotifyBudgetNearingLimit(userID, expense.Category, percentSpent)
	}
}

// sumForCategoryAndMonth sums a single category's expenses within a month.
func (s *expenseService) sumForCategoryAndMonth(userID uint, category string, month, year int) (float64, error) {
	start, end := monthRange(month, year)

	var total float64
	err := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category = ? AND date >= ? AND date <= ?", userID, category, start, end).
		Scan(&total).Error
	return total, err
}

// GetExpenses returns a paginated list of expenses with at most one filter:
// a non-empty category wins over a month filter; combined filtering is not
// supported.
func (s *expenseService) GetExpenses(userID uint, category, month string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)

	switch {
	case category != "":
		base = base.Where("category = ?", category)
	case month != "":
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, apperrors.ErrInvalidMonthFilter
		}
		first, last := monthRange(int(start.Month()), start.Year())
		base = base.Where("date >= ? AND date <= ?", first, last)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getOwnedExpense fetches an expense and verifies ownership.
func (s *expenseService) getOwnedExpense(expenseID, userID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expense.UserID != userID {
		return nil, apperrors.ErrExpenseOwnership
	}
	return &expense, nil
}

// UpdateExpense replaces the editable fields of an expense owned by userID.
func (s *expenseService) UpdateExpense(expenseID, userID uint, input ExpenseInput) (*models.Expense, error) {
	expense, err := s.getOwnedExpense(expenseID, userID)
	if err != nil {
		return nil, err
	}

	expense.Amount = input.Amount
	expense.Category = input.Category
	expense.Description = input.Description
	expense.Date = input.Date

	if err := s.db.Save(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// DeleteExpense removes an expense owned by userID.
func (s *expenseService) DeleteExpense(expenseID, userID uint) error {
	expense, err := s.getOwnedExpense(expenseID, userID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SumForUserAndMonth returns the total spent by a user within a calendar
// month, zero when there are no expenses.
func (s *expenseService) SumForUserAndMonth(userID uint, month, year int) (float64, error) {
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

// SumByCategoryForUserAndMonth returns per-category sums within a calendar
// month, an empty map when there are no expenses.
func (s *expenseService) SumByCategoryForUserAndMonth(userID uint, month, year int) (map[string]float64, error) {
	start, end := monthRange(month, year)

	type row struct {
		Category string
		Total    float64
	}
	var rows []row
	err := s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sums := make(map[string]float64, len(rows))
	for _, r := range rows {
		sums[r.Category] = r.Total
	}
	return sums, nil
}

// GetExpensesForMonth returns all of a user's expenses within a calendar month.
func (s *expenseService) GetExpensesForMonth(userID uint, month, year int) ([]models.Expense, error) {
	start, end := monthRange(month, year)

	var expenses []models.Expense
	err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Find(&expenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}
