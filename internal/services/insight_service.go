package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/export"
	"github.com/tejgit8102/expensemate-backend/internal/logger"
	"github.com/tejgit8102/expensemate-backend/internal/models"
)

// noDataNarrative is returned for periods without any expenses.
const noDataNarrative = "No spending data available for this period."

// categoryKeywords maps vendor keywords found in descriptions to the
// category auto-assigned to uncategorized expenses.
var categoryKeywords = map[string]string{
	"swiggy":      "Food",
	"zomato":      "Food",
	"uber":        "Travel",
	"ola":         "Travel",
	"electricity": "Utilities",
	"rent":        "Housing",
}

// insightService derives spending insights from expenses and budgets.
type insightService struct {
	db *gorm.DB
}

// NewInsightService creates a new InsightServicer.
func NewInsightService(db *gorm.DB) InsightServicer {
	return &insightService{db: db}
}

// GenerateInsights computes the summary metrics and the twelve-section
// narrative for a period. The period is "all", "current", or an explicit
// "YYYY-MM" month; anything else is an invalid-argument failure. An empty
// expense set yields a zeroed result with a fixed no-data narrative.
func (s *insightService) GenerateInsights(userID uint, period string) (*Insights, error) {
	expenses, err := s.expensesForPeriod(userID, period)
	if err != nil {
		return nil, err
	}

	if len(expenses) == 0 {
		return &Insights{
			TopCategory:       "N/A",
			CategoryBreakdown: map[string]float64{},
			Message:           noDataNarrative,
		}, nil
	}

	var totalSpent float64
	days := make(map[string]struct{})
	categoryTotals := make(map[string]float64)
	categoryCounts := make(map[string]int)
	dailySpending := make(map[string]float64)

	for i := range expenses {
		e := &expenses[i]
		day := e.Date.Format("2006-01-02")
		totalSpent += e.Amount
		days[day] = struct{}{}
		categoryTotals[e.Category] += e.Amount
		categoryCounts[e.Category]++
		dailySpending[day] += e.Amount
	}

	denominator := len(days)
	if denominator < 1 {
		denominator = 1
	}
	dailyAvg := totalSpent / float64(denominator)

	topCategory := topCategoryOf(categoryTotals)

	var msg strings.Builder
	msg.WriteString("AI-Powered Insights\n\n")

	// 1. Top spending category.
	fmt.Fprintf(&msg, "1. Top Spending Category: %s (₹%.2f total)\n\n",
		topCategory, categoryTotals[topCategory])

	// 2. Trend vs. the previous calendar month, only when it had spending.
	previousMonthTotal := s.previousMonthTotal(userID)
	if previousMonthTotal > 0 {
		changePercent := (totalSpent - previousMonthTotal) / previousMonthTotal * 100
		trend := "increased"
		if changePercent < 0 {
			trend = "decreased"
		}
		fmt.Fprintf(&msg, "2. Spending Trend: Your spending has %s by %.2f%% compared to last month.\n\n",
			trend, abs(changePercent))
	}

	// 3. Outliers above twice the mean expense amount, in input order.
	avgExpense := totalSpent / float64(len(expenses))
	var unusual []models.Expense
	for i := range expenses {
		if expenses[i].Amount > 2*avgExpense {
			unusual = append(unusual, expenses[i])
		}
	}
	if len(unusual) > 0 {
		msg.WriteString("3. Unusual Expenses Alert: ⚠️ ")
		for i := range unusual {
			fmt.Fprintf(&msg, "%s (₹%.2f), ", unusual[i].Category, unusual[i].Amount)
		}
		msg.WriteString("stands out as unusually high.\n\n")
	}

	// 4. Budget usage for the resolved month ("all" and "current" resolve
	// to the current calendar month).
	budgetMonth, budgetYear := resolveBudgetPeriod(period)
	budget, hasBudget := s.findBudget(userID, budgetMonth, budgetYear)
	if hasBudget {
		budgetUsage := totalSpent / budget.Amount * 100
		msg.WriteString("4. Budget Usage: ")
		if budgetUsage >= 80 {
			msg.WriteString("⚠️ ")
		}
		fmt.Fprintf(&msg, "You've used %.0f%% of your monthly budget (₹%.2f / ₹%.2f).\n\n",
			budgetUsage, totalSpent, budget.Amount)
	}

	// 5. Daily average over distinct days with an expense.
	fmt.Fprintf(&msg, "5. Daily Average Spending: ₹%.2f per day this month.\n\n", dailyAvg)

	// 6. Full category breakdown by descending amount.
	msg.WriteString("6. Category Breakdown:\n")
	for _, category := range categoriesByAmountDesc(categoryTotals) {
		fmt.Fprintf(&msg, "   - %s: ₹%.2f\n", category, categoryTotals[category])
	}
	msg.WriteString("\n")

	// 7. Recurring categories: three or more entries in the period.
	var recurring []string
	for category, count := range categoryCounts {
		if count >= 3 {
			recurring = append(recurring, category)
		}
	}
	if len(recurring) > 0 {
		sort.Strings(recurring)
		fmt.Fprintf(&msg, "7. Recurring Expenses: You consistently spend on: %s.\n\n",
			strings.Join(recurring, ", "))
	}

	// 8. Savings tip once spending passes 70% of the budget.
	if hasBudget && totalSpent > budget.Amount*0.7 {
		fmt.Fprintf(&msg, "8. Potential Savings Tip: Consider reducing spending in %s or other categories to stay under budget.\n\n",
			topCategory)
	}

	// 9. Highest single-day spend, flagged when above twice the daily average.
	highestDay, highestAmount := highestSpendingDay(dailySpending)
	if highestDay != "" && highestAmount > dailyAvg*2 {
		fmt.Fprintf(&msg, "9. High Spending Days: ⚠️ Highest spending occurred on %s: ₹%.2f.\n\n",
			highestDay, highestAmount)
	}

	// 10. Categorization suggestion for blank categories.
	hasUncategorized := false
	for i := range expenses {
		if strings.TrimSpace(expenses[i].Category) == "" {
			hasUncategorized = true
			break
		}
	}
	if hasUncategorized {
		fmt.Fprintf(&msg, "10. Expense Categorization Suggestion: Some uncategorized expenses could be assigned to %s or other categories for better tracking.\n\n",
			topCategory)
	}

	// 11. Overspend alert with the exact overage, or a projected-overage
	// warning past 80% of the budget.
	if hasBudget {
		if totalSpent > budget.Amount {
			fmt.Fprintf(&msg, "11. Alert for Overspending: You have exceeded your monthly budget by ₹%.2f.\n\n",
				totalSpent-budget.Amount)
		} else if totalSpent > budget.Amount*0.8 {
			fmt.Fprintf(&msg, "11. Alert for Overspending: At this rate, you may exceed your monthly budget by ₹%.2f.\n\n",
				totalSpent-budget.Amount)
		}
	}

	// 12. Savings opportunity when spending sits below half the budget.
	if hasBudget && totalSpent < budget.Amount*0.5 {
		fmt.Fprintf(&msg, "12. Savings Opportunity: You could save up to ₹%.2f by maintaining this spending level.\n\n",
			budget.Amount*0.5-totalSpent)
	}

	// Best-effort auto-categorization of blank categories from vendor
	// keywords in the description. Runs after the metrics are computed so
	// the returned breakdown reflects the fetched state; the reassignment
	// is persisted explicitly.
	s.autoCategorize(expenses)

	return &Insights{
		DailyAverage:      dailyAvg,
		MonthlyTotal:      totalSpent,
		TopCategory:       topCategory,
		CategoryBreakdown: categoryTotals,
		Message:           msg.String(),
	}, nil
}

// ExportInsightsPDF renders the generated insights as a PDF document.
func (s *insightService) ExportInsightsPDF(userID uint, period string) ([]byte, error) {
	insights, err := s.GenerateInsights(userID, period)
	if err != nil {
		return nil, err
	}

	data, err := export.InsightsPDF(insights.Message, insights.MonthlyTotal, insights.DailyAverage, insights.TopCategory)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	return data, nil
}

// expensesForPeriod fetches a user's expenses for a period selector.
func (s *insightService) expensesForPeriod(userID uint, period string) ([]models.Expense, error) {
	query := s.db.Where("user_id = ?", userID).Order("id ASC")

	switch {
	case period == "" || strings.EqualFold(period, "all"):
		// no date filter
	case strings.EqualFold(period, "current"):
		now := time.Now()
		start, end := monthRange(int(now.Month()), now.Year())
		query = query.Where("date >= ? AND date <= ?", start, end)
	default:
		target, err := time.Parse("2006-01", period)
		if err != nil {
			return nil, apperrors.ErrInvalidPeriod
		}
		start, end := monthRange(int(target.Month()), target.Year())
		query = query.Where("date >= ? AND date <= ?", start, end)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// previousMonthTotal sums the previous calendar month's expenses.
func (s *insightService) previousMonthTotal(userID uint) float64 {
	previous := time.Now().AddDate(0, -1, 0)
	start, end := monthRange(int(previous.Month()), previous.Year())

	var total float64
	err := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Scan(&total).Error
	if err != nil {
		logger.Get().Warnw("failed to sum previous month", "user_id", userID, "error", err.Error())
		return 0
	}
	return total
}

func (s *insightService) findBudget(userID uint, month, year int) (*models.Budget, bool) {
	var budget models.Budget
	err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false
	}
	if err != nil {
		logger.Get().Warnw("failed to look up budget", "user_id", userID, "error", err.Error())
		return nil, false
	}
	return &budget, true
}

// autoCategorize assigns a category to blank-category expenses whose
// description contains a known vendor keyword, and persists the change.
func (s *insightService) autoCategorize(expenses []models.Expense) {
	for i := range expenses {
		e := &expenses[i]
		if strings.TrimSpace(e.Category) != "" {
			continue
		}
		description := strings.ToLower(e.Description)
		for keyword, category := range categoryKeywords {
			if strings.Contains(description, keyword) {
				if err := s.db.Model(e).Update("category", category).Error; err != nil {
					logger.Get().Warnw("failed to persist auto-category",
						"expense_id", e.ID,
						"error", err.Error(),
					)
					continue
				}
				e.Category = category
				break
			}
		}
	}
}

// resolveBudgetPeriod maps a period selector to the month used for budget
// lookups: the explicit month when given, otherwise the current one.
func resolveBudgetPeriod(period string) (int, int) {
	if period != "" && !strings.EqualFold(period, "all") && !strings.EqualFold(period, "current") {
		if target, err := time.Parse("2006-01", period); err == nil {
			return int(target.Month()), target.Year()
		}
	}
	now := time.Now()
	return int(now.Month()), now.Year()
}

// topCategoryOf picks the category with the largest total; ties resolve to
// the lexicographically smallest name so results are deterministic.
func topCategoryOf(totals map[string]float64) string {
	top := "N/A"
	best := 0.0
	first := true
	for category, amount := range totals {
		if first || amount > best || (amount == best && category < top) {
			top = category
			best = amount
			first = false
		}
	}
	return top
}

// categoriesByAmountDesc orders categories by descending total, ties by name.
func categoriesByAmountDesc(totals map[string]float64) []string {
	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if totals[categories[i]] != totals[categories[j]] {
			return totals[categories[i]] > totals[categories[j]]
		}
		return categories[i] < categories[j]
	})
	return categories
}

// highestSpendingDay returns the day with the largest total; ties resolve to
// the earliest day.
func highestSpendingDay(daily map[string]float64) (string, float64) {
	var bestDay string
	var best float64
	for day, amount := range daily {
		if bestDay == "" || amount > best || (amount == best && day < bestDay) {
			bestDay = day
			best = amount
		}
	}
	return bestDay, best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
