package services

import (
	"time"

	"github.com/tejgit8102/expensemate-backend/internal/models"
	"github.com/tejgit8102/expensemate-backend/internal/pagination"
)

// ProfileUpdate carries the optional fields of a profile update. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// UserServicer defines the contract for user and credential business logic.
type UserServicer interface {
	Register(username, email, password string) (*models.User, error)
	Authenticate(email, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateProfile(userID uint, update ProfileUpdate) (*models.User, error)
	ChangePassword(userID uint, currentPassword, newPassword string) error
	RequestPasswordReset(email string) error
	VerifyOTP(email, otp string) (bool, error)
	ResetPassword(email, otp, newPassword string) error
	EnsureAdmin(username, email, password string) error
}

// ExpenseInput carries the user-editable fields of an expense.
type ExpenseInput struct {
	Amount      float64
	Category    string
	Description string
	Date        time.Time
}

// ExpenseServicer defines the contract for expense business logic.
type ExpenseServicer interface {
	AddExpense(userID uint, input ExpenseInput) (*models.Expense, error)
	GetExpenses(userID uint, category, month string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	UpdateExpense(expenseID, userID uint, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(expenseID, userID uint) error
	SumForUserAndMonth(userID uint, month, year int) (float64, error)
	SumByCategoryForUserAndMonth(userID uint, month, year int) (map[string]float64, error)
	GetExpensesForMonth(userID uint, month, year int) ([]models.Expense, error)
}

// BudgetStatus contains the derived state of a budget for one period.
// TotalSpent is always recomputed from expenses, never cached.
type BudgetStatus struct {
	Month          int     `json:"month"`
	Year           int     `json:"year"`
	Amount         float64 `json:"amount"`
	TotalSpent     float64 `json:"total_spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
}

// BudgetServicer defines the contract for budget business logic.
type BudgetServicer interface {
	SetBudget(userID uint, month, year *int, amount float64) (*BudgetStatus, error)
	UpdateBudget(userID uint, month, year *int, amount float64) (*BudgetStatus, error)
	GetBudgetStatus(userID uint, month, year int) (*BudgetStatus, error)
}

// Insights is the computed result of insight generation for one period.
type Insights struct {
	DailyAverage      float64            `json:"daily_average"`
	MonthlyTotal      float64            `json:"monthly_total"`
	TopCategory       string             `json:"top_category"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	Message           string             `json:"message"`
}

// InsightServicer defines the contract for insight generation.
type InsightServicer interface {
	GenerateInsights(userID uint, period string) (*Insights, error)
	ExportInsightsPDF(userID uint, period string) ([]byte, error)
}

// NotificationServicer defines the contract for the per-user notification log.
// The Notify* helpers are best-effort side effects: failures are logged, not
// propagated, so a notification hiccup never fails the triggering operation.
type NotificationServicer interface {
	Create(userID uint, message string) (*models.Notification, error)
	ListForUser(userID uint) ([]models.Notification, error)
	MarkRead(notificationID uint) (*models.Notification, error)
	MarkAllRead(userID uint) error
	Broadcast(message string) error

	NotifyExpenseAdded(userID uint, amount float64, category string)
	NotifyBudgetExceeded(userID uint, category string)
	NotifyMonthlyOverspend(userID uint, monthName string)
	NotifyBudgetNearingLimit(userID uint, category string, percent float64)
	NotifyReportReady(userID uint)
	NotifyAdminReminder(userID uint, message string)
	NotifyReportExported(userID uint, format string)
}

// Report contains the aggregated figures for a monthly or annual report.
// Month is nil for annual reports. For annual reports Budget and Remaining
// reflect the current calendar month, not the report year; rendered output
// labels them accordingly.
type Report struct {
	Month            *int               `json:"month,omitempty"`
	Year             int                `json:"year"`
	TotalSpent       float64            `json:"total_spent"`
	Budget           float64            `json:"budget"`
	Remaining        float64            `json:"remaining"`
	CategoryExpenses map[string]float64 `json:"category_expenses"`
	MonthlyExpenses  map[string]float64 `json:"monthly_expenses,omitempty"`
}

// ReportServicer defines the contract for report aggregation and export.
type ReportServicer interface {
	MonthlyReport(userID uint, month, year int) (*Report, error)
	AnnualReport(userID uint, year int) (*Report, error)
	ExportPDF(userID uint, month *int, year int) ([]byte, string, error)
	ExportExcel(userID uint, month *int, year int) ([]byte, string, error)
}

// DashboardStats contains the admin dashboard counters.
type DashboardStats struct {
	TotalUsers     int64            `json:"total_users"`
	TotalExpenses  int64            `json:"total_expenses"`
	TotalBudgets   int64            `json:"total_budgets"`
	RecentExpenses []models.Expense `json:"recent_expenses"`
}

// BudgetSummary contains cross-user budget statistics.
type BudgetSummary struct {
	TotalBudgets   int64   `json:"total_budgets"`
	AverageBudget  float64 `json:"avg_budget"`
	OverLimitCount int64   `json:"over_limit_budgets"`
}

// SystemReport contains the full cross-user system overview.
type SystemReport struct {
	UserCount         int64              `json:"user_count"`
	ExpenseCount      int64              `json:"expense_count"`
	BudgetCount       int64              `json:"budget_count"`
	FlaggedExpenses   int64              `json:"flagged_expenses"`
	ActiveUsers       int64              `json:"active_users"`
	LatestUsers       []models.User      `json:"latest_users"`
	RecentExpenses    []models.Expense   `json:"recent_expenses"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	DailyUsage        map[string]int64   `json:"daily_usage"`
}

// AdminServicer defines the contract for cross-user admin operations.
type AdminServicer interface {
	DashboardStats() (*DashboardStats, error)
	ListUsers() ([]models.User, error)
	ActivateUser(userID uint) error
	DeactivateUser(userID uint) error
	ResetUserPassword(userID uint) error
	AllExpenses() ([]models.Expense, error)
	FlaggedExpenses() ([]models.Expense, error)
	FlagExpense(expenseID uint) error
	UnflagExpense(expenseID uint) error
	DeleteExpense(expenseID uint) error
	BudgetSummary() (*BudgetSummary, error)
	SystemReport() (*SystemReport, error)
	Broadcast(message string) error
}

// Mailer delivers outbound mail. The production implementation talks SMTP;
// tests substitute a recorder.
type Mailer interface {
	SendOTP(to, otp string) error
}
