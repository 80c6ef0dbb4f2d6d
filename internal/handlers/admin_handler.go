package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/services"
)

// AdminHandler handles admin-only requests. Routes are gated by the admin
// role middleware.
type AdminHandler struct {
	adminService services.AdminServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService services.AdminServicer) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// BroadcastRequest represents the payload for a broadcast notification.
type BroadcastRequest struct {
	Message string `json:"message" binding:"required,min=1,max=500"`
}

// Dashboard handles the admin dashboard counters
// @Summary     Admin dashboard
// @Description Get user/expense/budget counts and the most recent expenses
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DashboardStats "Dashboard statistics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.DashboardStats()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles listing all accounts
// @Summary     List users
// @Description Get every account
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.User "Users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ActivateUser handles re-enabling an account
// @Summary     Activate user
// @Description Re-enable a disabled account
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "User ID"
// @Success     200 {object} MessageResponse "User activated"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users/{id}/activate [put]
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.adminService.ActivateUser(userID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User activated"})
}

// DeactivateUser handles disabling an account
// @Summary     Deactivate user
// @Description Disable an account; the user can no longer log in
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "User ID"
// @Success     200 {object} MessageResponse "User deactivated"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users/{id}/deactivate [put]
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.adminService.DeactivateUser(userID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}

// ResetUserPassword handles resetting a user's password to the default
// @Summary     Reset user password
// @Description Overwrite a user's password with the default one
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "User ID"
// @Success     200 {object} MessageResponse "Password reset"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users/{id}/reset-password [put]
func (h *AdminHandler) ResetUserPassword(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.adminService.ResetUserPassword(userID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset to default"})
}

// AllExpenses handles listing every expense across users
// @Summary     List all expenses
// @Description Get every expense across users, newest first
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Expense "Expenses"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/expenses [get]
func (h *AdminHandler) AllExpenses(c *gin.Context) {
	expenses, err := h.adminService.AllExpenses()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// FlaggedExpenses handles listing expenses marked for review
// @Summary     List flagged expenses
// @Description Get every expense marked for review
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Expense "Flagged expenses"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/expenses/flagged [get]
func (h *AdminHandler) FlaggedExpenses(c *gin.Context) {
	expenses, err := h.adminService.FlaggedExpenses()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// FlagExpense handles marking an expense for review
// @Summary     Flag expense
// @Description Mark an expense for review
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} MessageResponse "Expense flagged"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/expenses/{id}/flag [put]
func (h *AdminHandler) FlagExpense(c *gin.Context) {
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.adminService.FlagExpense(expenseID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense flagged"})
}

// UnflagExpense handles clearing the review mark from an expense
// @Summary     Unflag expense
// @Description Clear the review mark from an expense
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} MessageResponse "Expense unflagged"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/expenses/{id}/unflag [put]
func (h *AdminHandler) UnflagExpense(c *gin.Context) {
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.adminService.UnflagExpense(expenseID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense unflagged"})
}

// DeleteExpense handles removing any user's expense
// @Summary     Delete any expense
// @Description Remove any user's expense
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/expenses/{id} [delete]
func (h *AdminHandler) DeleteExpense(c *gin.Context) {
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.adminService.DeleteExpense(expenseID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}

// BudgetSummary handles cross-user budget statistics
// @Summary     Budget summary
// @Description Get cross-user budget statistics
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.BudgetSummary "Budget summary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/budgets/summary [get]
func (h *AdminHandler) BudgetSummary(c *gin.Context) {
	summary, err := h.adminService.BudgetSummary()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SystemReport handles the full cross-user overview
// @Summary     System report
// @Description Get the full cross-user system overview
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SystemReport "System report"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/reports/system [get]
func (h *AdminHandler) SystemReport(c *gin.Context) {
	report, err := h.adminService.SystemReport()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Broadcast handles sending a notification to every user
// @Summary     Broadcast notification
// @Description Send a notification to every user
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BroadcastRequest true "Message"
// @Success     200 {object} MessageResponse "Broadcast sent"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/notifications [post]
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.adminService.Broadcast(req.Message); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Broadcast sent"})
}
