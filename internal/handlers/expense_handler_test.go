package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/middleware"
	"github.com/tejgit8102/expensemate-backend/internal/models"
	"github.com/tejgit8102/expensemate-backend/internal/pagination"
	"github.com/tejgit8102/expensemate-backend/internal/services"
	"github.com/tejgit8102/expensemate-backend/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Register()
	m.Run()
}

// --- shared helpers ---

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- mock expense service ---

type mockExpenseService struct {
	addExpenseFn    func(userID uint, input services.ExpenseInput) (*models.Expense, error)
	getExpensesFn   func(userID uint, category, month string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	updateExpenseFn func(expenseID, userID uint, input services.ExpenseInput) (*models.Expense, error)
	deleteExpenseFn func(expenseID, userID uint) error
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

func (m *mockExpenseService) AddExpense(userID uint, input services.ExpenseInput) (*models.Expense, error) {
	if m.addExpenseFn != nil {
		return m.addExpenseFn(userID, input)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenses(userID uint, category, month string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	if m.getExpensesFn != nil {
		return m.getExpensesFn(userID, category, month, page)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) UpdateExpense(expenseID, userID uint, input services.ExpenseInput) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(expenseID, userID, input)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(expenseID, userID uint) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(expenseID, userID)
	}
	return nil
}

func (m *mockExpenseService) SumForUserAndMonth(userID uint, month, year int) (float64, error) {
	return 0, nil
}

func (m *mockExpenseService) SumByCategoryForUserAndMonth(userID uint, month, year int) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (m *mockExpenseService) GetExpensesForMonth(userID uint, month, year int) ([]models.Expense, error) {
	return nil, nil
}

// --- router setup ---

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/expenses", handler.AddExpense)
	auth.GET("/expenses", handler.GetExpenses)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	auth.GET("/expenses/total/:month/:year", handler.GetMonthlyTotal)
	return r
}

// --- tests ---

func TestExpenseHandler_AddExpense(t *testing.T) {
	t.Run("returns_201_on_success", func(t *testing.T) {
		svc := &mockExpenseService{
			addExpenseFn: func(userID uint, input services.ExpenseInput) (*models.Expense, error) {
				return &models.Expense{
					Base:     models.Base{ID: 7},
					UserID:   userID,
					Amount:   input.Amount,
					Category: input.Category,
				}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "POST", "/expenses", `{"amount":250,"category":"Food"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		expense := result["expense"].(map[string]interface{})
		if expense["amount"] != 250.0 {
			t.Errorf("expected amount=250, got %v", expense["amount"])
		}
	})

	t.Run("returns_400_on_non_positive_amount", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/expenses", `{"amount":0,"category":"Food"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestExpenseHandler_UpdateExpense(t *testing.T) {
	t.Run("returns_403_on_foreign_expense", func(t *testing.T) {
		svc := &mockExpenseService{
			updateExpenseFn: func(expenseID, userID uint, input services.ExpenseInput) (*models.Expense, error) {
				return nil, apperrors.ErrExpenseOwnership
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "PUT", "/expenses/3", `{"amount":10,"category":"Food"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "OWNERSHIP_VIOLATION")
	})

	t.Run("returns_400_on_bad_id", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "PUT", "/expenses/abc", `{"amount":10,"category":"Food"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("returns_404_when_missing", func(t *testing.T) {
		svc := &mockExpenseService{
			deleteExpenseFn: func(expenseID, userID uint) error {
				return apperrors.ErrExpenseNotFound
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "DELETE", "/expenses/42", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}

func TestExpenseHandler_GetExpenses(t *testing.T) {
	t.Run("passes_filters_through", func(t *testing.T) {
		var gotCategory, gotMonth string
		svc := &mockExpenseService{
			getExpensesFn: func(userID uint, category, month string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
				gotCategory, gotMonth = category, month
				resp := pagination.NewPageResponse([]models.Expense{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "GET", "/expenses?category=Food&month=2025-03", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCategory != "Food" || gotMonth != "2025-03" {
			t.Errorf("filters not passed through: category=%q month=%q", gotCategory, gotMonth)
		}
	})
}

func TestExpenseHandler_GetMonthlyTotal(t *testing.T) {
	t.Run("returns_400_on_invalid_month", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "GET", "/expenses/total/13/2025", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_MONTH")
	})
}
