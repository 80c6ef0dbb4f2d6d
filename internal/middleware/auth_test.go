package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tejgit8102/expensemate-backend/internal/models"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	protected := r.Group("", AuthMiddleware())
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.MustGet(ContextUserID),
			"role":    c.MustGet(ContextRole),
		})
	})

	admin := protected.Group("/admin", RequireAdmin())
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGenerateAndParseToken(t *testing.T) {
	user := &models.User{
		Base:     models.Base{ID: 42},
		Username: "alice",
		Email:    "alice@test.com",
		Role:     models.RoleUser,
	}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "alice@test.com" || claims.Username != "alice" {
		t.Errorf("claims do not round-trip: %+v", claims)
	}
	if claims.Role != models.RoleUser {
		t.Errorf("expected USER role claim, got %s", claims.Role)
	}
}

func TestAuthMiddleware(t *testing.T) {
	r := setupAuthRouter()
	user := &models.User{Base: models.Base{ID: 7}, Username: "bob", Email: "bob@test.com", Role: models.RoleUser}

	t.Run("missing header returns structured 401", func(t *testing.T) {
		rec := get(r, "/me", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}

		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to parse body: %v", err)
		}
		for _, key := range []string{"status", "error", "path", "message"} {
			if _, ok := body[key]; !ok {
				t.Errorf("401 body missing %q: %v", key, body)
			}
		}
		if body["path"] != "/me" {
			t.Errorf("expected path /me, got %v", body["path"])
		}
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		rec := get(r, "/me", "Token abc")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		rec := get(r, "/me", "Bearer not-a-jwt")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("valid token passes identity through", func(t *testing.T) {
		token, err := GenerateToken(user)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		rec := get(r, "/me", "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to parse body: %v", err)
		}
		if body["user_id"] != 7.0 {
			t.Errorf("expected user_id 7, got %v", body["user_id"])
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	r := setupAuthRouter()

	t.Run("regular user is forbidden", func(t *testing.T) {
		token, err := GenerateToken(&models.User{Base: models.Base{ID: 1}, Role: models.RoleUser})
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		rec := get(r, "/admin/ping", "Bearer "+token)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("admin passes", func(t *testing.T) {
		token, err := GenerateToken(&models.User{Base: models.Base{ID: 2}, Role: models.RoleAdmin})
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		rec := get(r, "/admin/ping", "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
