package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/florapedia/api/internal/auth"
	"github.com/florapedia/api/internal/middleware"
	"github.com/florapedia/api/internal/model"
	"github.com/gin-gonic/gin"
)

const testSecret = "middleware-test-secret"

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID": c.GetInt64("userID"),
			"role":   c.GetString("userRole"),
		})
	})
	return r
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(&model.User{ID: 42, Username: "curator", Role: role}, testSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(middleware.AuthMiddleware(testSecret))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + tokenFor(t, model.RoleUser), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(middleware.RoleMiddleware(testSecret, model.RoleAdmin, model.RoleSuperAdmin))

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"plain user forbidden", model.RoleUser, http.StatusForbidden},
		{"admin allowed", model.RoleAdmin, http.StatusOK},
		{"super-admin allowed", model.RoleSuperAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, tt.role))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("role %s: status = %d, want %d", tt.role, w.Code, tt.wantStatus)
			}
		})
	}
}
