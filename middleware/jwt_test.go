package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/koa-impact/podcount/models"
)

func TestTokenRoundTrip(t *testing.T) {
	jwtKey = []byte("test-secret")

	factoryID := uuid.New()
	u := &models.User{
		ID:        uuid.New(),
		Name:      "Achiase Supervisor",
		Email:     "supervisor.achiase@koa.com",
		Role:      models.RoleSupervisor,
		FactoryID: &factoryID,
	}

	token, err := GenerateToken(u)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	var got *Claims
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r)
	}))

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if got == nil {
		t.Fatal("claims not attached to request context")
	}
	if got.UserID != u.ID.String() || got.Role != models.RoleSupervisor || got.FactoryID != factoryID.String() {
		t.Errorf("claims = %+v", got)
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	jwtKey = []byte("test-secret")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler reached without a valid token")
			}))

			req := httptest.NewRequest("GET", "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, expected 401", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin passes", models.RoleAdmin, http.StatusOK},
		{"guest blocked", models.RoleGuest, http.StatusForbidden},
		{"no claims blocked", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := RequireRole([]string{models.RoleAdmin}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))

			req := httptest.NewRequest("GET", "/api/v1/admin/users", nil)
			if tt.role != "" {
				ctx := context.WithValue(req.Context(), userClaimsKey, &Claims{Role: tt.role})
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, expected %d", rec.Code, tt.wantStatus)
			}
			if reached != (tt.wantStatus == http.StatusOK) {
				t.Errorf("handler reached = %v", reached)
			}
		})
	}
}
