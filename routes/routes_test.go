package routes

import (
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestRegisterRoutesTable(t *testing.T) {
	router, ok := RegisterRoutes().(*mux.Router)
	if !ok {
		t.Fatal("RegisterRoutes() did not return a *mux.Router")
	}

	id := "4f2f663a-3a44-4c55-9c7e-27a1a2a9a001"
	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/login"},
		{"POST", "/auth/password-reset"},
		{"GET", "/health"},
		{"GET", "/api/v1/me"},
		{"GET", "/api/v1/dashboard"},
		{"GET", "/api/v1/factories"},
		{"GET", "/api/v1/users/" + id},
		{"GET", "/api/v1/forms"},
		{"POST", "/api/v1/forms"},
		{"POST", "/api/v1/forms/import"},
		{"PUT", "/api/v1/forms/" + id},
		{"DELETE", "/api/v1/forms/" + id},
		{"GET", "/api/v1/responses"},
		{"GET", "/api/v1/forms/" + id + "/responses"},
		{"POST", "/api/v1/forms/" + id + "/responses/bulk"},
		{"GET", "/api/v1/forms/" + id + "/export/excel"},
		{"GET", "/api/v1/forms/" + id + "/export/csv"},
		{"POST", "/api/v1/admin/users"},
		{"POST", "/api/v1/admin/users/" + id + "/reset-password"},
		{"PUT", "/api/v1/admin/forms/" + id + "/access"},
		{"DELETE", "/api/v1/admin/forms/" + id + "/access/" + id},
		{"GET", "/api/v1/admin/password-resets"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			var match mux.RouteMatch
			if !router.Match(req, &match) {
				t.Errorf("no route matches %s %s", tt.method, tt.path)
			}
		})
	}
}

func TestRegisterRoutesRejectsUnknown(t *testing.T) {
	router := RegisterRoutes().(*mux.Router)

	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	var match mux.RouteMatch
	if router.Match(req, &match) && match.MatchErr == nil {
		t.Errorf("unexpected route match for /api/v1/nope")
	}
}
