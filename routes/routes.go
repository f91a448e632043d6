package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koa-impact/podcount/handlers"
	"github.com/koa-impact/podcount/middleware"
	"github.com/koa-impact/podcount/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/auth/password-reset", handlers.RequestPasswordReset).Methods("POST")
	r.HandleFunc("/health", handleHealth).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/me", handlers.GetCurrentUser).Methods("GET")
	api.HandleFunc("/dashboard", handlers.GetDashboardStats).Methods("GET")

	api.HandleFunc("/factories", handlers.GetAllFactories).Methods("GET")
	api.HandleFunc("/factories/{id}", handlers.GetFactory).Methods("GET")

	api.HandleFunc("/users", handlers.GetAllUsers).Methods("GET")
	api.HandleFunc("/users/{id}", handlers.GetUser).Methods("GET")

	api.HandleFunc("/forms", handlers.GetAllForms).Methods("GET")
	api.HandleFunc("/forms", handlers.CreateForm).Methods("POST")
	api.HandleFunc("/forms/import", handlers.ImportForm).Methods("POST")
	api.HandleFunc("/forms/{id}", handlers.GetForm).Methods("GET")
	api.HandleFunc("/forms/{id}", handlers.UpdateForm).Methods("PUT")
	api.HandleFunc("/forms/{id}", handlers.DeleteForm).Methods("DELETE")

	api.HandleFunc("/responses", handlers.ListAllResponses).Methods("GET")
	api.HandleFunc("/forms/{id}/responses", handlers.ListResponses).Methods("GET")
	api.HandleFunc("/forms/{id}/responses", handlers.SubmitResponse).Methods("POST")
	api.HandleFunc("/forms/{id}/responses/bulk", handlers.SubmitResponsesBulk).Methods("POST")

	api.HandleFunc("/forms/{id}/export/excel", handlers.ExportResponsesToExcel).Methods("GET")
	api.HandleFunc("/forms/{id}/export/csv", handlers.ExportResponsesToCSV).Methods("GET")

	// =====================================================
	// Admin Routes (require the ADMIN role)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(func(next http.Handler) http.Handler {
		return middleware.RequireRole([]string{models.RoleAdmin}, next)
	})

	admin.HandleFunc("/factories", handlers.CreateFactory).Methods("POST")
	admin.HandleFunc("/factories/{id}", handlers.UpdateFactory).Methods("PATCH")
	admin.HandleFunc("/factories/{id}", handlers.DeleteFactory).Methods("DELETE")

	admin.HandleFunc("/users", handlers.CreateUser).Methods("POST")
	admin.HandleFunc("/users/{id}", handlers.UpdateUser).Methods("PATCH")
	admin.HandleFunc("/users/{id}", handlers.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/users/{id}/reset-password", handlers.ResetUserPassword).Methods("POST")

	admin.HandleFunc("/forms/{id}/access", handlers.ListFormAccess).Methods("GET")
	admin.HandleFunc("/forms/{id}/access", handlers.UpsertFormAccess).Methods("PUT")
	admin.HandleFunc("/forms/{id}/access/{userId}", handlers.RevokeFormAccess).Methods("DELETE")

	admin.HandleFunc("/password-resets", handlers.ListPasswordResetRequests).Methods("GET")
	admin.HandleFunc("/password-resets/{id}/cancel", handlers.CancelPasswordResetRequest).Methods("POST")

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
