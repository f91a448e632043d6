package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/models"
)

// RequestPasswordReset records a self-service reset request. The response is
// identical whether or not the email belongs to an account, so the endpoint
// cannot be used to probe which addresses are registered.
// POST /auth/password-reset
func RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		var pending int64
		config.DB.Model(&models.PasswordResetRequest{}).
			Where("user_id = ? AND status = ?", user.ID, models.ResetPending).
			Count(&pending)
		if pending == 0 {
			reset := models.PasswordResetRequest{UserID: user.ID, Status: models.ResetPending}
			if err := config.DB.Create(&reset).Error; err != nil {
				log.Printf("failed to record password reset request for %s: %v", user.Email, err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "if an account exists for this email, an administrator will be notified",
	})
}

// ListPasswordResetRequests shows the reset queue to admins: pending first,
// newest first within each group.
// GET /api/v1/admin/password-resets
func ListPasswordResetRequests(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Preload("User").
		Order("(status = 'PENDING') DESC").
		Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.PasswordResetRequest
	if err := query.Find(&requests).Error; err != nil {
		http.Error(w, "failed to fetch reset requests", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

// CancelPasswordResetRequest marks a pending request as cancelled without
// changing the user's password (admin only).
// POST /api/v1/admin/password-resets/{id}/cancel
func CancelPasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var reset models.PasswordResetRequest
	if err := config.DB.First(&reset, "id = ?", id).Error; err != nil {
		http.Error(w, "reset request not found", http.StatusNotFound)
		return
	}
	if reset.Status != models.ResetPending {
		http.Error(w, "reset request is not pending", http.StatusBadRequest)
		return
	}

	if err := config.DB.Model(&reset).Update("status", models.ResetCancelled).Error; err != nil {
		http.Error(w, "failed to cancel reset request", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reset)
}
