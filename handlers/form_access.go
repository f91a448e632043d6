package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm/clause"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/models"
)

type grantReq struct {
	UserID    string `json:"userId"`
	CanView   bool   `json:"canView"`
	CanEdit   bool   `json:"canEdit"`
	CanDelete bool   `json:"canDelete"`
}

// ListFormAccess returns every access grant on a form with the grantee
// embedded (admin only).
// GET /api/v1/admin/forms/{id}/access
func ListFormAccess(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.First(&form, "id = ?", formID).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	var grants []models.FormAccess
	if err := config.DB.Preload("User").Where("form_id = ?", form.ID).Find(&grants).Error; err != nil {
		http.Error(w, "failed to fetch access grants", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(grants)
}

// UpsertFormAccess sets a user's view/edit/delete flags on a form (admin
// only). One row per (user, form) pair; repeated calls overwrite the flags.
// PUT /api/v1/admin/forms/{id}/access
func UpsertFormAccess(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.First(&form, "id = ?", formID).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	var req grantReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	grant := models.FormAccess{
		UserID:    user.ID,
		FormID:    form.ID,
		CanView:   req.CanView,
		CanEdit:   req.CanEdit,
		CanDelete: req.CanDelete,
	}
	err = config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "form_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_view", "can_edit", "can_delete", "updated_at"}),
	}).Create(&grant).Error
	if err != nil {
		http.Error(w, "failed to save access grant", http.StatusInternalServerError)
		return
	}

	config.DB.Where("user_id = ? AND form_id = ?", user.ID, form.ID).First(&grant)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(grant)
}

// RevokeFormAccess removes a user's grant on a form (admin only). Revoking a
// grant that does not exist is a no-op.
// DELETE /api/v1/admin/forms/{id}/access/{userId}
func RevokeFormAccess(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	formID := vars["id"]
	userID := vars["userId"]

	var form models.Form
	if err := config.DB.First(&form, "id = ?", formID).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	err := config.DB.Where("user_id = ? AND form_id = ?", userID, form.ID).
		Delete(&models.FormAccess{}).Error
	if err != nil {
		http.Error(w, "failed to revoke access", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "access revoked"})
}
