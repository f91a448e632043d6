package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/middleware"
	"github.com/koa-impact/podcount/models"
)

type createUserReq struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FieldType string `json:"fieldType"`
	FactoryID string `json:"factoryId"`
}

// GetAllUsers lists every user with their factory name.
// GET /api/v1/users
func GetAllUsers(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := config.DB.Preload("Factory").Order("name ASC").Find(&users).Error; err != nil {
		http.Error(w, "failed to fetch users", http.StatusInternalServerError)
		return
	}

	out := make([]userPayload, len(users))
	for i := range users {
		out[i] = toUserPayload(&users[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// GetUser returns a single user by id.
// GET /api/v1/users/{id}
func GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var user models.User
	if err := config.DB.Preload("Factory").First(&user, "id = ?", id).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserPayload(&user))
}

// CreateUser creates an account (admin only).
// POST /api/v1/admin/users
func CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}
	if req.Role != "" && !models.IsValidRole(req.Role) {
		http.Error(w, "unknown role "+req.Role, http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	u := models.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       models.StatusActive,
		FieldType:    req.FieldType,
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.FieldType == "" {
		u.FieldType = models.FieldTypeOther
	}
	if req.FactoryID != "" {
		fid, err := parseUUID(req.FactoryID)
		if err != nil {
			http.Error(w, "invalid factoryId", http.StatusBadRequest)
			return
		}
		u.FactoryID = &fid
	}

	if err := config.DB.Create(&u).Error; err != nil {
		if isDuplicateKey(err) {
			writeConflict(w, "a user with this email already exists", []string{"email"})
		} else {
			http.Error(w, "db error", http.StatusInternalServerError)
		}
		return
	}

	config.DB.Preload("Factory").First(&u, "id = ?", u.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toUserPayload(&u))
}

// UpdateUser applies a partial patch to a user (admin only). Omitted fields
// keep their prior value. Admins cannot disable their own account.
// PATCH /api/v1/admin/users/{id}
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	id := mux.Vars(r)["id"]

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	var patch struct {
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		Role      *string `json:"role"`
		Status    *string `json:"status"`
		FieldType *string `json:"fieldType"`
		FactoryID *string `json:"factoryId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if patch.Status != nil && *patch.Status == models.StatusDisabled && claims != nil && claims.UserID == id {
		http.Error(w, "you cannot disable your own account", http.StatusBadRequest)
		return
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(*patch.Email)
	}
	if patch.Role != nil {
		if !models.IsValidRole(*patch.Role) {
			http.Error(w, "unknown role "+*patch.Role, http.StatusBadRequest)
			return
		}
		user.Role = *patch.Role
	}
	if patch.Status != nil {
		user.Status = *patch.Status
	}
	if patch.FieldType != nil {
		user.FieldType = *patch.FieldType
	}
	if patch.FactoryID != nil {
		if *patch.FactoryID == "" {
			user.FactoryID = nil
		} else {
			fid, err := parseUUID(*patch.FactoryID)
			if err != nil {
				http.Error(w, "invalid factoryId", http.StatusBadRequest)
				return
			}
			user.FactoryID = &fid
		}
	}

	if err := config.DB.Save(&user).Error; err != nil {
		if isDuplicateKey(err) {
			writeConflict(w, "a user with this email already exists", []string{"email"})
		} else {
			http.Error(w, "failed to update user", http.StatusInternalServerError)
		}
		return
	}

	config.DB.Preload("Factory").First(&user, "id = ?", user.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserPayload(&user))
}

// DeleteUser removes a user (admin only).
// DELETE /api/v1/admin/users/{id}
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result := config.DB.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		http.Error(w, "failed to delete user", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "user deleted successfully"})
}

// ResetUserPassword lets an admin set a new password for a user and marks
// any PENDING reset requests for that user as completed.
// POST /api/v1/admin/users/{id}/reset-password
func ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
			return err
		}
		return tx.Model(&models.PasswordResetRequest{}).
			Where("user_id = ? AND status = ?", user.ID, models.ResetPending).
			Updates(map[string]interface{}{"status": models.ResetCompleted, "completed_at": &now}).Error
	})
	if err != nil {
		log.Printf("password reset for %s failed: %v", user.Email, err)
		http.Error(w, "failed to reset password", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "password reset successfully"})
}
