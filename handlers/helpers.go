package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/middleware"
	"github.com/koa-impact/podcount/models"
)

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// isDuplicateKey reports whether err is a unique-constraint violation from
// the database.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

// writeConflict reports a unique-constraint violation with the offending
// field names so clients can highlight the inputs.
func writeConflict(w http.ResponseWriter, message string, fields []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"fields": fields,
	})
}

// currentUser loads the authenticated user row, or writes 401 and returns
// false when the principal cannot be resolved.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return nil, false
	}
	return &user, true
}

// loadGrant fetches the access row for (user, form), or nil when absent.
func loadGrant(userID, formID uuid.UUID) *models.FormAccess {
	var grant models.FormAccess
	err := config.DB.Where("user_id = ? AND form_id = ?", userID, formID).First(&grant).Error
	if err != nil {
		return nil
	}
	return &grant
}
