package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/models"
)

type dashboardStats struct {
	Forms         int64 `json:"forms"`
	Responses     int64 `json:"responses"`
	LegacyEntries int64 `json:"legacyEntries"`

	// Admin-only totals; omitted for everyone else.
	Factories   *int64 `json:"factories,omitempty"`
	Users       *int64 `json:"users,omitempty"`
	ActiveUsers *int64 `json:"activeUsers,omitempty"`
}

// GetDashboardStats returns headline counts. Admins get organization-wide
// totals; everyone else gets counts scoped to their own factory.
// GET /api/v1/dashboard
func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var stats dashboardStats

	formQuery := config.DB.Model(&models.Form{})
	if !user.IsAdmin() && user.FactoryID != nil {
		formQuery = formQuery.Where("factory_id = ?", *user.FactoryID)
	}
	if err := formQuery.Count(&stats.Forms).Error; err != nil {
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	if err := scopedFormJoinCount(&models.FormResponse{}, user, &stats.Responses); err != nil {
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	if err := scopedFormJoinCount(&models.FormEntry{}, user, &stats.LegacyEntries); err != nil {
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	if user.IsAdmin() {
		var factories, users, active int64
		if err := config.DB.Model(&models.Factory{}).Count(&factories).Error; err != nil {
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
		if err := config.DB.Model(&models.User{}).Count(&users).Error; err != nil {
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
		if err := config.DB.Model(&models.User{}).
			Where("status = ?", models.StatusActive).
			Count(&active).Error; err != nil {
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
		stats.Factories = &factories
		stats.Users = &users
		stats.ActiveUsers = &active
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// scopedFormJoinCount counts rows of a form-keyed table, narrowed to the
// user's factory for non-admins.
func scopedFormJoinCount(model interface{}, user *models.User, dest *int64) error {
	query := config.DB.Model(model)
	if !user.IsAdmin() && user.FactoryID != nil {
		query = query.Where("form_id IN (?)",
			config.DB.Model(&models.Form{}).Select("id").
				Where("factory_id = ?", *user.FactoryID))
	}
	return query.Count(dest).Error
}
