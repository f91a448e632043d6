package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/models"
)

type factoryReq struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

// GetAllFactories lists every factory ordered by name.
// GET /api/v1/factories
func GetAllFactories(w http.ResponseWriter, r *http.Request) {
	var factories []models.Factory
	if err := config.DB.Order("name ASC").Find(&factories).Error; err != nil {
		http.Error(w, "failed to fetch factories", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(factories)
}

// GetFactory returns a single factory by id.
// GET /api/v1/factories/{id}
func GetFactory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var factory models.Factory
	if err := config.DB.First(&factory, "id = ?", id).Error; err != nil {
		http.Error(w, "factory not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(factory)
}

// CreateFactory registers a new factory (admin only).
// POST /api/v1/admin/factories
func CreateFactory(w http.ResponseWriter, r *http.Request) {
	var req factoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.Type != "" && !models.IsValidFactoryType(req.Type) {
		http.Error(w, "unknown factory type "+req.Type, http.StatusBadRequest)
		return
	}

	factory := models.Factory{
		Name:     req.Name,
		Location: req.Location,
		Type:     req.Type,
	}
	if factory.Type == "" {
		factory.Type = models.FactoryOther
	}

	if err := config.DB.Create(&factory).Error; err != nil {
		if isDuplicateKey(err) {
			writeConflict(w, "a factory with this name already exists", []string{"name"})
		} else {
			http.Error(w, "db error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(factory)
}

// UpdateFactory applies a partial patch to a factory (admin only).
// PATCH /api/v1/admin/factories/{id}
func UpdateFactory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var factory models.Factory
	if err := config.DB.First(&factory, "id = ?", id).Error; err != nil {
		http.Error(w, "factory not found", http.StatusNotFound)
		return
	}

	var patch struct {
		Name     *string `json:"name"`
		Location *string `json:"location"`
		Type     *string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			http.Error(w, "name cannot be empty", http.StatusBadRequest)
			return
		}
		factory.Name = *patch.Name
	}
	if patch.Location != nil {
		factory.Location = *patch.Location
	}
	if patch.Type != nil {
		if !models.IsValidFactoryType(*patch.Type) {
			http.Error(w, "unknown factory type "+*patch.Type, http.StatusBadRequest)
			return
		}
		factory.Type = *patch.Type
	}

	if err := config.DB.Save(&factory).Error; err != nil {
		if isDuplicateKey(err) {
			writeConflict(w, "a factory with this name already exists", []string{"name"})
		} else {
			http.Error(w, "failed to update factory", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(factory)
}

// DeleteFactory removes a factory (admin only). Deletion is refused while
// users are still assigned to it.
// DELETE /api/v1/admin/factories/{id}
func DeleteFactory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var factory models.Factory
	if err := config.DB.First(&factory, "id = ?", id).Error; err != nil {
		http.Error(w, "factory not found", http.StatusNotFound)
		return
	}

	var memberCount int64
	if err := config.DB.Model(&models.User{}).Where("factory_id = ?", factory.ID).Count(&memberCount).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if memberCount > 0 {
		http.Error(w, "factory still has users assigned to it", http.StatusBadRequest)
		return
	}

	if err := config.DB.Delete(&factory).Error; err != nil {
		http.Error(w, "failed to delete factory", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "factory deleted successfully"})
}
