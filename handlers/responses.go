package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/models"
)

type submitResponseReq struct {
	Data map[string]interface{} `json:"data"`
}

type bulkResponsesReq struct {
	Responses []submitResponseReq `json:"responses"`
}

// parseBulkRequest decodes a bulk submission body into its data rows. Empty
// batches are rejected here so the handler never opens a transaction for
// nothing.
func parseBulkRequest(body io.Reader) ([]map[string]interface{}, error) {
	var req bulkResponsesReq
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON")
	}
	if len(req.Responses) == 0 {
		return nil, errors.New("no responses provided")
	}

	rows := make([]map[string]interface{}, len(req.Responses))
	for i, item := range req.Responses {
		rows[i] = item.Data
	}
	return rows, nil
}

// SubmitResponse validates one submission against the form's schema and
// stores it. Validation failures come back as 400 with a per-field error map.
// POST /api/v1/forms/{id}/responses
func SubmitResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	formID := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.First(&form, "id = ?", formID).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	var req submitResponseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	schema, err := form.Schema()
	if err != nil {
		log.Printf("form %s has an unreadable schema: %v", form.ID, err)
		http.Error(w, "form schema is unreadable", http.StatusInternalServerError)
		return
	}

	if errs := models.ValidateSubmission(schema, req.Data); len(errs) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "validation failed",
			"fields": errs,
		})
		return
	}

	raw, err := json.Marshal(models.NormalizeData(req.Data))
	if err != nil {
		http.Error(w, "failed to encode response data", http.StatusInternalServerError)
		return
	}

	resp := models.FormResponse{
		FormID:        form.ID,
		Data:          datatypes.JSON(raw),
		SubmittedByID: user.ID,
	}
	if err := config.DB.Create(&resp).Error; err != nil {
		http.Error(w, "failed to save response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// SubmitResponsesBulk stores a batch of submissions for one form in a single
// transaction: either every row lands or none do. An empty batch is a 400.
// POST /api/v1/forms/{id}/responses/bulk
func SubmitResponsesBulk(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	formID := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.First(&form, "id = ?", formID).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	rows, err := parseBulkRequest(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	schema, err := form.Schema()
	if err != nil {
		log.Printf("form %s has an unreadable schema: %v", form.ID, err)
		http.Error(w, "form schema is unreadable", http.StatusInternalServerError)
		return
	}

	// Validate the whole batch before touching the database.
	for i, data := range rows {
		if errs := models.ValidateSubmission(schema, data); len(errs) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":  "validation failed",
				"row":    i,
				"fields": errs,
			})
			return
		}
	}

	var created []models.FormResponse
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for _, data := range rows {
			raw, err := json.Marshal(models.NormalizeData(data))
			if err != nil {
				return err
			}
			resp := models.FormResponse{
				FormID:        form.ID,
				Data:          datatypes.JSON(raw),
				SubmittedByID: user.ID,
			}
			if err := tx.Create(&resp).Error; err != nil {
				return err
			}
			created = append(created, resp)
		}
		return nil
	})
	if err != nil {
		log.Printf("bulk submit for form %s failed: %v", form.ID, err)
		http.Error(w, "failed to save responses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":     len(created),
		"responses": created,
	})
}

// ListAllResponses lists responses across every form, newest first, with the
// submitter and form embedded. An optional ?formId= narrows to one form.
// GET /api/v1/responses
func ListAllResponses(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Preload("SubmittedBy").Preload("Form").Order("created_at DESC")
	if formID := r.URL.Query().Get("formId"); formID != "" {
		query = query.Where("form_id = ?", formID)
	}

	var responses []models.FormResponse
	if err := query.Find(&responses).Error; err != nil {
		http.Error(w, "failed to fetch responses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// ListResponses returns every response for a form, newest first, with the
// submitter embedded.
// GET /api/v1/forms/{id}/responses
func ListResponses(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.First(&form, "id = ?", formID).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	var responses []models.FormResponse
	err := config.DB.Preload("SubmittedBy").
		Where("form_id = ?", form.ID).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		http.Error(w, "failed to fetch responses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
