package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/models"
)

type createFormReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Fields      json.RawMessage `json:"fields"`
	FactoryID   string          `json:"factoryId"`
}

// GetAllForms lists the forms visible to the caller. An explicit ?factoryId=
// narrows the listing for everyone; without one, non-admins are scoped to
// their own factory. Admins see every form in scope, other roles see the
// forms they created plus those they hold a view grant on. A factory missing
// its default pod-count template gets it provisioned on the way through.
// GET /api/v1/forms
func GetAllForms(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := provisionDefaultTemplates(user); err != nil {
		log.Printf("default template provisioning failed: %v", err)
	}

	query := config.DB.Preload("Factory").Preload("CreatedBy").Order("created_at DESC")
	if factoryID, scoped := formsFactoryScope(user, r.URL.Query().Get("factoryId")); scoped {
		query = query.Where("factory_id = ?", factoryID)
	}

	var forms []models.Form
	if user.IsAdmin() {
		if err := query.Find(&forms).Error; err != nil {
			http.Error(w, "failed to fetch forms", http.StatusInternalServerError)
			return
		}
	} else {
		err := query.
			Where("created_by_id = ? OR id IN (?)", user.ID,
				config.DB.Model(&models.FormAccess{}).Select("form_id").
					Where("user_id = ? AND can_view = ?", user.ID, true)).
			Find(&forms).Error
		if err != nil {
			http.Error(w, "failed to fetch forms", http.StatusInternalServerError)
			return
		}
	}

	out := make([]models.FormDTO, len(forms))
	for i := range forms {
		grant := loadGrant(user.ID, forms[i].ID)
		out[i] = forms[i].ToDTO(models.Permissions(user, &forms[i], grant))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// formsFactoryScope resolves which factory a forms listing is narrowed to.
// An explicit ?factoryId= wins for everyone; otherwise non-admins fall back
// to their own factory and admins stay unscoped. Non-admins without a
// factory are unscoped too; the grant predicate still limits what they see.
func formsFactoryScope(user *models.User, param string) (string, bool) {
	if param != "" {
		return param, true
	}
	if user.IsAdmin() || user.FactoryID == nil {
		return "", false
	}
	return user.FactoryID.String(), true
}

// provisionDefaultTemplates makes sure the caller's factory has its default
// pod-count template, creating it with factory-wide grants when missing.
// The template is attributed to the oldest admin account so the listing user
// does not pick up creator rights on it. Callers without a factory are a
// no-op.
func provisionDefaultTemplates(user *models.User) error {
	if user.FactoryID == nil {
		return nil
	}

	var factory models.Factory
	if err := config.DB.First(&factory, "id = ?", *user.FactoryID).Error; err != nil {
		return err
	}

	name, description, formType, schema := models.DefaultTemplate(factory.Type)

	var count int64
	if err := config.DB.Model(&models.Form{}).
		Where("factory_id = ? AND name = ?", factory.ID, name).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	creatorID := user.ID
	var admin models.User
	if err := config.DB.Where("role = ?", models.RoleAdmin).
		Order("created_at ASC").First(&admin).Error; err == nil {
		creatorID = admin.ID
	}

	fields, err := schema.JSON()
	if err != nil {
		return err
	}
	form := models.Form{
		Name:        name,
		Description: description,
		Type:        formType,
		Fields:      fields,
		FactoryID:   factory.ID,
		CreatedByID: creatorID,
	}
	if err := createFormWithGrants(&form); err != nil {
		// Concurrent list requests can race on the unique index; the
		// template exists either way.
		if isDuplicateKey(err) {
			return nil
		}
		return err
	}
	log.Printf("Provisioned template %q for factory %s", name, factory.Name)
	return nil
}

// createFormWithGrants inserts a form and fans out access rows to every user
// in the form's factory in one transaction.
func createFormWithGrants(form *models.Form) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(form).Error; err != nil {
			return err
		}

		var members []models.User
		if err := tx.Where("factory_id = ?", form.FactoryID).Find(&members).Error; err != nil {
			return err
		}
		for _, member := range members {
			canView, canEdit, canDelete := models.DefaultGrant(member.Role)
			grant := models.FormAccess{
				UserID:    member.ID,
				FormID:    form.ID,
				CanView:   canView,
				CanEdit:   canEdit,
				CanDelete: canDelete,
			}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateForm creates a form from a submitted schema and grants the whole
// factory access per role.
// POST /api/v1/forms
func CreateForm(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createFormReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	factoryID, err := parseUUID(req.FactoryID)
	if err != nil {
		http.Error(w, "invalid factoryId", http.StatusBadRequest)
		return
	}
	var factory models.Factory
	if err := config.DB.First(&factory, "id = ?", factoryID).Error; err != nil {
		http.Error(w, "factory not found", http.StatusNotFound)
		return
	}

	schema, err := models.ParseSchema(req.Fields)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := schema.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fields, err := schema.JSON()
	if err != nil {
		http.Error(w, "failed to encode schema", http.StatusInternalServerError)
		return
	}

	formType := req.Type
	if formType == "" {
		formType = models.FormConventional
	}

	form := models.Form{
		Name:        req.Name,
		Description: req.Description,
		Type:        formType,
		Fields:      fields,
		FactoryID:   factory.ID,
		CreatedByID: user.ID,
	}
	if err := createFormWithGrants(&form); err != nil {
		if isDuplicateKey(err) {
			writeConflict(w,
				fmt.Sprintf("a form named %q already exists for this factory", form.Name),
				[]string{"name", "factoryId"})
		} else {
			log.Printf("form create failed: %v", err)
			http.Error(w, "failed to create form", http.StatusInternalServerError)
		}
		return
	}

	config.DB.Preload("Factory").Preload("CreatedBy").First(&form, "id = ?", form.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(form.ToDTO(models.Permissions(user, &form, nil)))
}

// GetForm returns one form, provided the caller may view it.
// GET /api/v1/forms/{id}
func GetForm(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.Preload("Factory").Preload("CreatedBy").First(&form, "id = ?", id).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	grant := loadGrant(user.ID, form.ID)
	if !models.CanPerform(user, &form, grant, models.ActionView) {
		http.Error(w, "you do not have access to this form", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(form.ToDTO(models.Permissions(user, &form, grant)))
}

// UpdateForm patches a form's name, description or schema. The caller needs
// edit rights on the form.
// PUT /api/v1/forms/{id}
func UpdateForm(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.Preload("Factory").Preload("CreatedBy").First(&form, "id = ?", id).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	grant := loadGrant(user.ID, form.ID)
	if !models.CanPerform(user, &form, grant, models.ActionEdit) {
		http.Error(w, "you do not have permission to edit this form", http.StatusForbidden)
		return
	}

	var patch struct {
		Name        *string         `json:"name"`
		Description *string         `json:"description"`
		Type        *string         `json:"type"`
		FactoryID   *string         `json:"factoryId"`
		Fields      json.RawMessage `json:"fields"`
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
		form.Name = *patch.Name
	}
	if patch.Description != nil {
		form.Description = *patch.Description
	}
	if patch.Type != nil {
		form.Type = *patch.Type
	}
	if patch.FactoryID != nil {
		fid, err := parseUUID(*patch.FactoryID)
		if err != nil {
			http.Error(w, "invalid factoryId", http.StatusBadRequest)
			return
		}
		var factory models.Factory
		if err := config.DB.First(&factory, "id = ?", fid).Error; err != nil {
			http.Error(w, "factory not found", http.StatusNotFound)
			return
		}
		form.FactoryID = fid
	}
	if len(patch.Fields) > 0 {
		schema, err := models.ParseSchema(patch.Fields)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := schema.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields, err := schema.JSON()
		if err != nil {
			http.Error(w, "failed to encode schema", http.StatusInternalServerError)
			return
		}
		form.Fields = fields
	}

	if err := config.DB.Save(&form).Error; err != nil {
		if isDuplicateKey(err) {
			writeConflict(w,
				fmt.Sprintf("a form named %q already exists for this factory", form.Name),
				[]string{"name", "factoryId"})
		} else {
			http.Error(w, "failed to update form", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(form.ToDTO(models.Permissions(user, &form, grant)))
}

// DeleteForm removes a form and everything hanging off it: access grants,
// responses and legacy entries, all in one transaction. After the commit the
// row is re-checked to confirm the cascade actually removed it.
// DELETE /api/v1/forms/{id}
func DeleteForm(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.First(&form, "id = ?", id).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	grant := loadGrant(user.ID, form.ID)
	if !models.CanPerform(user, &form, grant, models.ActionDelete) {
		http.Error(w, "you do not have permission to delete this form", http.StatusForbidden)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", form.ID).Delete(&models.FormAccess{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", form.ID).Delete(&models.FormResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", form.ID).Delete(&models.FormEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Form{}, "id = ?", form.ID).Error
	})
	if err != nil {
		log.Printf("form delete failed for %s: %v", form.ID, err)
		http.Error(w, "failed to delete form", http.StatusInternalServerError)
		return
	}

	var remaining int64
	config.DB.Model(&models.Form{}).Where("id = ?", form.ID).Count(&remaining)
	if remaining > 0 {
		http.Error(w, "form deletion did not complete", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "form deleted successfully"})
}
