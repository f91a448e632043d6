package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/koa-impact/podcount/utils"
)

// FormResponse is one filled-in instance of a form's schema. Data maps field
// names to scalar values. Responses are immutable once created; they are
// only removed when their owning form is deleted.
type FormResponse struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FormID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"formId"`
	Form          *Form          `gorm:"foreignKey:FormID" json:"form,omitempty"`
	Data          datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	SubmittedByID uuid.UUID      `gorm:"type:uuid;not null" json:"submittedById"`
	SubmittedBy   *User          `gorm:"foreignKey:SubmittedByID" json:"submittedBy,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (r *FormResponse) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for FormResponse
func (FormResponse) TableName() string {
	return "form_responses"
}

// FormEntry is a legacy per-form record kept for dashboard counts and the
// delete cascade. No write API exists for it anymore.
type FormEntry struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FormID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"formId"`
	Form        *Form          `gorm:"foreignKey:FormID" json:"-"`
	Data        datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	CreatedByID uuid.UUID      `gorm:"type:uuid;not null" json:"createdById"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (e *FormEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for FormEntry
func (FormEntry) TableName() string {
	return "form_entries"
}

// ValidateSubmission checks submitted data against a schema at the API
// boundary. It returns a map of field name to error message, empty when the
// submission is valid. Unknown keys are allowed; the schema is not enforced
// at insert time, only declared fields are validated.
func ValidateSubmission(schema Schema, data map[string]interface{}) map[string]string {
	errs := make(map[string]string)

	for _, field := range schema.AllFields() {
		value, present := data[field.Name]

		if isEmptyValue(value) || !present {
			if field.Required {
				errs[field.Name] = "This field is required"
			}
			continue
		}

		switch field.Type {
		case FieldNumber:
			n, ok := numericValue(value)
			if !ok {
				errs[field.Name] = "Must be a number"
				continue
			}
			if field.Min != nil && n < *field.Min {
				errs[field.Name] = fmt.Sprintf("Must be at least %v", *field.Min)
			}
		case FieldDropdown:
			s := fmt.Sprintf("%v", value)
			found := false
			for _, opt := range field.Options {
				if opt == s {
					found = true
					break
				}
			}
			if !found {
				errs[field.Name] = "Not one of the allowed options"
			}
		case FieldLocation:
			if _, err := utils.ParseLocation(value); err != nil {
				errs[field.Name] = "Invalid location"
			}
		}
	}

	return errs
}

// NormalizeData prepares submitted data for storage: empty strings become
// null, and numeric-looking strings are coerced to numbers. Other values are
// passed through untouched.
func NormalizeData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case string:
			if v == "" {
				out[key] = nil
				continue
			}
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				out[key] = n
				continue
			}
			out[key] = v
		default:
			out[key] = value
		}
	}
	return out
}

func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// numericValue interprets a submitted value as a number. JSON decoding gives
// float64 for numbers; strings are parsed the way the submit form coerces
// them.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
