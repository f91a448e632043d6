package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Form types
const (
	FormConventional = "CONVENTIONAL"
	FormOrganic      = "ORGANIC"
	FormImported     = "IMPORTED"
)

// Field types supported by the form renderer.
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldDropdown = "dropdown"
	FieldLocation = "location"
	FieldTel      = "tel"
)

// LegacySectionTitle is the title given to the implicit section when an old
// flat-array schema is normalized on read.
const LegacySectionTitle = "Form Fields"

// Form is a user-defined data-collection template. Fields holds the schema
// as a jsonb document; see ParseSchema for the accepted shapes.
type Form struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null;uniqueIndex:idx_forms_name_factory" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Type        string         `gorm:"size:20;not null;default:'CONVENTIONAL'" json:"type"`
	Fields      datatypes.JSON `gorm:"type:jsonb;not null" json:"fields"`
	FactoryID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_forms_name_factory" json:"factoryId"`
	Factory     *Factory       `gorm:"foreignKey:FactoryID" json:"factory,omitempty"`
	CreatedByID uuid.UUID      `gorm:"type:uuid;not null" json:"createdById"`
	CreatedBy   *User          `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// Relationships
	Access    []FormAccess   `gorm:"foreignKey:FormID" json:"-"`
	Responses []FormResponse `gorm:"foreignKey:FormID" json:"-"`
	Entries   []FormEntry    `gorm:"foreignKey:FormID" json:"-"`
}

func (f *Form) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for Form
func (Form) TableName() string {
	return "forms"
}

// Field is one typed input in a form schema. Name is the snake_case key
// responses are stored under; it must be unique within the form.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Min      *float64 `json:"min,omitempty"`
}

// Section groups an ordered run of fields under a title.
type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Schema is the canonical in-memory form shape: an ordered sequence of
// sections. All code past the read boundary works on this representation.
type Schema struct {
	Sections []Section `json:"sections"`
}

// ParseSchema decodes a stored schema document. Two shapes are accepted:
// the canonical {"sections":[...]} object and the legacy flat field array
// [{...},...], which is normalized into a single implicit section.
func ParseSchema(raw []byte) (Schema, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Schema{}, errors.New("empty schema document")
	}

	if trimmed[0] == '[' {
		var fields []Field
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return Schema{}, fmt.Errorf("invalid legacy schema: %w", err)
		}
		return Schema{Sections: []Section{{Title: LegacySectionTitle, Fields: fields}}}, nil
	}

	var schema Schema
	if err := json.Unmarshal(trimmed, &schema); err != nil {
		return Schema{}, fmt.Errorf("invalid schema: %w", err)
	}
	return schema, nil
}

// JSON encodes the schema in its canonical sectioned form.
func (s Schema) JSON() (datatypes.JSON, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// AllFields returns every field across sections in document order.
func (s Schema) AllFields() []Field {
	var fields []Field
	for _, sec := range s.Sections {
		fields = append(fields, sec.Fields...)
	}
	return fields
}

// FieldByName looks a field up by its response key.
func (s Schema) FieldByName(name string) (Field, bool) {
	for _, sec := range s.Sections {
		for _, f := range sec.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Validate checks the structural invariants of a schema: at least one field,
// unique non-empty field names, known field types, and options present on
// dropdowns.
func (s Schema) Validate() error {
	fields := s.AllFields()
	if len(fields) == 0 {
		return errors.New("schema has no fields")
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return errors.New("field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = true

		switch f.Type {
		case FieldText, FieldNumber, FieldDate, FieldDropdown, FieldLocation, FieldTel:
		default:
			return fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
		}

		if f.Type == FieldDropdown && len(f.Options) == 0 {
			return fmt.Errorf("dropdown field %q has no options", f.Name)
		}
	}
	return nil
}

// Schema returns the parsed, normalized schema of the form.
func (f *Form) Schema() (Schema, error) {
	return ParseSchema(f.Fields)
}

// FormDTO is the safe wire representation of a form, with the caller's
// effective permissions resolved.
type FormDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`
	Fields      json.RawMessage `json:"fields"`
	FactoryID   uuid.UUID       `json:"factoryId"`
	FactoryName string          `json:"factoryName"`
	FactoryType string          `json:"factoryType"`
	CreatedBy   CreatedByDTO    `json:"createdBy"`
	Permissions PermissionsDTO  `json:"permissions"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreatedByDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PermissionsDTO struct {
	CanView   bool `json:"canView"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

// ToDTO converts a form (with Factory/CreatedBy preloaded) plus the caller's
// resolved permissions into its wire shape.
func (f *Form) ToDTO(perms PermissionsDTO) FormDTO {
	dto := FormDTO{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Type:        f.Type,
		Fields:      json.RawMessage(f.Fields),
		FactoryID:   f.FactoryID,
		FactoryName: "Unknown Factory",
		FactoryType: FormConventional,
		CreatedBy:   CreatedByDTO{Name: "System", Email: "system@koa.com"},
		Permissions: perms,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.Factory != nil {
		dto.FactoryName = f.Factory.Name
		dto.FactoryType = f.Factory.Type
	}
	if f.CreatedBy != nil {
		dto.CreatedBy = CreatedByDTO{Name: f.CreatedBy.Name, Email: f.CreatedBy.Email}
	}
	return dto
}
