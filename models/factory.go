package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory types
const (
	FactoryProcessing   = "PROCESSING"
	FactoryStorage      = "STORAGE"
	FactoryOffice       = "OFFICE"
	FactoryOther        = "OTHER"
	FactoryConventional = "CONVENTIONAL"
	FactoryOrganic      = "ORGANIC"
)

// Factory is a tenant/location grouping users and forms,
// e.g. the Achiase processing site in the Eastern Region.
type Factory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Location  string    `gorm:"size:255;not null" json:"location"`
	Type      string    `gorm:"size:20;not null;default:'OTHER'" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Users []User `gorm:"foreignKey:FactoryID" json:"users,omitempty"`
	Forms []Form `gorm:"foreignKey:FactoryID" json:"forms,omitempty"`
}

func (f *Factory) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for Factory
func (Factory) TableName() string {
	return "factories"
}

// IsValidFactoryType reports whether t is one of the known factory types.
func IsValidFactoryType(t string) bool {
	switch t {
	case FactoryProcessing, FactoryStorage, FactoryOffice, FactoryOther,
		FactoryConventional, FactoryOrganic:
		return true
	}
	return false
}
