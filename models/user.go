package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin        = "ADMIN"
	RoleSupervisor   = "SUPERVISOR"
	RoleFieldOfficer = "FIELD_OFFICER"
	RoleGuest        = "GUEST"
	RoleUser         = "USER"
)

// User statuses
const (
	StatusActive   = "ACTIVE"
	StatusDisabled = "DISABLED"
)

// Field types describe the kind of field work a user is assigned to.
const (
	FieldTypeCocoa  = "COCOA_FIELD"
	FieldTypeCoffee = "COFFEE_FIELD"
	FieldTypeMixed  = "MIXED_CULTIVATION"
	FieldTypeOther  = "OTHER"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:20;not null;default:'USER'" json:"role"`
	Status       string     `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	FieldType    string     `gorm:"size:30;default:'OTHER'" json:"fieldType"`
	FactoryID    *uuid.UUID `gorm:"type:uuid;index" json:"factoryId"`
	Factory      *Factory   `gorm:"foreignKey:FactoryID" json:"factory,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsDisabled reports whether the account is blocked from authenticating.
func (u *User) IsDisabled() bool {
	return u.Status == StatusDisabled
}

// IsValidRole reports whether r is one of the known roles.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleFieldOfficer, RoleGuest, RoleUser:
		return true
	}
	return false
}
