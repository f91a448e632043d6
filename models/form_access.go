package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action names an operation checked against the access ledger.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// FormAccess is one per-user, per-form permission grant. At most one row
// exists per (user, form) pair; grants are upserted, never duplicated.
type FormAccess struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_form_access_user_form" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FormID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_form_access_user_form" json:"formId"`
	Form      *Form     `gorm:"foreignKey:FormID" json:"-"`
	CanView   bool      `gorm:"default:false" json:"canView"`
	CanEdit   bool      `gorm:"default:false" json:"canEdit"`
	CanDelete bool      `gorm:"default:false" json:"canDelete"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *FormAccess) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for FormAccess
func (FormAccess) TableName() string {
	return "form_access"
}

// CanPerform is the single access decision for form operations. Rule order:
// admins may do anything, creators may do anything to their own forms,
// everyone else falls through to their grant row. A nil grant denies.
func CanPerform(user *User, form *Form, grant *FormAccess, action Action) bool {
	if user == nil || form == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	if form.CreatedByID == user.ID {
		return true
	}
	if grant == nil {
		return false
	}
	switch action {
	case ActionView:
		return grant.CanView
	case ActionEdit:
		return grant.CanEdit
	case ActionDelete:
		return grant.CanDelete
	}
	return false
}

// Permissions resolves the caller's effective view/edit/delete flags for a
// form, applying the same admin/creator overrides as CanPerform.
func Permissions(user *User, form *Form, grant *FormAccess) PermissionsDTO {
	return PermissionsDTO{
		CanView:   CanPerform(user, form, grant, ActionView),
		CanEdit:   CanPerform(user, form, grant, ActionEdit),
		CanDelete: CanPerform(user, form, grant, ActionDelete),
	}
}

// DefaultGrant computes the grant a factory member receives when a form is
// created in their factory: everyone can view, staff roles can edit, only
// admins can delete.
func DefaultGrant(role string) (canView, canEdit, canDelete bool) {
	canView = true
	switch role {
	case RoleAdmin:
		canEdit = true
		canDelete = true
	case RoleSupervisor, RoleFieldOfficer:
		canEdit = true
	}
	return
}
