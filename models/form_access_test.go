package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanPerform(t *testing.T) {
	creatorID := uuid.New()
	otherID := uuid.New()

	admin := &User{ID: uuid.New(), Role: RoleAdmin}
	creator := &User{ID: creatorID, Role: RoleFieldOfficer}
	viewer := &User{ID: otherID, Role: RoleGuest}

	form := &Form{ID: uuid.New(), CreatedByID: creatorID}
	viewOnly := &FormAccess{UserID: otherID, FormID: form.ID, CanView: true}
	editGrant := &FormAccess{UserID: otherID, FormID: form.ID, CanView: true, CanEdit: true}
	fullGrant := &FormAccess{UserID: otherID, FormID: form.ID, CanView: true, CanEdit: true, CanDelete: true}

	tests := []struct {
		name     string
		user     *User
		form     *Form
		grant    *FormAccess
		action   Action
		expected bool
	}{
		{"nil user denied", nil, form, fullGrant, ActionView, false},
		{"nil form denied", viewer, nil, fullGrant, ActionView, false},

		{"admin can view", admin, form, nil, ActionView, true},
		{"admin can edit", admin, form, nil, ActionEdit, true},
		{"admin can delete", admin, form, nil, ActionDelete, true},

		{"creator can view own form", creator, form, nil, ActionView, true},
		{"creator can edit own form", creator, form, nil, ActionEdit, true},
		{"creator can delete own form", creator, form, nil, ActionDelete, true},

		{"no grant denies view", viewer, form, nil, ActionView, false},
		{"view grant allows view", viewer, form, viewOnly, ActionView, true},
		{"view grant denies edit", viewer, form, viewOnly, ActionEdit, false},
		{"view grant denies delete", viewer, form, viewOnly, ActionDelete, false},
		{"edit grant allows edit", viewer, form, editGrant, ActionEdit, true},
		{"edit grant denies delete", viewer, form, editGrant, ActionDelete, false},
		{"full grant allows delete", viewer, form, fullGrant, ActionDelete, true},

		{"unknown action denied", viewer, form, fullGrant, Action("export"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanPerform(tt.user, tt.form, tt.grant, tt.action)
			if result != tt.expected {
				t.Errorf("CanPerform(%s) = %v, expected %v", tt.action, result, tt.expected)
			}
		})
	}
}

func TestPermissions(t *testing.T) {
	userID := uuid.New()
	user := &User{ID: userID, Role: RoleGuest}
	form := &Form{ID: uuid.New(), CreatedByID: uuid.New()}
	grant := &FormAccess{UserID: userID, FormID: form.ID, CanView: true, CanEdit: true}

	perms := Permissions(user, form, grant)
	if !perms.CanView || !perms.CanEdit || perms.CanDelete {
		t.Errorf("Permissions() = %+v, expected view+edit only", perms)
	}
}

func TestDefaultGrant(t *testing.T) {
	tests := []struct {
		role                        string
		canView, canEdit, canDelete bool
	}{
		{RoleAdmin, true, true, true},
		{RoleSupervisor, true, true, false},
		{RoleFieldOfficer, true, true, false},
		{RoleGuest, true, false, false},
		{RoleUser, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			view, edit, del := DefaultGrant(tt.role)
			if view != tt.canView || edit != tt.canEdit || del != tt.canDelete {
				t.Errorf("DefaultGrant(%s) = (%v, %v, %v), expected (%v, %v, %v)",
					tt.role, view, edit, del, tt.canView, tt.canEdit, tt.canDelete)
			}
		})
	}
}
