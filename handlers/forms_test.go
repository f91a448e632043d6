package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/koa-impact/podcount/models"
)

func TestFormsFactoryScope(t *testing.T) {
	homeFactory := uuid.New()
	otherFactory := uuid.New().String()

	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin, FactoryID: &homeFactory}
	officer := &models.User{ID: uuid.New(), Role: models.RoleFieldOfficer, FactoryID: &homeFactory}
	floating := &models.User{ID: uuid.New(), Role: models.RoleGuest}

	tests := []struct {
		name       string
		user       *models.User
		param      string
		wantScope  string
		wantScoped bool
	}{
		{"admin without filter sees everything", admin, "", "", false},
		{"admin filter is honored", admin, otherFactory, otherFactory, true},
		{"officer defaults to own factory", officer, "", homeFactory.String(), true},
		{"officer filter is honored", officer, otherFactory, otherFactory, true},
		{"factoryless user stays unscoped", floating, "", "", false},
		{"factoryless user filter is honored", floating, otherFactory, otherFactory, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, scoped := formsFactoryScope(tt.user, tt.param)
			if scope != tt.wantScope || scoped != tt.wantScoped {
				t.Errorf("formsFactoryScope() = (%q, %v), expected (%q, %v)",
					scope, scoped, tt.wantScope, tt.wantScoped)
			}
		})
	}
}

func TestProvisionDefaultTemplatesWithoutFactory(t *testing.T) {
	// A caller with no factory has nothing to provision; the function must
	// bail out before touching the database.
	if err := provisionDefaultTemplates(&models.User{ID: uuid.New(), Role: models.RoleGuest}); err != nil {
		t.Errorf("provisionDefaultTemplates(no factory) = %v, expected nil", err)
	}
}
