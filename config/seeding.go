package config

import (
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/koa-impact/podcount/models"
)

// RunAllSeeding seeds the demo factories, users and default pod-count
// templates. Every step is idempotent; existing rows are left alone.
func RunAllSeeding() error {
	log.Println("=== Starting Database Seeding ===")

	log.Println("[1/3] Seeding Factories...")
	achiase, akrofuom, err := seedFactories()
	if err != nil {
		return err
	}

	log.Println("[2/3] Seeding Users...")
	admin, err := seedUsers(achiase, akrofuom)
	if err != nil {
		return err
	}

	log.Println("[3/3] Seeding Default Templates...")
	if err := seedTemplates(admin, achiase, akrofuom); err != nil {
		return err
	}

	log.Println("=== Database Seeding Complete ===")
	return nil
}

func seedFactories() (achiase, akrofuom *models.Factory, err error) {
	achiase = &models.Factory{Name: "Achiase", Location: "Eastern Region, Ghana", Type: models.FactoryOrganic}
	if err = DB.Where("name = ?", achiase.Name).FirstOrCreate(achiase).Error; err != nil {
		return nil, nil, err
	}
	akrofuom = &models.Factory{Name: "Akrofuom", Location: "Ashanti Region, Ghana", Type: models.FactoryConventional}
	if err = DB.Where("name = ?", akrofuom.Name).FirstOrCreate(akrofuom).Error; err != nil {
		return nil, nil, err
	}
	return achiase, akrofuom, nil
}

func seedUser(name, email, password, role, fieldType string, factoryID uuid.UUID) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.StatusActive,
		FieldType:    fieldType,
		FactoryID:    &factoryID,
	}
	if err := DB.Where("email = ?", email).FirstOrCreate(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func seedUsers(achiase, akrofuom *models.Factory) (*models.User, error) {
	admin, err := seedUser("Admin User", "admin@koa.com", "admin123",
		models.RoleAdmin, models.FieldTypeOther, achiase.ID)
	if err != nil {
		return nil, err
	}

	seeds := []struct {
		name, email, password, role, fieldType string
		factoryID                              uuid.UUID
	}{
		{"Achiase Supervisor", "supervisor.achiase@koa.com", "supervisor123", models.RoleSupervisor, models.FieldTypeCocoa, achiase.ID},
		{"Akrofuom Supervisor", "supervisor.akrofuom@koa.com", "supervisor123", models.RoleSupervisor, models.FieldTypeMixed, akrofuom.ID},
		{"Achiase Field Officer", "officer.achiase@koa.com", "officer123", models.RoleFieldOfficer, models.FieldTypeCoffee, achiase.ID},
		{"Akrofuom Field Officer", "officer.akrofuom@koa.com", "officer123", models.RoleFieldOfficer, models.FieldTypeCocoa, akrofuom.ID},
		{"Achiase Guest", "guest.achiase@koa.com", "guest123", models.RoleGuest, models.FieldTypeOther, achiase.ID},
		{"Akrofuom Guest", "guest.akrofuom@koa.com", "guest123", models.RoleGuest, models.FieldTypeOther, akrofuom.ID},
	}
	for _, s := range seeds {
		if _, err := seedUser(s.name, s.email, s.password, s.role, s.fieldType, s.factoryID); err != nil {
			return nil, err
		}
	}
	return admin, nil
}

func seedTemplates(admin *models.User, factories ...*models.Factory) error {
	for _, factory := range factories {
		name, description, formType, schema := models.DefaultTemplate(factory.Type)

		var existing models.Form
		err := DB.Where("factory_id = ? AND name = ?", factory.ID, name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
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
			CreatedByID: admin.ID,
		}
		if err := DB.Create(&form).Error; err != nil {
			return err
		}

		// Grant the whole factory access per role.
		var members []models.User
		if err := DB.Where("factory_id = ?", factory.ID).Find(&members).Error; err != nil {
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
			if err := DB.Create(&grant).Error; err != nil {
				return err
			}
		}
		log.Printf("Seeded template %q for factory %s", name, factory.Name)
	}
	return nil
}
