package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/koa-impact/podcount/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250311_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Factory{}, &models.User{}, &models.Form{},
					&models.FormAccess{}, &models.FormResponse{}, &models.FormEntry{})
			},
		},
		{
			ID: "20250402_add_password_reset_requests",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.PasswordResetRequest{})
			},
		},
		{
			ID: "20250518_add_user_field_type",
			Migrate: func(tx *gorm.DB) error {
				// Column exists on fresh installs; backfill older databases.
				if err := tx.Exec("ALTER TABLE users ADD COLUMN IF NOT EXISTS field_type varchar(30) DEFAULT 'OTHER'").Error; err != nil {
					return err
				}
				return tx.Exec("UPDATE users SET field_type = 'OTHER' WHERE field_type IS NULL").Error
			},
		},
	})

	return m.Migrate()
}
