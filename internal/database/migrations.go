package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.Permission{},
		&models.Role{},
		&models.Group{},
		&models.User{},
		&models.Membership{},
		&models.UserRole{},
		&models.UserGroup{},
		&models.GroupRole{},
		&models.RolePermission{},
		&models.ObjectType{},
		&models.Icon{},
		&models.TrackedObject{},
	)
}

// SeedPermissions persists the global permission catalog. The upsert is
// idempotent so repeated start-ups leave existing rows untouched.
func SeedPermissions(db *gorm.DB) error {
	return permissions.SyncCatalog(context.Background(), db)
}
