package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
)

// Shared fixtures for the store and provisioning tests.

func createTenant(t *testing.T, db *gorm.DB, name string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{Name: name}
	require.NoError(t, db.Create(&tenant).Error)
	return tenant
}

func createUser(t *testing.T, db *gorm.DB, tenantID, email string) models.User {
	t.Helper()
	user := models.User{
		TenantID: tenantID,
		Email:    email,
		Name:     email,
		Password: "x",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createRole(t *testing.T, db *gorm.DB, tenantID, name string, permNames ...string) models.Role {
	t.Helper()
	role := models.Role{TenantID: tenantID, Name: name}
	require.NoError(t, db.Create(&role).Error)
	for _, permName := range permNames {
		var perm models.Permission
		require.NoError(t, db.Where("name = ?", permName).First(&perm).Error)
		require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
	}
	return role
}

func assignRole(t *testing.T, db *gorm.DB, userID, roleID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserRole{UserID: userID, RoleID: roleID}).Error)
}

func createGroupWithRole(t *testing.T, db *gorm.DB, tenantID, name, roleID string, userIDs ...string) models.Group {
	t.Helper()
	group := models.Group{TenantID: tenantID, Name: name}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.GroupRole{GroupID: group.ID, RoleID: roleID}).Error)
	for _, userID := range userIDs {
		require.NoError(t, db.Create(&models.UserGroup{UserID: userID, GroupID: group.ID}).Error)
	}
	return group
}

func newStore(t *testing.T, db *gorm.DB, cfg permissions.StoreConfig) *permissions.Store {
	t.Helper()
	store, err := permissions.NewStore(db, cfg)
	require.NoError(t, err)
	return store
}
