package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/database/testutil"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
)

type serviceFixture struct {
	db    *gorm.DB
	store *permissions.Store
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())

	store, err := permissions.NewStore(db, permissions.StoreConfig{})
	require.NoError(t, err)

	return &serviceFixture{db: db, store: store}
}

// provisionedTenant creates a tenant through the service so the system roles
// exist, mirroring how every real tenant comes to be.
func (f *serviceFixture) provisionedTenant(t *testing.T, name string) *models.Tenant {
	t.Helper()
	svc, err := NewTenantService(f.db, f.store)
	require.NoError(t, err)

	tenant, err := svc.Create(context.Background(), CreateTenantInput{Name: name})
	require.NoError(t, err)
	return tenant
}

func (f *serviceFixture) systemRole(t *testing.T, tenantID, name string) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, f.db.First(&role, "tenant_id = ? AND name = ?", tenantID, name).Error)
	require.True(t, role.IsSystem)
	return role
}
