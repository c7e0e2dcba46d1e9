package permissions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/database/testutil"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
)

func TestGetUserPermissionsUnionsDirectAndGroupGrants(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{})

	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant.ID, "ops@acme.test")

	direct := createRole(t, db, tenant.ID, "editor", "objects.read", "objects.update")
	assignRole(t, db, user.ID, direct.ID)

	inherited := createRole(t, db, tenant.ID, "browser", "objects.read", "types.read")
	createGroupWithRole(t, db, tenant.ID, "field-team", inherited.ID, user.ID)

	perms := store.GetUserPermissions(context.Background(), user.ID, tenant.ID)
	require.Equal(t, []string{"objects.read", "objects.update", "types.read"}, perms)
}

func TestGetUserPermissionsEmptyForUnassignedUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{})

	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant.ID, "new@acme.test")

	perms := store.GetUserPermissions(context.Background(), user.ID, tenant.ID)
	require.NotNil(t, perms)
	require.Empty(t, perms)
}

func TestGetUserPermissionsIgnoresOtherTenantRoles(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{})

	home := createTenant(t, db, "home")
	other := createTenant(t, db, "other")
	user := createUser(t, db, home.ID, "drifter@home.test")

	foreign := createRole(t, db, other.ID, "admin-elsewhere", "users.manage")
	assignRole(t, db, user.ID, foreign.ID)

	require.Empty(t, store.GetUserPermissions(context.Background(), user.ID, home.ID))
	require.False(t, store.HasPermission(context.Background(), user.ID, home.ID, "users.manage"))
}

func TestHasPermissionRejectsUnknownNames(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{})

	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant.ID, "ops@acme.test")
	role := createRole(t, db, tenant.ID, "editor", "objects.read")
	assignRole(t, db, user.ID, role.ID)

	ctx := context.Background()
	require.True(t, store.HasPermission(ctx, user.ID, tenant.ID, "objects.read"))
	require.False(t, store.HasPermission(ctx, user.ID, tenant.ID, "objects.fly"))
	require.False(t, store.HasPermission(ctx, user.ID, tenant.ID, ""))
}

func TestGetUserRolesDeduplicatesAcrossPaths(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{})

	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant.ID, "ops@acme.test")

	role := createRole(t, db, tenant.ID, "editor", "objects.read")
	assignRole(t, db, user.ID, role.ID)
	createGroupWithRole(t, db, tenant.ID, "field-team", role.ID, user.ID)

	roles := store.GetUserRoles(context.Background(), user.ID, tenant.ID)
	require.Len(t, roles, 1)
	require.Equal(t, role.ID, roles[0].ID)
}

func TestCanAccessObjectOwnershipRules(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{})

	tenant := createTenant(t, db, "acme")
	owner := createUser(t, db, tenant.ID, "owner@acme.test")
	colleague := createUser(t, db, tenant.ID, "colleague@acme.test")
	manager := createUser(t, db, tenant.ID, "manager@acme.test")

	crud := createRole(t, db, tenant.ID, "crud",
		"objects.read", "objects.create", "objects.update", "objects.delete")
	assignRole(t, db, owner.ID, crud.ID)
	assignRole(t, db, colleague.ID, crud.ID)

	manage := createRole(t, db, tenant.ID, "object-manager", "objects.manage")
	assignRole(t, db, manager.ID, manage.ID)

	object := models.TrackedObject{TenantID: tenant.ID, Name: "truck-1", CreatedBy: owner.ID}
	require.NoError(t, db.Create(&object).Error)

	ctx := context.Background()

	// read needs no ownership
	require.True(t, store.CanAccessObject(ctx, colleague.ID, tenant.ID, object.ID, "read"))

	// update and delete are creator-only without objects.manage
	require.True(t, store.CanAccessObject(ctx, owner.ID, tenant.ID, object.ID, "update"))
	require.True(t, store.CanAccessObject(ctx, owner.ID, tenant.ID, object.ID, "delete"))
	require.False(t, store.CanAccessObject(ctx, colleague.ID, tenant.ID, object.ID, "update"))
	require.False(t, store.CanAccessObject(ctx, colleague.ID, tenant.ID, object.ID, "delete"))

	// objects.manage overrides ownership
	require.True(t, store.CanAccessObject(ctx, manager.ID, tenant.ID, object.ID, "update"))
	require.True(t, store.CanAccessObject(ctx, manager.ID, tenant.ID, object.ID, "delete"))

	// only read, update, delete are decidable per object
	require.False(t, store.CanAccessObject(ctx, manager.ID, tenant.ID, object.ID, "create"))
	require.False(t, store.CanAccessObject(ctx, manager.ID, tenant.ID, object.ID, "manage"))
}

func TestCanAccessObjectMissingObjectDenied(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{})

	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant.ID, "ops@acme.test")
	crud := createRole(t, db, tenant.ID, "crud", "objects.update")
	assignRole(t, db, user.ID, crud.ID)

	require.False(t, store.CanAccessObject(context.Background(), user.ID, tenant.ID, "no-such-object", "update"))
}

func TestCanAccessObjectIgnoresOtherTenantObjects(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{})

	home := createTenant(t, db, "home")
	other := createTenant(t, db, "other")
	user := createUser(t, db, home.ID, "ops@home.test")
	crud := createRole(t, db, home.ID, "crud", "objects.update")
	assignRole(t, db, user.ID, crud.ID)

	object := models.TrackedObject{TenantID: other.ID, Name: "foreign", CreatedBy: user.ID}
	require.NoError(t, db.Create(&object).Error)

	require.False(t, store.CanAccessObject(context.Background(), user.ID, home.ID, object.ID, "update"))
}

func TestInvalidateUserEvictsCachedGrants(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{CacheEnabled: true})

	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant.ID, "ops@acme.test")

	ctx := context.Background()
	require.Empty(t, store.GetUserPermissions(ctx, user.ID, tenant.ID))

	role := createRole(t, db, tenant.ID, "editor", "objects.read")
	assignRole(t, db, user.ID, role.ID)

	// cached result until the grant path invalidates
	require.Empty(t, store.GetUserPermissions(ctx, user.ID, tenant.ID))

	store.InvalidateUser(user.ID, tenant.ID)
	require.Equal(t, []string{"objects.read"}, store.GetUserPermissions(ctx, user.ID, tenant.ID))
}

func TestInvalidateTenantEvictsCachedGrants(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := newStore(t, db, permissions.StoreConfig{CacheEnabled: true})

	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant.ID, "ops@acme.test")
	role := createRole(t, db, tenant.ID, "editor", "objects.read")
	assignRole(t, db, user.ID, role.ID)

	ctx := context.Background()
	require.Equal(t, []string{"objects.read"}, store.GetUserPermissions(ctx, user.ID, tenant.ID))

	var perm models.Permission
	require.NoError(t, db.Where("name = ?", "types.read").First(&perm).Error)
	require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)

	store.InvalidateTenant(tenant.ID)
	require.Equal(t, []string{"objects.read", "types.read"}, store.GetUserPermissions(ctx, user.ID, tenant.ID))
}
