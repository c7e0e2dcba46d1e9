package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/database/testutil"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
	apperrors "github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
)

type identityFixture struct {
	db       *gorm.DB
	resolver *IdentityResolver
	store    *permissions.Store
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())

	store, err := permissions.NewStore(db, permissions.StoreConfig{})
	require.NoError(t, err)

	resolver, err := NewIdentityResolver(db, store)
	require.NoError(t, err)

	return &identityFixture{db: db, resolver: resolver, store: store}
}

func (f *identityFixture) tenant(t *testing.T, name string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{Name: name}
	require.NoError(t, f.db.Create(&tenant).Error)
	return tenant
}

func (f *identityFixture) user(t *testing.T, tenantID, email string) models.User {
	t.Helper()
	user := models.User{TenantID: tenantID, Email: email, Name: email, Password: "x", IsActive: true}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *identityFixture) member(t *testing.T, tenantID, email string) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Membership{TenantID: tenantID, Email: email}).Error)
}

func (f *identityFixture) grant(t *testing.T, tenantID, userID string, permNames ...string) {
	t.Helper()
	role := models.Role{TenantID: tenantID, Name: "granted-" + userID}
	require.NoError(t, f.db.Create(&role).Error)
	for _, name := range permNames {
		var perm models.Permission
		require.NoError(t, f.db.Where("name = ?", name).First(&perm).Error)
		require.NoError(t, f.db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
	}
	require.NoError(t, f.db.Create(&models.UserRole{UserID: userID, RoleID: role.ID}).Error)
}

func TestResolveFastPathUsesCredentialTenant(t *testing.T) {
	f := newIdentityFixture(t)
	tenant := f.tenant(t, "home")
	user := f.user(t, tenant.ID, "ops@home.test")
	f.grant(t, tenant.ID, user.ID, "objects.read")

	claims := &Claims{UserID: user.ID, TenantID: tenant.ID, Email: user.Email}

	identity, err := f.resolver.Resolve(context.Background(), claims, "")
	require.NoError(t, err)
	require.Equal(t, tenant.ID, identity.TenantID)
	require.Equal(t, user.ID, identity.UserID)
	require.True(t, identity.HasPermission("objects.read"))
	require.False(t, identity.HasPermission("objects.delete"))
}

func TestResolveSwitchIntoMemberTenant(t *testing.T) {
	f := newIdentityFixture(t)
	home := f.tenant(t, "home")
	target := f.tenant(t, "target")

	homeUser := f.user(t, home.ID, "ops@shared.test")
	targetUser := f.user(t, target.ID, "ops@shared.test")
	f.member(t, target.ID, "ops@shared.test")
	f.grant(t, target.ID, targetUser.ID, "types.read")

	claims := &Claims{UserID: homeUser.ID, TenantID: home.ID, Email: "ops@shared.test"}

	identity, err := f.resolver.Resolve(context.Background(), claims, target.ID)
	require.NoError(t, err)

	// the identity carries the target tenant's user row, not the credential's
	require.Equal(t, target.ID, identity.TenantID)
	require.Equal(t, targetUser.ID, identity.UserID)
	require.True(t, identity.HasPermission("types.read"))
}

func TestResolveSwitchWithoutMembershipDenied(t *testing.T) {
	f := newIdentityFixture(t)
	home := f.tenant(t, "home")
	target := f.tenant(t, "target")
	user := f.user(t, home.ID, "ops@home.test")

	claims := &Claims{UserID: user.ID, TenantID: home.ID, Email: user.Email}

	_, err := f.resolver.Resolve(context.Background(), claims, target.ID)
	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrTenantAccessDenied))
}

func TestResolveMemberWithoutUserRowGetsEmptyPermissions(t *testing.T) {
	f := newIdentityFixture(t)
	home := f.tenant(t, "home")
	target := f.tenant(t, "target")
	user := f.user(t, home.ID, "invited@home.test")
	f.member(t, target.ID, user.Email)

	claims := &Claims{UserID: user.ID, TenantID: home.ID, Email: user.Email}

	identity, err := f.resolver.Resolve(context.Background(), claims, target.ID)
	require.NoError(t, err)
	require.Equal(t, target.ID, identity.TenantID)
	require.Empty(t, identity.UserID)
	require.Empty(t, identity.PermissionNames())
	require.False(t, identity.HasPermission("objects.read"))
}

func TestResolveNilClaims(t *testing.T) {
	f := newIdentityFixture(t)

	_, err := f.resolver.Resolve(context.Background(), nil, "")
	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrAuthMissing))
}

func TestPermissionNamesSorted(t *testing.T) {
	f := newIdentityFixture(t)
	tenant := f.tenant(t, "home")
	user := f.user(t, tenant.ID, "ops@home.test")
	f.grant(t, tenant.ID, user.ID, "types.read", "icons.read", "objects.read")

	claims := &Claims{UserID: user.ID, TenantID: tenant.ID, Email: user.Email}
	identity, err := f.resolver.Resolve(context.Background(), claims, "")
	require.NoError(t, err)

	require.Equal(t, []string{"icons.read", "objects.read", "types.read"}, identity.PermissionNames())
}
