package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/crypto"
)

func newUserFixture(t *testing.T) (*serviceFixture, *UserService, *models.Tenant) {
	t.Helper()
	f := newServiceFixture(t)
	tenant := f.provisionedTenant(t, "acme")

	svc, err := NewUserService(f.db, f.store)
	require.NoError(t, err)
	return f, svc, tenant
}

func TestUserCreateHashesPasswordAndRecordsMembership(t *testing.T) {
	f, svc, tenant := newUserFixture(t)

	user, err := svc.Create(context.Background(), tenant.ID, CreateUserInput{
		Email:    "Ops@Acme.Test",
		Name:     "Ops",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	// email is normalised and the password never stored in clear
	require.Equal(t, "ops@acme.test", user.Email)
	require.NotEqual(t, "s3cret-pass", user.Password)
	require.True(t, crypto.VerifyPassword(user.Password, "s3cret-pass"))

	var membership models.Membership
	require.NoError(t, f.db.First(&membership, "tenant_id = ? AND email = ?", tenant.ID, "ops@acme.test").Error)
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	_, svc, tenant := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "another-pass"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserCreateAllowsSameEmailAcrossTenants(t *testing.T) {
	f, svc, tenant := newUserFixture(t)
	other := f.provisionedTenant(t, "other")
	ctx := context.Background()

	_, err := svc.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@shared.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, other.ID, CreateUserInput{Email: "ops@shared.test", Password: "s3cret-pass"})
	require.NoError(t, err)
}

func TestUserCreateWithRolesVerifiesTenantScope(t *testing.T) {
	f, svc, tenant := newUserFixture(t)
	other := f.provisionedTenant(t, "other")
	ctx := context.Background()

	foreignRole := f.systemRole(t, other.ID, permissions.RoleViewer)

	_, err := svc.Create(ctx, tenant.ID, CreateUserInput{
		Email:    "ops@acme.test",
		Password: "s3cret-pass",
		RoleIDs:  []string{foreignRole.ID},
	})
	require.Error(t, err)

	// the rejected create must not leave the user behind
	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestInviteIsIdempotent(t *testing.T) {
	f, svc, tenant := newUserFixture(t)
	ctx := context.Background()

	first, err := svc.Invite(ctx, tenant.ID, "guest@elsewhere.test")
	require.NoError(t, err)

	second, err := svc.Invite(ctx, tenant.ID, "guest@elsewhere.test")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Membership{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAssignRoleIsIdempotent(t *testing.T) {
	f, svc, tenant := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	viewer := f.systemRole(t, tenant.ID, permissions.RoleViewer)

	require.NoError(t, svc.AssignRole(ctx, tenant.ID, user.ID, viewer.ID))
	require.NoError(t, svc.AssignRole(ctx, tenant.ID, user.ID, viewer.ID))

	var grants int64
	require.NoError(t, f.db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&grants).Error)
	require.EqualValues(t, 1, grants)
}

func TestAssignRoleRejectsForeignRole(t *testing.T) {
	f, svc, tenant := newUserFixture(t)
	other := f.provisionedTenant(t, "other")
	ctx := context.Background()

	user, err := svc.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	foreign := f.systemRole(t, other.ID, permissions.RoleViewer)

	err = svc.AssignRole(ctx, tenant.ID, user.ID, foreign.ID)
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRemoveRoleAbsentGrantIsNoOp(t *testing.T) {
	f, svc, tenant := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	viewer := f.systemRole(t, tenant.ID, permissions.RoleViewer)

	require.NoError(t, svc.RemoveRole(ctx, tenant.ID, user.ID, viewer.ID))
}

func TestUserDeleteClearsGrantsAndMembership(t *testing.T) {
	f, svc, tenant := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	viewer := f.systemRole(t, tenant.ID, permissions.RoleViewer)
	require.NoError(t, svc.AssignRole(ctx, tenant.ID, user.ID, viewer.ID))

	require.NoError(t, svc.Delete(ctx, tenant.ID, user.ID))

	_, err = svc.GetByID(ctx, tenant.ID, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	var grants, memberships int64
	require.NoError(t, f.db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&grants).Error)
	require.NoError(t, f.db.Model(&models.Membership{}).Where("tenant_id = ? AND email = ?", tenant.ID, user.Email).Count(&memberships).Error)
	require.Zero(t, grants)
	require.Zero(t, memberships)
}

func TestUserScopedToTenant(t *testing.T) {
	f, svc, tenant := newUserFixture(t)
	other := f.provisionedTenant(t, "other")
	ctx := context.Background()

	user, err := svc.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, other.ID, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}
