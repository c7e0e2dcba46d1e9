package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
)

func newGroupFixture(t *testing.T) (*serviceFixture, *GroupService, *models.Tenant) {
	t.Helper()
	f := newServiceFixture(t)
	tenant := f.provisionedTenant(t, "acme")

	svc, err := NewGroupService(f.db, f.store)
	require.NoError(t, err)
	return f, svc, tenant
}

func TestGroupMembershipGrantsRolesToMembers(t *testing.T) {
	f, svc, tenant := newGroupFixture(t)
	ctx := context.Background()

	users, err := NewUserService(f.db, f.store)
	require.NoError(t, err)
	user, err := users.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	group, err := svc.Create(ctx, tenant.ID, CreateGroupInput{Name: "field-team"})
	require.NoError(t, err)

	viewer := f.systemRole(t, tenant.ID, permissions.RoleViewer)
	require.NoError(t, svc.AssignRole(ctx, tenant.ID, group.ID, viewer.ID))
	require.NoError(t, svc.AddMember(ctx, tenant.ID, group.ID, user.ID))

	// the member inherits every group role through the store
	require.True(t, f.store.HasPermission(ctx, user.ID, tenant.ID, "objects.read"))
	require.False(t, f.store.HasPermission(ctx, user.ID, tenant.ID, "objects.delete"))

	require.NoError(t, svc.RemoveMember(ctx, tenant.ID, group.ID, user.ID))
	require.False(t, f.store.HasPermission(ctx, user.ID, tenant.ID, "objects.read"))
}

func TestGroupAddMemberIsIdempotent(t *testing.T) {
	f, svc, tenant := newGroupFixture(t)
	ctx := context.Background()

	users, err := NewUserService(f.db, f.store)
	require.NoError(t, err)
	user, err := users.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	group, err := svc.Create(ctx, tenant.ID, CreateGroupInput{Name: "field-team"})
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, tenant.ID, group.ID, user.ID))
	require.NoError(t, svc.AddMember(ctx, tenant.ID, group.ID, user.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.UserGroup{}).Where("group_id = ?", group.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGroupAddMemberRejectsForeignUser(t *testing.T) {
	f, svc, tenant := newGroupFixture(t)
	other := f.provisionedTenant(t, "other")
	ctx := context.Background()

	users, err := NewUserService(f.db, f.store)
	require.NoError(t, err)
	foreign, err := users.Create(ctx, other.ID, CreateUserInput{Email: "ops@other.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	group, err := svc.Create(ctx, tenant.ID, CreateGroupInput{Name: "field-team"})
	require.NoError(t, err)

	err = svc.AddMember(ctx, tenant.ID, group.ID, foreign.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGroupDeleteClearsMembershipsAndGrants(t *testing.T) {
	f, svc, tenant := newGroupFixture(t)
	ctx := context.Background()

	users, err := NewUserService(f.db, f.store)
	require.NoError(t, err)
	user, err := users.Create(ctx, tenant.ID, CreateUserInput{Email: "ops@acme.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	group, err := svc.Create(ctx, tenant.ID, CreateGroupInput{Name: "field-team"})
	require.NoError(t, err)
	viewer := f.systemRole(t, tenant.ID, permissions.RoleViewer)
	require.NoError(t, svc.AssignRole(ctx, tenant.ID, group.ID, viewer.ID))
	require.NoError(t, svc.AddMember(ctx, tenant.ID, group.ID, user.ID))

	require.NoError(t, svc.Delete(ctx, tenant.ID, group.ID))

	_, err = svc.GetByID(ctx, tenant.ID, group.ID)
	require.ErrorIs(t, err, ErrGroupNotFound)

	var memberships, grants int64
	require.NoError(t, f.db.Model(&models.UserGroup{}).Where("group_id = ?", group.ID).Count(&memberships).Error)
	require.NoError(t, f.db.Model(&models.GroupRole{}).Where("group_id = ?", group.ID).Count(&grants).Error)
	require.Zero(t, memberships)
	require.Zero(t, grants)

	require.False(t, f.store.HasPermission(ctx, user.ID, tenant.ID, "objects.read"))
}
