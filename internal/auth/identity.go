package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
	apperrors "github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/logger"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/metrics"
)

// Identity is the per-request authorization context: the tenant and user a
// request is actually authorized against, with permissions and roles
// preloaded. It is built once per request and threaded explicitly; it is
// never a mutable ambient object.
type Identity struct {
	TenantID string
	UserID   string
	Email    string

	permissions map[string]struct{}
	Roles       []models.Role
}

// HasPermission reports membership in the preloaded permission set.
func (i *Identity) HasPermission(name string) bool {
	if i == nil {
		return false
	}
	_, ok := i.permissions[name]
	return ok
}

// PermissionNames returns the preloaded permission names, sorted.
func (i *Identity) PermissionNames() []string {
	if i == nil {
		return nil
	}
	names := make([]string, 0, len(i.permissions))
	for name := range i.permissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IdentityResolver turns a verified credential plus an optional workspace
// override into an effective (tenant, user) identity.
type IdentityResolver struct {
	db    *gorm.DB
	store *permissions.Store
	log   *zap.Logger
}

// NewIdentityResolver constructs an IdentityResolver.
func NewIdentityResolver(db *gorm.DB, store *permissions.Store) (*IdentityResolver, error) {
	if db == nil {
		return nil, errors.New("identity resolver: db is required")
	}
	if store == nil {
		return nil, errors.New("identity resolver: permission store is required")
	}
	return &IdentityResolver{
		db:    db,
		store: store,
		log:   logger.WithModule("identity"),
	}, nil
}

// Resolve computes the effective identity for the request. requestedTenant is
// the caller-supplied workspace override (already reduced by the transport
// layer to header > path > empty); empty means the credential's own tenant.
//
// Switching into another workspace requires a membership row for the
// credential's email in the target tenant. A member without a per-tenant User
// row resolves to an identity with an empty permission set rather than a
// rejection: membership and capability are checked independently.
func (r *IdentityResolver) Resolve(ctx context.Context, claims *Claims, requestedTenant string) (*Identity, error) {
	if claims == nil {
		return nil, apperrors.ErrAuthMissing
	}

	tenantID := strings.TrimSpace(requestedTenant)
	if tenantID == "" {
		tenantID = claims.TenantID
	}

	identity := &Identity{
		TenantID: tenantID,
		Email:    claims.Email,
	}

	if tenantID == claims.TenantID {
		identity.UserID = claims.UserID
	} else {
		userID, err := r.resolveSwitch(ctx, claims, tenantID)
		if err != nil {
			metrics.WorkspaceSwitches.WithLabelValues("denied").Inc()
			return nil, err
		}
		metrics.WorkspaceSwitches.WithLabelValues("allowed").Inc()
		identity.UserID = userID
	}

	// Store lookups are fail-closed; a degraded identity simply carries empty
	// sets and the guards deny by default.
	names := r.store.GetUserPermissions(ctx, identity.UserID, identity.TenantID)
	identity.permissions = make(map[string]struct{}, len(names))
	for _, name := range names {
		identity.permissions[name] = struct{}{}
	}
	identity.Roles = r.store.GetUserRoles(ctx, identity.UserID, identity.TenantID)

	return identity, nil
}

// resolveSwitch validates membership in the target tenant and maps the
// credential onto that tenant's User row when one exists.
func (r *IdentityResolver) resolveSwitch(ctx context.Context, claims *Claims, tenantID string) (string, error) {
	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return "", apperrors.ErrTenantAccessDenied
	}

	var members int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		Count(&members).Error
	if err != nil {
		return "", fmt.Errorf("identity resolver: membership lookup: %w", err)
	}
	if members == 0 {
		r.log.Info("workspace switch denied",
			zap.String("user_id", claims.UserID),
			zap.String("target_tenant", tenantID),
		)
		return "", apperrors.ErrTenantAccessDenied
	}

	var user models.User
	err = r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Member with no per-tenant identity yet: downstream permission
		// lookups resolve empty and the gate denies by default.
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("identity resolver: user lookup: %w", err)
	}

	return user.ID, nil
}
