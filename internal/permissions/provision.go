package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/metrics"
)

// System role names provisioned for every tenant.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleOperator   = "operator"
	RoleViewer     = "viewer"
	RoleUser       = "user"
)

var crudActions = map[string]struct{}{
	ActionCreate: {},
	ActionRead:   {},
	ActionUpdate: {},
	ActionDelete: {},
}

var userRoleWhitelist = map[string]struct{}{
	Name(ResourceObjects, ActionCreate): {},
	Name(ResourceObjects, ActionRead):   {},
	Name(ResourceObjects, ActionUpdate): {},
	Name(ResourceObjects, ActionDelete): {},
	Name(ResourceTypes, ActionRead):     {},
	Name(ResourceIcons, ActionRead):     {},
}

type systemRole struct {
	Name        string
	DisplayName string
	Description string
	Grants      func(Definition) bool
}

// systemRoles partitions the global catalog per role by static policy.
var systemRoles = []systemRole{
	{
		Name:        RoleSuperAdmin,
		DisplayName: "Super Administrator",
		Description: "Unrestricted access, including platform administration",
		Grants:      func(Definition) bool { return true },
	},
	{
		Name:        RoleAdmin,
		DisplayName: "Administrator",
		Description: "Full workspace access without platform administration",
		Grants:      func(d Definition) bool { return d.Name != SystemAdmin },
	},
	{
		Name:        RoleManager,
		DisplayName: "Manager",
		Description: "Manages objects, users, groups, and object types",
		Grants: func(d Definition) bool {
			switch d.Resource {
			case ResourceObjects, ResourceUsers, ResourceGroups, ResourceTypes:
			default:
				return false
			}
			_, ok := crudActions[d.Action]
			return ok
		},
	},
	{
		Name:        RoleOperator,
		DisplayName: "Operator",
		Description: "Operates objects, object types, and icons",
		Grants: func(d Definition) bool {
			switch d.Resource {
			case ResourceObjects, ResourceTypes, ResourceIcons:
			default:
				return false
			}
			_, ok := crudActions[d.Action]
			return ok
		},
	},
	{
		Name:        RoleViewer,
		DisplayName: "Viewer",
		Description: "Read-only access across the workspace",
		Grants:      func(d Definition) bool { return d.Action == ActionRead },
	},
	{
		Name:        RoleUser,
		DisplayName: "User",
		Description: "Works with own objects and browses types and icons",
		Grants: func(d Definition) bool {
			_, ok := userRoleWhitelist[d.Name]
			return ok
		},
	},
}

// InitializeTenantRBAC creates the six system roles for a freshly created
// tenant and grants each its slice of the permission catalog. The whole
// sequence runs in one transaction so a crash can never leave a
// half-provisioned role set. Callers invoke it exactly once per tenant;
// re-invocation fails on the (tenant_id, name) uniqueness of roles.
func InitializeTenantRBAC(ctx context.Context, db *gorm.DB, tenantID string) (map[string]models.Role, error) {
	if db == nil {
		return nil, errors.New("provision: db is required")
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, errors.New("provision: tenant id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var stored []models.Permission
	created := make(map[string]models.Role, len(systemRoles))

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Find(&stored).Error; err != nil {
			return fmt.Errorf("provision: load catalog: %w", err)
		}
		idsByName := make(map[string]string, len(stored))
		for _, perm := range stored {
			idsByName[perm.Name] = perm.ID
		}

		for _, def := range systemRoles {
			role := models.Role{
				TenantID:    tenantID,
				Name:        def.Name,
				DisplayName: def.DisplayName,
				Description: def.Description,
				IsSystem:    true,
			}
			if err := tx.Create(&role).Error; err != nil {
				return fmt.Errorf("provision: create role %s: %w", def.Name, err)
			}

			var grants []models.RolePermission
			for _, entry := range Catalog() {
				if !def.Grants(entry) {
					continue
				}
				permID, ok := idsByName[entry.Name]
				if !ok {
					return fmt.Errorf("provision: permission %s missing from database", entry.Name)
				}
				grants = append(grants, models.RolePermission{
					RoleID:       role.ID,
					PermissionID: permID,
				})
			}
			if len(grants) > 0 {
				if err := tx.Create(&grants).Error; err != nil {
					return fmt.Errorf("provision: grant permissions to %s: %w", def.Name, err)
				}
			}

			created[def.Name] = role
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TenantsProvisioned.Inc()
	return created, nil
}
