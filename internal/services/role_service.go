package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
	apperrors "github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist in the tenant.
	ErrRoleNotFound = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	// ErrSystemRoleImmutable prevents destructive operations on system roles.
	ErrSystemRoleImmutable = apperrors.New("ROLE_IMMUTABLE", "System roles cannot be modified", http.StatusBadRequest)
)

// CreateRoleInput describes the payload accepted by Create.
type CreateRoleInput struct {
	Name        string
	DisplayName string
	Description string
}

// UpdateRoleInput describes mutable fields on a role.
type UpdateRoleInput struct {
	DisplayName *string
	Description *string
}

// RoleService provides custom role management within a tenant. The six system
// roles created at provisioning are visible here but never mutable.
type RoleService struct {
	db    *gorm.DB
	store *permissions.Store
}

// NewRoleService constructs a RoleService using the provided database handle.
func NewRoleService(db *gorm.DB, store *permissions.Store) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	return &RoleService{db: db, store: store}, nil
}

// Create registers a custom (non-system) role.
func (s *RoleService) Create(ctx context.Context, tenantID string, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("role name is required")
	}

	role := &models.Role{
		TenantID:    tenantID,
		Name:        name,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Description: strings.TrimSpace(input.Description),
		IsSystem:    false,
	}

	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("role name already exists in this workspace")
		}
		return nil, fmt.Errorf("role service: create role: %w", err)
	}

	return role, nil
}

// GetByID loads a role scoped to the tenant.
func (s *RoleService) GetByID(ctx context.Context, tenantID, roleID string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).
		Preload("Permissions").
		First(&role, "id = ? AND tenant_id = ?", roleID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("role service: load role: %w", err)
	}
	return &role, nil
}

// List returns the tenant's roles ordered by creation date.
func (s *RoleService) List(ctx context.Context, tenantID string) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	var roles []models.Role
	err := s.db.WithContext(ctx).
		Preload("Permissions").
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("role service: list roles: %w", err)
	}
	return roles, nil
}

// Update modifies role metadata. System role names are fixed; only display
// metadata may change on them.
func (s *RoleService) Update(ctx context.Context, tenantID, roleID string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	role, err := s.GetByID(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*input.DisplayName)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}

	if len(updates) == 0 {
		return role, nil
	}

	if err := s.db.WithContext(ctx).Model(role).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("role service: update role: %w", err)
	}

	return s.GetByID(ctx, tenantID, roleID)
}

// Delete removes a custom role. The statement itself excludes system roles so
// there is no window between reading is_system and deleting.
func (s *RoleService) Delete(ctx context.Context, tenantID, roleID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND tenant_id = ? AND is_system = ?", roleID, tenantID, false).
			Delete(&models.Role{})
		if result.Error != nil {
			return fmt.Errorf("role service: delete role: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			var role models.Role
			err := tx.First(&role, "id = ? AND tenant_id = ?", roleID, tenantID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			if err != nil {
				return fmt.Errorf("role service: load role: %w", err)
			}
			return ErrSystemRoleImmutable
		}

		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("role service: clear permissions: %w", err)
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("role service: clear user grants: %w", err)
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.GroupRole{}).Error; err != nil {
			return fmt.Errorf("role service: clear group grants: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.store != nil {
		s.store.InvalidateTenant(tenantID)
	}
	return nil
}

// SetPermissions replaces a custom role's permission set. System role grants
// are fixed at provisioning and cannot be rewritten.
func (s *RoleService) SetPermissions(ctx context.Context, tenantID, roleID string, permissionNames []string) error {
	ctx = ensureContext(ctx)

	names := normaliseIDs(permissionNames)
	for _, name := range names {
		if !permissions.IsKnown(name) {
			return apperrors.NewBadRequest(fmt.Sprintf("unknown permission %q", name))
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, "id = ? AND tenant_id = ?", roleID, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("role service: load role: %w", err)
		}

		if role.IsSystem {
			return ErrSystemRoleImmutable
		}

		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("role service: clear permissions: %w", err)
		}

		if len(names) == 0 {
			return nil
		}

		var perms []models.Permission
		if err := tx.Where("name IN ?", names).Find(&perms).Error; err != nil {
			return fmt.Errorf("role service: load permissions: %w", err)
		}
		if len(perms) != len(names) {
			return apperrors.NewBadRequest("one or more permissions are missing from the catalog")
		}

		grants := make([]models.RolePermission, 0, len(perms))
		for _, perm := range perms {
			grants = append(grants, models.RolePermission{RoleID: roleID, PermissionID: perm.ID})
		}
		if err := tx.Create(&grants).Error; err != nil {
			return fmt.Errorf("role service: grant permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.store != nil {
		s.store.InvalidateTenant(tenantID)
	}
	return nil
}

// ListCatalog returns the global permission catalog as stored.
func (s *RoleService) ListCatalog(ctx context.Context) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	var perms []models.Permission
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("role service: list catalog: %w", err)
	}
	return perms, nil
}
